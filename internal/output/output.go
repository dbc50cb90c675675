package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes command results in JSON or human-readable form.
type Printer struct {
	w      io.Writer
	errW   io.Writer
	json   bool
	color  bool
	styles styles
}

type styles struct {
	err     lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	bold    lipgloss.Style
	dim     lipgloss.Style
	title   lipgloss.Style
	key     lipgloss.Style
	secret  lipgloss.Style
	divider lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		bold:    lipgloss.NewStyle().Bold(true),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		key:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		secret:  lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		divider: lipgloss.NewStyle().Faint(true),
	}
}

// NewPrinter returns a Printer writing to w. Errors and warnings also go
// to w until WithStderr is called.
func NewPrinter(w io.Writer, jsonMode bool, color bool) *Printer {
	return &Printer{
		w:      w,
		errW:   w,
		json:   jsonMode,
		color:  color,
		styles: newStyles(color),
	}
}

// WithStderr routes human-mode errors, warnings and hints to w.
// JSON-mode errors stay on the main writer.
func (p *Printer) WithStderr(w io.Writer) *Printer {
	p.errW = w
	return p
}

// IsJSON reports whether the printer is in JSON mode.
func (p *Printer) IsJSON() bool {
	return p.json
}

// Success prints a result. Human mode prints data["message"] when present,
// otherwise each key in sorted order.
func (p *Printer) Success(data map[string]any) error {
	if p.json {
		return p.WriteJSON(data)
	}
	if msg, ok := data["message"].(string); ok {
		mustWrite(fmt.Fprintln(p.w, p.styles.ok.Render(msg)))
		return nil
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		mustWrite(fmt.Fprintf(p.w, "%s: %v\n", p.styles.bold.Render(k), data[k]))
	}
	return nil
}

// Error prints err. JSON mode writes {"error": ..., "code": N} to the main
// writer.
func (p *Printer) Error(err error) {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = &ExitError{Code: ExitUserError, Message: err.Error()}
	}
	if p.json {
		mustWrite(p.w.Write(ErrorJSON(exitErr.Message, exitErr.Code)))
		mustWrite(fmt.Fprintln(p.w))
		return
	}
	mustWrite(fmt.Fprintf(p.errW, "%s: %s\n", p.styles.err.Render("Error"), exitErr.Message))
}

// Warn prints a warning. JSON mode writes {"warning": ...}.
func (p *Printer) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.json {
		_ = p.WriteJSON(map[string]any{"warning": msg})
		return
	}
	mustWrite(fmt.Fprintf(p.errW, "%s: %s\n", p.styles.warn.Render("Warning"), msg))
}

// Hint prints a remediation hint to the error writer. No-op in JSON mode.
func (p *Printer) Hint(format string, args ...any) {
	if p.json {
		return
	}
	mustWrite(fmt.Fprintf(p.errW, "%s %s\n", p.styles.dim.Render("hint:"), fmt.Sprintf(format, args...)))
}

// Stderr writes to the error writer. No-op in JSON mode.
func (p *Printer) Stderr(format string, args ...any) {
	if p.json {
		return
	}
	mustWrite(fmt.Fprintf(p.errW, format, args...))
}

// Print writes formatted text without a newline.
func (p *Printer) Print(format string, args ...any) {
	mustWrite(fmt.Fprintf(p.w, format, args...))
}

// Println writes a line.
func (p *Printer) Println(args ...any) {
	mustWrite(fmt.Fprintln(p.w, args...))
}

// WriteJSON writes data as indented JSON.
func (p *Printer) WriteJSON(data any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorJSON returns {"error": message, "code": code}.
func ErrorJSON(message string, code int) []byte {
	out, _ := json.Marshal(map[string]any{"error": message, "code": code})
	return out
}

// Section prints a title with an underline, preceded by a blank line.
func (p *Printer) Section(title string) {
	mustWrite(fmt.Fprintln(p.w))
	mustWrite(fmt.Fprintln(p.w, p.styles.title.Render(title)))
	mustWrite(fmt.Fprintln(p.w, p.styles.divider.Render(strings.Repeat("─", lipgloss.Width(title)))))
}

// KeyValue prints "key: value".
func (p *Printer) KeyValue(key, value string) {
	mustWrite(fmt.Fprintf(p.w, "%s %s\n", p.styles.key.Render(key+":"), value))
}

// Field prints an indented "key: value" line, styling secret values.
func (p *Printer) Field(key, value string, secret bool) {
	if secret {
		value = p.styles.secret.Render(value)
	}
	mustWrite(fmt.Fprintf(p.w, "    %s %s\n", p.styles.key.Render(key+":"), value))
}

// Mark prints a pass/fail line: "  ✓ name  detail".
func (p *Printer) Mark(passed bool, name, detail string) {
	mark := p.styles.ok.Render("✓")
	if !passed {
		mark = p.styles.err.Render("✗")
	}
	line := fmt.Sprintf("  %s %s", mark, name)
	if detail != "" {
		line += "  " + p.styles.dim.Render(detail)
	}
	mustWrite(fmt.Fprintln(p.w, line))
}

// State renders a readiness label in the ok or warning color.
func (p *Printer) State(ready bool, label string) string {
	if ready {
		return p.styles.ok.Render(label)
	}
	return p.styles.warn.Render(label)
}

// Dim renders s in the muted style.
func (p *Printer) Dim(s string) string {
	return p.styles.dim.Render(s)
}

// Table prints rows under bold headers with padded columns.
func (p *Printer) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = p.styles.bold.Render(padRight(h, widths[i]))
	}
	mustWrite(fmt.Fprintln(p.w, strings.TrimRight(strings.Join(cells, "  "), " ")))
	for _, row := range rows {
		cells = cells[:0]
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			cells = append(cells, padRight(cell, widths[i]))
		}
		mustWrite(fmt.Fprintln(p.w, strings.TrimRight(strings.Join(cells, "  "), " ")))
	}
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// mustWrite panics on write failure to stdout, stderr or a buffer.
func mustWrite(_ int, err error) {
	if err != nil {
		panic(fmt.Sprintf("write failed: %v", err))
	}
}
