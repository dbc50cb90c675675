package output

import (
	"io"
	"os"
	"slices"
)

// Color modes accepted by --color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ColorModes lists the accepted --color values.
func ColorModes() []string {
	return []string{ColorAuto, ColorAlways, ColorNever}
}

// ParseColorMode validates a --color value. Empty means auto.
func ParseColorMode(mode string) (string, error) {
	if mode == "" {
		return ColorAuto, nil
	}
	if !slices.Contains(ColorModes(), mode) {
		return "", NewUserErrorf("invalid --color value %q (use auto, always or never)", mode)
	}
	return mode, nil
}

// ResolveColorMode decides whether to style output given the --color mode
// and whether the destination is a terminal.
func ResolveColorMode(mode string, isTTY bool) bool {
	switch mode {
	case ColorNever:
		return false
	case ColorAlways:
		return true
	default:
		return isTTY
	}
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

// IsTerminalInput reports whether r is an interactive terminal.
func IsTerminalInput(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
