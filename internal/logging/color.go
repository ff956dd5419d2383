package logging

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorMode selects when output carries ANSI colors.
type ColorMode string

const (
	// ColorAuto colors terminals unless NO_COLOR is set or TERM is dumb.
	ColorAuto ColorMode = "auto"
	// ColorAlways colors every destination.
	ColorAlways ColorMode = "always"
	// ColorNever disables colors.
	ColorNever ColorMode = "never"
)

// ParseColorMode validates a --color value. The empty string means auto.
func ParseColorMode(value string) (ColorMode, bool) {
	switch m := ColorMode(strings.ToLower(value)); m {
	case "":
		return ColorAuto, true
	case ColorAuto, ColorAlways, ColorNever:
		return m, true
	default:
		return ColorAuto, false
	}
}

// Enabled reports whether output written to w should be colored.
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return autoColor(w, os.LookupEnv)
	}
}

func autoColor(w io.Writer, lookupEnv func(string) (string, bool)) bool {
	if _, ok := lookupEnv("NO_COLOR"); ok {
		return false
	}

	if name, _ := lookupEnv("TERM"); name == "dumb" {
		return false
	}

	f, ok := w.(interface{ Fd() uintptr })

	return ok && term.IsTerminal(int(f.Fd()))
}

// NewColor returns a color that is always applied. The caller decides with
// [ColorMode.Enabled] whether to use it at all.
func NewColor(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()

	return c
}
