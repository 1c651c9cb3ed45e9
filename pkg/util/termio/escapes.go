package termio

import (
	"fmt"
	"strings"
)

// TERM_BLACK represents black
const TERM_BLACK = uint(0)

// TERM_RED represents red
const TERM_RED = uint(1)

// TERM_GREEN represents green
const TERM_GREEN = uint(2)

// TERM_YELLOW represents yellow
const TERM_YELLOW = uint(3)

// TERM_BLUE represents blue
const TERM_BLUE = uint(4)

// TERM_CYAN represents cyan
const TERM_CYAN = uint(6)

// AnsiEscape represents an ANSI escape code used for formatting text in a terminal.
type AnsiEscape struct {
	codes []uint
}

// NewAnsiEscape construct an empty escape
func NewAnsiEscape() AnsiEscape {
	return AnsiEscape{nil}
}

// ResetAnsiEscape constructs a reset term.
func ResetAnsiEscape() AnsiEscape {
	return AnsiEscape{[]uint{0}}
}

// Bold adds the bold attribute.
func (p AnsiEscape) Bold() AnsiEscape {
	return p.with(1)
}

// FgColour sets the foreground colour
func (p AnsiEscape) FgColour(col uint) AnsiEscape {
	return p.with(30 + col)
}

// BgColour sets the background colour
func (p AnsiEscape) BgColour(col uint) AnsiEscape {
	return p.with(40 + col)
}

// Build constructs the final escape.  An empty escape builds to nothing.
func (p AnsiEscape) Build() string {
	if len(p.codes) == 0 {
		return ""
	}
	//
	var codes = make([]string, len(p.codes))
	//
	for i, c := range p.codes {
		codes[i] = fmt.Sprintf("%d", c)
	}
	//
	return fmt.Sprintf("\033[%sm", strings.Join(codes, ";"))
}

// Wrap formats the given text with this escape, resetting afterwards.
func (p AnsiEscape) Wrap(text string) string {
	if len(p.codes) == 0 {
		return text
	}
	//
	return p.Build() + text + ResetAnsiEscape().Build()
}

func (p AnsiEscape) with(code uint) AnsiEscape {
	// copy to avoid aliasing between derived escapes
	var codes = make([]uint, len(p.codes), len(p.codes)+1)
	//
	copy(codes, p.codes)
	//
	return AnsiEscape{append(codes, code)}
}
