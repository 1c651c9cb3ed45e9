package termio

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Console prints status lines for the user, colouring them only when the
// underlying output is a terminal.
type Console struct {
	out    io.Writer
	colour bool
}

// NewConsole constructs a console writing to the given file, enabling colour
// if the file is a terminal.
func NewConsole(file *os.File) *Console {
	return &Console{file, IsTerminal(file)}
}

// NewPlainConsole constructs a console which never colours its output.
func NewPlainConsole(out io.Writer) *Console {
	return &Console{out, false}
}

// IsTerminal determines whether the given file is connected to a terminal.
func IsTerminal(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}

// Success prints a (green) status line.
func (p *Console) Success(format string, args ...any) {
	p.print(NewAnsiEscape().FgColour(TERM_GREEN), format, args...)
}

// Warning prints a (yellow) status line.
func (p *Console) Warning(format string, args ...any) {
	p.print(NewAnsiEscape().FgColour(TERM_YELLOW), format, args...)
}

// Failure prints a (bold red) status line.
func (p *Console) Failure(format string, args ...any) {
	p.print(NewAnsiEscape().Bold().FgColour(TERM_RED), format, args...)
}

// Info prints an uncoloured line.
func (p *Console) Info(format string, args ...any) {
	p.print(NewAnsiEscape(), format, args...)
}

func (p *Console) print(escape AnsiEscape, format string, args ...any) {
	var text = fmt.Sprintf(format, args...)
	//
	if p.colour {
		text = escape.Wrap(text)
	}
	//
	_, _ = fmt.Fprintln(p.out, text)
}
