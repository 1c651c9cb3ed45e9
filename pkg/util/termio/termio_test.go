package termio

import (
	"bytes"
	"testing"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/util/assert"
)

func Test_Escape_01(t *testing.T) {
	assert.Equal(t, "", NewAnsiEscape().Build())
	assert.Equal(t, "\033[0m", ResetAnsiEscape().Build())
	assert.Equal(t, "\033[32m", NewAnsiEscape().FgColour(TERM_GREEN).Build())
	assert.Equal(t, "\033[1;31;44m", NewAnsiEscape().Bold().FgColour(TERM_RED).BgColour(TERM_BLUE).Build())
}

func Test_Escape_02(t *testing.T) {
	var (
		bold  = NewAnsiEscape().Bold()
		red   = bold.FgColour(TERM_RED)
		green = bold.FgColour(TERM_GREEN)
	)
	// Derived escapes do not share state
	assert.Equal(t, "\033[1;31m", red.Build())
	assert.Equal(t, "\033[1;32m", green.Build())
	assert.Equal(t, "\033[36mx\033[0m", NewAnsiEscape().FgColour(TERM_CYAN).Wrap("x"))
	assert.Equal(t, "x", NewAnsiEscape().Wrap("x"))
}

func Test_Console_01(t *testing.T) {
	var buffer bytes.Buffer
	//
	console := NewPlainConsole(&buffer)
	console.Success("Written %s", "a.cpp")
	console.Failure("oops")
	//
	assert.Equal(t, "Written a.cpp\noops\n", buffer.String())
}
