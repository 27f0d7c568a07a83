package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetLogger(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetLevel("info")
		SetLLMWriter(nil)
		EnableLLMPayloadDump(false)
	})
}

func TestLevelFiltering(t *testing.T) {
	resetLogger(t)
	var buf bytes.Buffer
	SetOutput(&buf)

	SetLevel("warn")
	Infof("hidden info")
	Warnf("visible warning")
	assert.NotContains(t, buf.String(), "hidden info")
	assert.Contains(t, buf.String(), "visible warning")

	SetLevel("debug")
	Debugf("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	resetLogger(t)
	var buf bytes.Buffer
	SetOutput(&buf)

	SetLevel("nonsense")
	Debugf("debug hidden")
	Infof("info shown")
	assert.NotContains(t, buf.String(), "debug hidden")
	assert.Contains(t, buf.String(), "info shown")
}

func TestInfoBlockSplitsLines(t *testing.T) {
	resetLogger(t)
	var buf bytes.Buffer
	SetOutput(&buf)

	InfoBlock("first line\nsecond line\n")
	out := buf.String()
	assert.Contains(t, out, "first line")
	assert.Contains(t, out, "second line")
}

func TestLLMExchangeRespectsToggle(t *testing.T) {
	resetLogger(t)
	var buf bytes.Buffer
	SetLLMWriter(&buf)

	LogLLMExchange("news_analysis", "gpt-4o-mini", "prompt text", "response text")
	assert.Empty(t, buf.String())

	EnableLLMPayloadDump(true)
	LogLLMExchange("news_analysis", "gpt-4o-mini", "prompt text", "response text")
	out := buf.String()
	assert.Contains(t, out, "[LLM][news_analysis][gpt-4o-mini]")
	assert.Contains(t, out, "prompt text")
	assert.Contains(t, out, "response text")
}

func TestLLMExchangeNilWriter(t *testing.T) {
	resetLogger(t)
	SetLLMWriter(nil)
	EnableLLMPayloadDump(true)
	// Must not panic without a writer.
	LogLLMExchange("final_decision", "", "p", "r")
}
