package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

var (
	llmMu   sync.Mutex
	llmLog  *log.Logger
	llmDump bool
)

// SetLLMWriter directs full prompt/response dumps to w. Nil disables dumping.
func SetLLMWriter(w io.Writer) {
	llmMu.Lock()
	defer llmMu.Unlock()
	if w == nil {
		llmLog = nil
		return
	}
	llmLog = log.New(w, "", log.LstdFlags)
}

// EnableLLMPayloadDump toggles whether LogLLMExchange writes anything.
func EnableLLMPayloadDump(enabled bool) {
	llmMu.Lock()
	llmDump = enabled
	llmMu.Unlock()
}

// LogLLMExchange records one model round trip. Prompts can be large, so this
// goes to the dedicated writer instead of the main log stream.
func LogLLMExchange(stage, model, prompt, response string) {
	llmMu.Lock()
	l := llmLog
	enabled := llmDump
	llmMu.Unlock()
	if l == nil || !enabled {
		return
	}
	var b strings.Builder
	b.WriteString("[LLM][" + stage + "]")
	if model != "" {
		b.WriteString("[" + model + "]")
	}
	b.WriteString("\n--- PROMPT ---\n")
	b.WriteString(strings.TrimSpace(prompt))
	b.WriteString("\n--- RESPONSE ---\n")
	b.WriteString(strings.TrimSpace(response))
	b.WriteString("\n")
	l.Print(b.String())
}
