// Package tokens provides token estimation for advisor prompts and
// context-limit checks. Counting uses the cl100k_base encoding via
// tiktoken-go when available, falling back to a bytes/4 heuristic when the
// encoding cannot be loaded (e.g. stripped-down environments).
package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// charsPerToken is the divisor for the fallback estimator (roughly 4 bytes
// per token for typical English/code).
const charsPerToken = 4

// DefaultResponseReserve is the default number of tokens reserved for the
// model response when sizing the context window.
const DefaultResponseReserve = 2048

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

func encoding() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		// Ignore the error: nil enc selects the heuristic path.
		enc, _ = tiktoken.GetEncoding("cl100k_base")
	})
	return enc
}

// Estimate returns the token count for text: exact under cl100k_base when
// the encoding loads, otherwise (len+3)/4 bytes. Empty text is 0.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	if e := encoding(); e != nil {
		return len(e.Encode(text, nil, nil))
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// ContextSize returns the context window to request for a prompt: prompt
// tokens plus the response reserve, capped at max. A non-positive max
// returns the uncapped need.
func ContextSize(promptTokens, reserve, max int) int {
	need := promptTokens + reserve
	if max > 0 && need > max {
		return max
	}
	return need
}

// WarnIfOver returns a non-empty warning when promptTokens + reserve meets
// or exceeds warnThreshold of contextLimit. A non-positive contextLimit
// disables the check.
func WarnIfOver(promptTokens, reserve, contextLimit int, warnThreshold float64) string {
	if contextLimit <= 0 || promptTokens < 0 || reserve < 0 {
		return ""
	}
	total := promptTokens + reserve
	if float64(total) < float64(contextLimit)*warnThreshold {
		return ""
	}
	return fmt.Sprintf("estimated tokens %d (prompt %d + reserve %d) exceeds %.0f%% of context limit %d",
		total, promptTokens, reserve, warnThreshold*100, contextLimit)
}
