// Package commitmsg normalizes and validates the commit messages the
// advisor proposes before they reach git.
package commitmsg

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultTypes are the conventional-commit types accepted by default.
var DefaultTypes = []string{"feat", "fix", "docs", "style", "refactor", "test", "chore"}

// DefaultMaxSubjectLength follows the usual 50-character subject rule but
// leaves room for scope prefixes; over-length subjects warn, never fail.
const DefaultMaxSubjectLength = 72

// Format configures message validation.
type Format struct {
	Types            []string // allowed conventional-commit types; empty disables the check
	MaxSubjectLength int      // 0 means DefaultMaxSubjectLength
}

// ErrEmpty is returned for a message with no content after normalization.
var ErrEmpty = errors.New("empty commit message")

// subjectRe captures the conventional-commit type from "type(scope): ..."
// or "type: ..." subjects.
var subjectRe = regexp.MustCompile(`^([a-z]+)(\([^)]*\))?!?: `)

// Normalize strips the wrapping a model tends to add around a commit
// message: surrounding whitespace, markdown fences, and matched quotes.
func Normalize(msg string) string {
	s := strings.TrimSpace(msg)
	if strings.HasPrefix(s, "```") {
		lines := strings.Split(s, "\n")
		if len(lines) >= 2 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			s = strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	return s
}

// Validate checks a normalized message: it must be non-empty, and when
// Types is configured the subject must start with an allowed type.
// Returns a warning string (possibly empty) for soft issues like an
// over-length subject.
func (f Format) Validate(msg string) (warning string, err error) {
	if msg == "" {
		return "", ErrEmpty
	}
	subject := msg
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		subject = msg[:idx]
	}

	if len(f.Types) > 0 {
		m := subjectRe.FindStringSubmatch(subject)
		if m == nil || !contains(f.Types, m[1]) {
			return "", fmt.Errorf("subject %q does not start with an allowed type (%s)", subject, strings.Join(f.Types, ", "))
		}
	}

	maxLen := f.MaxSubjectLength
	if maxLen == 0 {
		maxLen = DefaultMaxSubjectLength
	}
	if len(subject) > maxLen {
		warning = fmt.Sprintf("subject is %d characters (limit %d): %q", len(subject), maxLen, subject)
	}
	return warning, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
