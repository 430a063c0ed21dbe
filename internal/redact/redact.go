// Package redact masks credentials and personal data in text before it is
// shown to a model or echoed back in a page.
//
// The same value always maps to the same placeholder within one Redactor,
// so "[IPV4:a3f2]" appearing twice still tells the reader it is one address.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
)

// Redactor replaces sensitive values with correlation-preserving placeholders.
// It is safe for concurrent use.
type Redactor struct {
	enabled  bool
	patterns []Pattern
	seen     map[string]string // original value -> placeholder
	mu       sync.RWMutex
}

// New creates a Redactor for the named patterns, falling back to
// DefaultPatterns when none of the names are known. When enabled is false,
// Redact returns text unchanged.
func New(enabled bool, patternNames []string) *Redactor {
	patterns := GetPatterns(patternNames)
	if len(patterns) == 0 {
		patterns = GetPatterns(DefaultPatterns())
	}

	return &Redactor{
		enabled:  enabled,
		patterns: patterns,
		seen:     make(map[string]string),
	}
}

// Redact replaces every match with its placeholder.
//
//	"Connection from 192.168.1.1 failed" -> "Connection from [IPV4:a3f2] failed"
func (r *Redactor) Redact(text string) string {
	out, _ := r.RedactAndCount(text)
	return out
}

// RedactAndCount redacts text and reports how many replacements were made.
func (r *Redactor) RedactAndCount(text string) (string, int) {
	if r == nil || !r.enabled {
		return text, 0
	}

	count := 0
	result := text
	for _, p := range r.patterns {
		result = p.Regex.ReplaceAllStringFunc(result, func(match string) string {
			count++
			return r.placeholder(match, p.Type)
		})
	}
	return result, count
}

// IsSensitive reports whether text contains anything Redact would replace.
func (r *Redactor) IsSensitive(text string) bool {
	if r == nil || !r.enabled {
		return false
	}
	for _, p := range r.patterns {
		if p.Regex.MatchString(text) {
			return true
		}
	}
	return false
}

// placeholder returns the stable placeholder for value.
func (r *Redactor) placeholder(value, patternType string) string {
	key := normalize(value, patternType)

	r.mu.RLock()
	if ph, ok := r.seen[key]; ok {
		r.mu.RUnlock()
		return ph
	}
	r.mu.RUnlock()

	h := sha256.Sum256([]byte(key))
	ph := fmt.Sprintf("[%s:%s]", patternType, hex.EncodeToString(h[:2]))

	r.mu.Lock()
	r.seen[key] = ph
	r.mu.Unlock()

	return ph
}

// Values returns a copy of the value -> placeholder map.
func (r *Redactor) Values() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.seen))
	for k, v := range r.seen {
		out[k] = v
	}
	return out
}

// Reset forgets every remembered placeholder.
func (r *Redactor) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = make(map[string]string)
}

// Enabled reports whether redaction is on.
func (r *Redactor) Enabled() bool {
	return r != nil && r.enabled
}

// normalize folds case for values where case carries no meaning.
func normalize(value, patternType string) string {
	switch patternType {
	case "EMAIL":
		return strings.ToLower(value)
	default:
		return value
	}
}
