package scoring

import (
	"strings"
	"time"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock sets the time source used for recency and close-date rules.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithFreemailDomains replaces the substrings that mark an email domain as
// a free mail provider.
func WithFreemailDomains(domains []string) Option {
	return func(e *Engine) {
		cleaned := make([]string, 0, len(domains))
		for _, d := range domains {
			if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
				cleaned = append(cleaned, d)
			}
		}
		if len(cleaned) > 0 {
			e.freemail = cleaned
		}
	}
}
