package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/example/afparfum/internal/opt"
)

// Accepted ISO-8601 forms for payment timestamps. Values without a zone are
// read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"20060102T150405Z0700",
	"20060102T150405",
}

// parseTimestamp turns an optional timestamp into a tie-break hint. An
// unparseable value is logged and treated as absent.
func parseTimestamp(raw *string) opt.Value[time.Time] {
	s, ok := opt.NonBlank(raw).Get()
	if !ok {
		return opt.None[time.Time]()
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return opt.Some(t.UTC())
		}
	}
	log.Printf("[Payments] ignoring unparseable timestamp %q", s)
	return opt.None[time.Time]()
}
