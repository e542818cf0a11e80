package codec

import (
	"fmt"
	"strings"
	"time"
)

// TimeRFC3339 returns a codec between RFC3339 strings and time.Time.
func TimeRFC3339() Codec[time.Time] { return rfc3339Codec{} }

type rfc3339Codec struct{}

func (rfc3339Codec) Parse(text string) (time.Time, error) {
	t, err := parseRFC3339(strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, fmt.Errorf("codec: parse RFC3339 time: %w", err)
	}
	return t, nil
}

func (rfc3339Codec) Format(v time.Time) string { return formatRFC3339Canonical(v) }

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
