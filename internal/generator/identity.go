package generator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the marker format for $$dateandtime$$. The value is
// always rendered in UTC so the trailing Z is truthful.
const TimestampLayout = "2006-01-02T15:04:05Z"

// FormatTimestamp renders t for the $$dateandtime$$ marker.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// NewGUID returns a time-based (version 1) UUID in canonical form.
func NewGUID() (string, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return "", fmt.Errorf("generating GUID: %w", err)
	}
	return id.String(), nil
}
