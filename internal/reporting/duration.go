package reporting

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the day/month/year wire format the presentation layer
// shows and the duration math consumes.
const TimestampLayout = "02/01/2006 15:04"

// DurationUnavailable is returned instead of an error when either timestamp
// is missing or unparseable.
const DurationUnavailable = "N/A"

// FormatTimestamp renders an instant in the wire format.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ResolutionDuration formats the gap between submission and resolution as a
// compact string such as "2d 3h 15min". Zero-valued leading units are
// dropped; minutes always appear when nothing larger does, so a sub-minute
// gap reads "0min".
func ResolutionDuration(submittedAt, resolvedAt string) string {
	start, err := time.Parse(TimestampLayout, submittedAt)
	if err != nil {
		return DurationUnavailable
	}
	end, err := time.Parse(TimestampLayout, resolvedAt)
	if err != nil {
		return DurationUnavailable
	}
	delta := end.Sub(start)
	if delta < 0 {
		return DurationUnavailable
	}

	days := int(delta.Hours()) / 24
	hours := int(delta.Hours()) % 24
	minutes := int(delta.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dmin", minutes))
	}
	return strings.Join(parts, " ")
}
