package view

import "time"

const (
	displayDateLayout = "Mon, Jan 2, 2006"
	timestampLayout   = "Jan 2, 2006, 03:04 PM"
)

// FormatDisplayDate renders a YYYY-MM-DD date as "Mon, Dec 7, 2025". Values
// that do not parse are returned unchanged.
func FormatDisplayDate(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.Format(displayDateLayout)
}

// FormatTimestamp renders a creation time as "Dec 1, 2025, 10:30 AM".
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}
