package utils

import "time"

func NowUnixMillis() int64 { return time.Now().UnixMilli() }

// FormatUnixMillis renders a millisecond epoch as RFC 3339 in UTC with millisecond precision.
// Returns "" for t <= 0.
func FormatUnixMillis(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// TimeFromUnixSeconds converts a provider epoch in seconds; 0 means absent.
func TimeFromUnixSeconds(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

// FirstNonZero returns the first positive epoch, or 0.
func FirstNonZero(values ...int64) int64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
