package pulse

import (
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/sprint-backend/internal/domain/assistant"
)

const (
	DefaultOffsetHours = 5.5
	DefaultSchedule    = "2"
)

var weekdayHours = map[string][]int{
	"1": {6, 10, 14, 18},
	"2": {8, 12, 16, 20},
	"3": {10, 14, 18, 22},
}

var weekendHours = map[string][]int{
	"1": {8, 20},
	"2": {10, 22},
	"3": {12, 0},
}

// ScheduleOptions tunes the due predicate.
type ScheduleOptions struct {
	// WeekendReduced switches Saturday and Sunday (local) to two check-ins.
	WeekendReduced bool
}

// DueHours returns the local hours a schedule code fires at. Unknown codes
// return nil and are never due.
func DueHours(code string, weekend bool) []int {
	if weekend {
		return weekendHours[code]
	}
	return weekdayHours[code]
}

// ParseOffset reads a stored offset, falling back to DefaultOffsetHours.
func ParseOffset(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return DefaultOffsetHours
	}
	return f
}

// LocalTime shifts now (taken as UTC) by offset hours.
func LocalTime(now time.Time, offsetHours float64) time.Time {
	return now.UTC().Add(time.Duration(offsetHours * float64(time.Hour)))
}

// IsDue reports whether a user with cfg should get a briefing at now.
func IsDue(now time.Time, cfg map[string]string, manual bool, opts ScheduleOptions) bool {
	if manual {
		return true
	}
	code, ok := cfg[assistant.KeyPulseSchedule]
	if !ok {
		code = DefaultSchedule
	}
	local := LocalTime(now, ParseOffset(cfg[assistant.KeyTimezoneOffset]))
	weekend := opts.WeekendReduced && (local.Weekday() == time.Saturday || local.Weekday() == time.Sunday)
	for _, h := range DueHours(code, weekend) {
		if h == local.Hour() {
			return true
		}
	}
	return false
}
