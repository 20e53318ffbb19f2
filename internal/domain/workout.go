package domain

import (
	"fmt"
	"time"
)

// WorkoutRecord is one finished workout as kept in the history.
// The JSON shape is the persisted format; do not rename fields.
type WorkoutRecord struct {
	ID        int64  `json:"id"`   // unix milliseconds at finish time
	Sets      int    `json:"sets"` // always >= 1
	RestTimes []int  `json:"restTimes"`
	Date      string `json:"date"` // localized display string
}

// NewWorkoutRecord stamps a record finished at now. restTimes is copied.
func NewWorkoutRecord(now time.Time, sets int, restTimes []int, layout string) WorkoutRecord {
	rests := make([]int, len(restTimes))
	copy(rests, restTimes)
	return WorkoutRecord{
		ID:        now.UnixMilli(),
		Sets:      sets,
		RestTimes: rests,
		Date:      now.Format(layout),
	}
}

// FormatRestTime renders seconds as m:ss, e.g. 125 -> "2:05".
func FormatRestTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
