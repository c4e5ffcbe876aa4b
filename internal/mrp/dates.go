package mrp

import "time"

// pastDueDate is the sentinel due date for on-hand stock. It sorts ahead
// of any real schedule date so QOH supplies are consumed first.
var pastDueDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// offsetDays shifts a date by plain calendar days. A business calendar
// would be swapped in here without touching the netter.
func offsetDays(day time.Time, days int) time.Time {
	return day.AddDate(0, 0, days)
}

// dateOnly truncates a timestamp to a UTC calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
