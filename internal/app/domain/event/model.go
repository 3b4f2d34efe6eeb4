package event

import "time"

// Event is a building-wide announcement created by staff.
type Event struct {
	ID          int64
	BuildingID  int64
	Date        time.Time
	Title       string
	Description string
	CreatedAt   time.Time
}
