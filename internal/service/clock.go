package service

import "time"

// Clock yields the nursery's local wall time. The zero value uses time.Now in UTC.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func (c Clock) current() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

// Today is the current calendar day as "YYYY-MM-DD".
func (c Clock) Today() string {
	return c.current().Format("2006-01-02")
}
