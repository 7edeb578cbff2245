package services

import "time"

// Clock supplies the current time. Time-sensitive services accept one
// through their config so window and expiry behavior is testable
// without sleeping; nil means time.Now.
type Clock func() time.Time

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}
