package market

import (
	"fmt"
	"time"
)

// Window is a time-of-day trading window. Ticks whose wall-clock time of day
// falls outside [Start, End] get no new entries or signal exits; hard
// stop/target/time-limit checks still run in the ledger.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// TimeOfDay is seconds since midnight, timezone-agnostic. The engine works in
// UTC, matching the GMT day boundary used by the daily-loss reset.
type TimeOfDay int

func NewTimeOfDay(hour, min, sec int) TimeOfDay {
	return TimeOfDay(hour*3600 + min*60 + sec)
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		sec = 0
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("bad time of day %q: want HH:MM or HH:MM:SS", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return NewTimeOfDay(h, m, sec), nil
}

func (d TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(d)/3600, int(d)%3600/60, int(d)%60)
}

// DefaultWindow is the full trading day minus the first and last minute,
// which avoids acting on the thin liquidity around the daily rollover.
func DefaultWindow() Window {
	return Window{
		Start: NewTimeOfDay(0, 1, 0),
		End:   NewTimeOfDay(23, 59, 0),
	}
}

// Contains reports whether t (interpreted in UTC) falls inside the window.
func (w Window) Contains(t time.Time) bool {
	u := t.UTC()
	d := TimeOfDay(u.Hour()*3600 + u.Minute()*60 + u.Second())
	return d >= w.Start && d <= w.End
}

func (w Window) Validate() error {
	if w.Start >= w.End {
		return fmt.Errorf("trading window start %s not before end %s", w.Start, w.End)
	}
	return nil
}
