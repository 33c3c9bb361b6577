package domain

import (
	"strings"
	"time"
)

// HoursUnknown is returned for opening-hours fields whose capture day has passed.
const HoursUnknown = "unknown"

// Outlet is a physical store. The two opening-hours strings are only
// meaningful on the calendar day they were captured; UpdatedAt records that day.
type Outlet struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`

	OpenHoursToday    string `json:"open_hours_today,omitempty"`
	OpenHoursTomorrow string `json:"open_hours_tomorrow,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// HoursFresh reports whether the captured hours still describe the current
// calendar day.
func (o *Outlet) HoursFresh(now time.Time) bool {
	y1, m1, d1 := o.UpdatedAt.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// HoursToday resolves the today-hours string, degrading to HoursUnknown once
// the capture day has passed.
func (o *Outlet) HoursToday(now time.Time) string {
	if !o.HoursFresh(now) || o.OpenHoursToday == "" {
		return HoursUnknown
	}
	return o.OpenHoursToday
}

// HoursTomorrow resolves the tomorrow-hours string, degrading to HoursUnknown
// once the capture day has passed.
func (o *Outlet) HoursTomorrow(now time.Time) string {
	if !o.HoursFresh(now) || o.OpenHoursTomorrow == "" {
		return HoursUnknown
	}
	return o.OpenHoursTomorrow
}

// IsOpenNow resolves whether the outlet is open at the given instant. Stale or
// unparsable hours resolve to false, never to a guess.
func (o *Outlet) IsOpenNow(now time.Time) bool {
	hours := o.HoursToday(now)
	if hours == HoursUnknown {
		return false
	}
	open, close, ok := parseHoursRange(hours)
	if !ok {
		return false
	}
	minutes := now.Hour()*60 + now.Minute()
	return minutes >= open && minutes < close
}

// parseHoursRange parses strings like "09:00–21:00" or "9-18" into minutes
// since midnight. Closed-day markers and anything unparsable return ok=false.
func parseHoursRange(s string) (open, close int, ok bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || strings.Contains(s, "suljettu") || strings.Contains(s, "closed") {
		return 0, 0, false
	}
	var sep string
	for _, cand := range []string{"–", "—", "-"} {
		if strings.Contains(s, cand) {
			sep = cand
			break
		}
	}
	if sep == "" {
		return 0, 0, false
	}
	parts := strings.SplitN(s, sep, 2)
	open, ok = parseClock(parts[0])
	if !ok {
		return 0, 0, false
	}
	close, ok = parseClock(parts[1])
	if !ok {
		return 0, 0, false
	}
	return open, close, true
}

func parseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	var h, m int
	switch {
	case strings.Contains(s, ":"):
		hm := strings.SplitN(s, ":", 2)
		h = atoiSafe(hm[0])
		m = atoiSafe(hm[1])
	case strings.Contains(s, "."):
		hm := strings.SplitN(s, ".", 2)
		h = atoiSafe(hm[0])
		m = atoiSafe(hm[1])
	default:
		h = atoiSafe(s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func atoiSafe(s string) int {
	n := 0
	s = strings.TrimSpace(s)
	if s == "" {
		return -1
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}
