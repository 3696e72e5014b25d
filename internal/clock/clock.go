// Package clock provides the simulation calendar: one real second maps to
// exactly one simulated minute, with the fractional remainder carried
// across calls so no drift accumulates.
package clock

import "fmt"

// Season bands, three months each.
type Season uint8

const (
	SeasonSpring Season = iota
	SeasonSummer
	SeasonAutumn
	SeasonWinter
)

var seasonNames = [4]string{"Spring", "Summer", "Autumn", "Winter"}

// SeasonName returns a display name for a season.
func SeasonName(s Season) string {
	if int(s) < len(seasonNames) {
		return seasonNames[s]
	}
	return "Unknown"
}

// Clock tracks the simulation calendar. Rollovers are strict sequential
// carries: minute into hour into day into month into year, never skipped.
type Clock struct {
	Minute int // 0-59
	Hour   int // 0-23
	Day    int // 0-29
	Month  int // 0-11
	Year   int

	SunriseHour int
	SunsetHour  int

	// OnHour fires after each hour rollover with the new hour; the
	// orchestrator hangs per-agent daily-needs processing on it.
	OnHour func(hour int)
	// OnYear fires after each year rollover with the new year (aging).
	OnYear func(year int)

	acc float64 // fractional real seconds not yet converted
}

// New creates a clock at year 0, midnight.
func New(sunrise, sunset int) *Clock {
	return &Clock{SunriseHour: sunrise, SunsetHour: sunset}
}

// Advance accumulates dt real seconds and performs one discrete minute
// advance per whole second. Returns the number of minutes advanced.
func (c *Clock) Advance(dt float64) int {
	c.acc += dt
	n := 0
	for c.acc >= 1.0 {
		c.acc -= 1.0
		c.advanceMinute()
		n++
	}
	return n
}

func (c *Clock) advanceMinute() {
	c.Minute++
	if c.Minute < 60 {
		return
	}
	c.Minute = 0
	c.Hour++
	if c.Hour >= 24 {
		c.Hour = 0
		c.Day++
		if c.Day >= 30 {
			c.Day = 0
			c.Month++
			if c.Month >= 12 {
				c.Month = 0
				c.Year++
				if c.OnYear != nil {
					c.OnYear(c.Year)
				}
			}
		}
	}
	// Fires after the carries settle so midnight is delivered as hour 0,
	// not 24.
	if c.OnHour != nil {
		c.OnHour(c.Hour)
	}
}

// IsDaytime reports whether the hour falls in [sunrise, sunset).
func (c *Clock) IsDaytime() bool {
	return c.Hour >= c.SunriseHour && c.Hour < c.SunsetHour
}

// CurrentSeason derives the season from the month.
func (c *Clock) CurrentSeason() Season {
	return Season(c.Month / 3)
}

// String renders the calendar for logs and the status endpoint.
func (c *Clock) String() string {
	return fmt.Sprintf("Y%d %s D%d %02d:%02d",
		c.Year, SeasonName(c.CurrentSeason()), c.Day+1, c.Hour, c.Minute)
}
