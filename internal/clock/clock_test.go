package clock

import "testing"

func TestAdvanceOneMinutePerSecond(t *testing.T) {
	c := New(6, 18)
	if got := c.Advance(1.0); got != 1 {
		t.Fatalf("Advance(1.0) = %d minutes, want 1", got)
	}
	if c.Minute != 1 {
		t.Fatalf("Minute = %d, want 1", c.Minute)
	}
}

func TestAdvanceCarriesFraction(t *testing.T) {
	c := New(6, 18)
	c.Advance(0.7)
	if c.Minute != 0 {
		t.Fatalf("Minute = %d after 0.7s, want 0", c.Minute)
	}
	c.Advance(0.7)
	if c.Minute != 1 {
		t.Fatalf("Minute = %d after 1.4s total, want 1", c.Minute)
	}
}

func TestHourRollover(t *testing.T) {
	c := New(6, 18)
	c.Advance(60.0)
	if c.Hour != 1 || c.Minute != 0 {
		t.Fatalf("after 60s got %d:%02d, want 1:00", c.Hour, c.Minute)
	}
}

func TestFullCalendarChain(t *testing.T) {
	c := New(6, 18)
	c.Minute = 59
	c.Hour = 23
	c.Day = 29
	c.Month = 11
	c.Year = 4

	c.Advance(1.0)
	if c.Minute != 0 || c.Hour != 0 || c.Day != 0 || c.Month != 0 || c.Year != 5 {
		t.Fatalf("rollover chain gave Y%d M%d D%d %d:%02d, want Y5 M0 D0 0:00",
			c.Year, c.Month, c.Day, c.Hour, c.Minute)
	}
}

func TestOnHourDeliversNewHour(t *testing.T) {
	c := New(6, 18)
	var fired []int
	c.OnHour = func(h int) { fired = append(fired, h) }

	c.Minute = 59
	c.Hour = 23
	c.Advance(1.0)

	if len(fired) != 1 || fired[0] != 0 {
		t.Fatalf("OnHour fired with %v, want [0]", fired)
	}
}

func TestOnYearFires(t *testing.T) {
	c := New(6, 18)
	years := 0
	c.OnYear = func(int) { years++ }

	c.Minute = 59
	c.Hour = 23
	c.Day = 29
	c.Month = 11
	c.Advance(1.0)

	if years != 1 {
		t.Fatalf("OnYear fired %d times, want 1", years)
	}
}

func TestIsDaytime(t *testing.T) {
	c := New(6, 18)
	cases := []struct {
		hour int
		want bool
	}{
		{0, false},
		{5, false},
		{6, true},
		{12, true},
		{17, true},
		{18, false},
		{23, false},
	}
	for _, tc := range cases {
		c.Hour = tc.hour
		if got := c.IsDaytime(); got != tc.want {
			t.Errorf("IsDaytime at hour %d = %v, want %v", tc.hour, got, tc.want)
		}
	}
}

func TestSeasons(t *testing.T) {
	c := New(6, 18)
	cases := []struct {
		month int
		want  Season
	}{
		{0, SeasonSpring},
		{2, SeasonSpring},
		{3, SeasonSummer},
		{6, SeasonAutumn},
		{9, SeasonWinter},
		{11, SeasonWinter},
	}
	for _, tc := range cases {
		c.Month = tc.month
		if got := c.CurrentSeason(); got != tc.want {
			t.Errorf("season for month %d = %v, want %v", tc.month, got, tc.want)
		}
	}
}
