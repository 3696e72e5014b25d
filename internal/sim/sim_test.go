package sim

import (
	"testing"

	"github.com/talgya/nanoverse/internal/building"
	"github.com/talgya/nanoverse/internal/nano"
	"github.com/talgya/nanoverse/internal/tuning"
)

func newTestSim() *Simulation {
	cfg := tuning.Default()
	cfg.Grid.Blocked = 0 // open ground everywhere, placement never blocked
	return New(cfg)
}

func hireOne(t *testing.T, s *Simulation) *nano.Nano {
	t.Helper()
	res := s.Hire(s.candidates[0].ID)
	if !res.OK {
		t.Fatalf("hire failed: %+v", res)
	}
	return s.nanos[s.order[len(s.order)-1]]
}

func TestNewStartsEmpty(t *testing.T) {
	s := newTestSim()
	st := s.Status()
	if st.Population != 0 || st.Cells != 0 || st.Buildings != 0 {
		t.Fatalf("fresh colony not empty: %+v", st)
	}
	if st.Candidates != 5 {
		t.Fatalf("candidate pool %d, want 5", st.Candidates)
	}
	if st.Credits != 1000 {
		t.Fatalf("credits %.0f, want 1000", st.Credits)
	}
}

func TestTickAdvancesClock(t *testing.T) {
	s := newTestSim()
	s.Tick(1.0)
	if s.Clock.Minute != 1 {
		t.Fatalf("minute %d after one tick second, want 1", s.Clock.Minute)
	}
}

func TestMealDrainsSystemEnergy(t *testing.T) {
	s := newTestSim()
	n := hireOne(t, s)
	s.Bank.Surge = 1.0
	s.Clock.Hour = 7
	s.Clock.Minute = 59

	s.Tick(1.0) // rolls into meal hour 8

	if n.MealsToday != 1 {
		t.Fatalf("meals %d after meal hour, want 1", n.MealsToday)
	}
	if s.Bank.Surge > 0.71 {
		t.Fatalf("surge %.3f, meal cost not drained", s.Bank.Surge)
	}
}

func TestMissedMealPenalty(t *testing.T) {
	s := newTestSim()
	n := hireOne(t, s)
	s.Bank.Surge = 0
	before := n.Health
	s.Clock.Hour = 11
	s.Clock.Minute = 59

	s.Tick(1.0) // meal hour 12, nothing to eat

	if n.Health != before-5 {
		t.Fatalf("health %.1f after missed meal, want %.1f", n.Health, before-5)
	}
	if n.MealsToday != 0 {
		t.Fatalf("meals %d, want 0", n.MealsToday)
	}
}

func TestMealsCapPerDay(t *testing.T) {
	s := newTestSim()
	n := hireOne(t, s)
	n.MealsToday = 3
	s.Bank.Surge = 1.0
	s.Clock.Hour = 17
	s.Clock.Minute = 59

	s.Tick(1.0) // meal hour 18

	if n.MealsToday != 3 {
		t.Fatalf("meals %d, cap exceeded", n.MealsToday)
	}
	if s.Bank.Surge < 0.9 {
		t.Fatalf("surge %.3f, capped nano still ate", s.Bank.Surge)
	}
}

func TestYearRolloverAges(t *testing.T) {
	s := newTestSim()
	n := hireOne(t, s)
	age := n.Age
	s.Clock.Minute = 59
	s.Clock.Hour = 23
	s.Clock.Day = 29
	s.Clock.Month = 11

	s.Tick(1.0)

	if n.Age != age+1 {
		t.Fatalf("age %d after year rollover, want %d", n.Age, age+1)
	}
}

func TestDeathSweepIsImmediate(t *testing.T) {
	s := newTestSim()
	n := hireOne(t, s)
	b := s.Buildings.Place(building.Tent, 1, 1)
	s.Buildings.Admit(n.ID, b.ID)
	n.Health = 0

	s.Tick(0.1)

	if _, ok := s.nanos[n.ID]; ok {
		t.Fatal("dead nano still present")
	}
	if len(b.Occupants) != 0 {
		t.Fatalf("occupants %v after death, want evicted", b.Occupants)
	}
	found := false
	for _, e := range s.events {
		if e.Category == "death" {
			found = true
		}
	}
	if !found {
		t.Fatal("no death event recorded")
	}
}

func TestLifespanDeath(t *testing.T) {
	s := newTestSim()
	n := hireOne(t, s)
	n.Age = n.MaxLifespan

	s.Tick(0.1)

	if len(s.order) != 0 {
		t.Fatal("nano at max lifespan survived the sweep")
	}
}

func TestWorkShiftClaimsReactorAndProduces(t *testing.T) {
	s := newTestSim()
	b := s.Buildings.Place(building.Bio, 5, 5)
	n := hireOne(t, s)
	n.Skills[nano.SkillWorker] = 10
	n.Moving = false
	n.X, n.Y = s.Grid.Center(5, 5)
	s.Clock.Hour = 9

	s.Tick(0.1) // claims the reactor, sets working
	if n.WorkBuilding != b.ID || n.State != nano.Working {
		t.Fatalf("state %v work building %d, want working at %d", n.State, n.WorkBuilding, b.ID)
	}

	s.Tick(0.1) // arrival snap, admitted
	if !n.Inside || n.CurrentBuilding != b.ID {
		t.Fatalf("inside=%v current=%d, want admitted to %d", n.Inside, n.CurrentBuilding, b.ID)
	}

	s.Tick(0.1) // produces
	if s.Bank.Surge <= 0 {
		t.Fatal("no production from a working nano")
	}
}

func TestReactorCapacityOne(t *testing.T) {
	s := newTestSim()
	b := s.Buildings.Place(building.Bio, 5, 5)
	first := hireOne(t, s)
	second := hireOne(t, s)
	for _, n := range []*nano.Nano{first, second} {
		n.Moving = false
		n.X, n.Y = s.Grid.Center(5, 5)
	}
	s.Clock.Hour = 9

	s.Tick(0.1)
	s.Tick(0.1)

	inside := 0
	for _, n := range []*nano.Nano{first, second} {
		if n.Inside {
			inside++
		}
	}
	if inside != 1 || len(b.Occupants) != 1 {
		t.Fatalf("%d nanos inside a capacity-1 reactor", inside)
	}
}

func TestShiftEndExitsReactor(t *testing.T) {
	s := newTestSim()
	b := s.Buildings.Place(building.Bio, 5, 5)
	n := hireOne(t, s)
	n.Moving = false
	n.X, n.Y = s.Grid.Center(5, 5)
	s.Clock.Hour = 9
	s.Tick(0.1)
	s.Tick(0.1)
	if !n.Inside {
		t.Fatal("setup: nano never entered")
	}

	s.Clock.Hour = 16
	s.Tick(0.1)

	if n.Inside || len(b.Occupants) != 0 {
		t.Fatal("nano stayed in the reactor after shift end")
	}
}

func TestSleepTimeClaimsTent(t *testing.T) {
	s := newTestSim()
	b := s.Buildings.Place(building.Tent, 3, 3)
	n := hireOne(t, s)
	n.Moving = false
	s.Clock.Hour = 23

	s.Tick(0.1)

	if n.HomeBuilding != b.ID {
		t.Fatalf("home building %d, want %d", n.HomeBuilding, b.ID)
	}
	if n.State != nano.Sleeping {
		t.Fatalf("state %v at night with a home, want sleeping", n.State)
	}
}

func TestAmenityVisitPaysOffOnce(t *testing.T) {
	s := newTestSim()
	b := s.Buildings.Place(building.Music, 4, 4)
	n := hireOne(t, s)
	n.Happiness = 50
	n.Moving = false
	n.X, n.Y = s.Grid.Center(4, 4)
	s.Clock.Hour = 18 // free time

	// Tick until the nano commits to the concert and gets admitted,
	// pinning it at the hall so arrival checks can fire.
	for i := 0; i < 400 && !n.Inside; i++ {
		s.Tick(0.1)
		if !n.Inside {
			n.Moving = false
			n.X, n.Y = s.Grid.Center(4, 4)
		}
	}
	if !n.Inside || n.State != nano.HappyTime {
		t.Fatalf("nano never settled into the hall (state %v, inside %v)", n.State, n.Inside)
	}

	happyBefore := n.Happiness
	n.ActivityTimer = n.ActivityDuration // fast-forward the visit
	s.Tick(0.1)

	if n.Inside || len(b.Occupants) != 0 {
		t.Fatal("nano still inside after the visit ended")
	}
	if n.Happiness <= happyBefore {
		t.Fatalf("happiness %.1f did not rise from %.1f", n.Happiness, happyBefore)
	}
	if n.Happiness > happyBefore+2.01 {
		t.Fatalf("happiness gain %.2f, payoff applied more than once", n.Happiness-happyBefore)
	}
}

func TestEventsSince(t *testing.T) {
	s := newTestSim()
	s.tick = 5
	s.addEvent("energy", "early", 0, 0)
	s.tick = 9
	s.addEvent("energy", "late", 0, 0)

	got := s.EventsSince(5)
	if len(got) != 1 || got[0].Description != "late" {
		t.Fatalf("EventsSince(5) = %+v, want only the late event", got)
	}
}

func TestEventListBounded(t *testing.T) {
	s := newTestSim()
	for i := 0; i < maxEvents+100; i++ {
		s.addEvent("energy", "x", 0, 0)
	}
	s.Tick(0.1)
	if len(s.events) > maxEvents {
		t.Fatalf("event list %d entries, want at most %d", len(s.events), maxEvents)
	}
}

func TestDeterministicRuns(t *testing.T) {
	run := func() Status {
		s := newTestSim()
		s.Bank.Surge = 1.0
		s.PurchaseCell(2, 2)
		s.Buildings.Place(building.Bio, 5, 5)
		hireOne(t, s)
		for i := 0; i < 500; i++ {
			s.Tick(0.1)
		}
		return s.Status()
	}

	a, b := run(), run()
	if a != b {
		t.Fatalf("same seed diverged:\n%+v\n%+v", a, b)
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	s := newTestSim()
	s.Bank.Surge = 1.0
	s.PurchaseCell(2, 2)
	s.Buildings.Place(building.Tent, 3, 3)
	n := hireOne(t, s)
	for i := 0; i < 50; i++ {
		s.Tick(0.1)
	}

	st := s.Export()

	fresh := newTestSim()
	fresh.Restore(st)

	a, b := s.Status(), fresh.Status()
	// Weather description is runtime state, not snapshot state.
	b.Weather = a.Weather
	if a != b {
		t.Fatalf("restore mismatch:\n%+v\n%+v", a, b)
	}
	if _, ok := fresh.nanos[n.ID]; !ok {
		t.Fatal("hired nano missing after restore")
	}
}
