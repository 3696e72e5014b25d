package persistence

import (
	"path/filepath"
	"testing"

	"github.com/talgya/nanoverse/internal/building"
	"github.com/talgya/nanoverse/internal/energy"
	"github.com/talgya/nanoverse/internal/nano"
	"github.com/talgya/nanoverse/internal/sim"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "colony.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleState() sim.State {
	return sim.State{
		Tick: 4200,
		Clock: sim.ClockState{
			Minute: 30, Hour: 14, Day: 5, Month: 2, Year: 3,
		},
		Resources: sim.ResourceState{
			Surge: 0.8, Credits: 2500, WorkPower: 0.3, SellRate: 810,
		},
		Cells: []energy.Cell{
			{Number: 1, X: 2, Y: 3, Level: 2, Stored: 1.5},
			{Number: 2, X: 4, Y: 4, Level: 1, Stored: 0.2},
		},
		Buildings: []building.Building{
			{ID: 1, Type: building.Bio, X: 5, Y: 5, Level: 1, Capacity: 1, Occupants: []int{7}},
			{ID: 2, Type: building.Tent, X: 6, Y: 6, Level: 1, Capacity: 2, Occupants: []int{}},
		},
		Nanos: []nano.Nano{
			{
				ID: 7, Name: "Vex", Age: 33, MaxLifespan: 78,
				Speed: 104, Wage: 11, Happiness: 72.5, Health: 88,
				Intellect: 12.5, Force: 10.1,
				X: 176, Y: 176, State: nano.Working,
				Moving: true, TargetX: 208, TargetY: 176,
				WorkBuilding: 1, HomeBuilding: 2,
				CurrentBuilding: 1, Inside: true,
				ActivityTimer: 12.5, ActivityDuration: 90,
				MealsToday: 2, HoursWithoutFood: 3, HoursHomeless: 0,
				Skills: [3]float64{4.5, 1, 1},
			},
		},
	}
}

func TestHasStateFlipsOnFirstSave(t *testing.T) {
	db := openTestDB(t)
	if db.HasState() {
		t.Fatal("fresh database reports saved state")
	}
	if err := db.SaveState(sampleState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !db.HasState() {
		t.Fatal("saved state not detected")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	want := sampleState()
	if err := db.SaveState(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := db.LoadState()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.Tick != want.Tick {
		t.Fatalf("tick %d, want %d", got.Tick, want.Tick)
	}
	if got.Clock != want.Clock {
		t.Fatalf("clock %+v, want %+v", got.Clock, want.Clock)
	}
	if got.Resources != want.Resources {
		t.Fatalf("resources %+v, want %+v", got.Resources, want.Resources)
	}

	if len(got.Cells) != 2 || got.Cells[0] != want.Cells[0] || got.Cells[1] != want.Cells[1] {
		t.Fatalf("cells %+v, want %+v", got.Cells, want.Cells)
	}

	if len(got.Buildings) != 2 {
		t.Fatalf("buildings %d, want 2", len(got.Buildings))
	}
	b := got.Buildings[0]
	if b.Type != building.Bio || len(b.Occupants) != 1 || b.Occupants[0] != 7 {
		t.Fatalf("building round trip lost occupants: %+v", b)
	}

	if len(got.Nanos) != 1 {
		t.Fatalf("nanos %d, want 1", len(got.Nanos))
	}
	n := got.Nanos[0]
	w := want.Nanos[0]
	if n.ID != w.ID || n.Name != w.Name || n.State != w.State {
		t.Fatalf("nano identity: %+v", n)
	}
	if !n.Inside || n.CurrentBuilding != 1 {
		t.Fatalf("nano residency lost: inside=%v current=%d", n.Inside, n.CurrentBuilding)
	}
	if n.Skills != w.Skills {
		t.Fatalf("skills %v, want %v", n.Skills, w.Skills)
	}
	if n.Happiness != w.Happiness || n.HoursWithoutFood != w.HoursWithoutFood {
		t.Fatalf("nano stats: %+v", n)
	}
	if !n.Moving || n.TargetX != w.TargetX || n.TargetY != w.TargetY {
		t.Fatalf("movement lost: moving=%v target (%.0f,%.0f)", n.Moving, n.TargetX, n.TargetY)
	}
	if n.ActivityTimer != w.ActivityTimer || n.ActivityDuration != w.ActivityDuration {
		t.Fatalf("activity clock lost: %.1f / %.1f", n.ActivityTimer, n.ActivityDuration)
	}
}

func TestSaveStateReplacesPrevious(t *testing.T) {
	db := openTestDB(t)
	first := sampleState()
	if err := db.SaveState(first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := first
	second.Tick = 9000
	second.Nanos = nil // everyone died
	if err := db.SaveState(second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := db.LoadState()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Tick != 9000 {
		t.Fatalf("tick %d, want the later snapshot", got.Tick)
	}
	if len(got.Nanos) != 0 {
		t.Fatalf("%d nanos survived a full replace", len(got.Nanos))
	}
}

func TestLoadStateEmpty(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadState(); err == nil {
		t.Fatal("load from an empty database succeeded")
	}
}

func TestEventLogAppendsAndLimits(t *testing.T) {
	db := openTestDB(t)
	batch := []sim.Event{
		{Tick: 1, Description: "cell #1 built", Category: "build"},
		{Tick: 2, Description: "+0.10 EU", Category: "energy"},
	}
	if err := db.SaveEvents(batch); err != nil {
		t.Fatalf("save events: %v", err)
	}
	if err := db.SaveEvents([]sim.Event{
		{Tick: 3, Description: "Vex joined the colony", Category: "hire"},
	}); err != nil {
		t.Fatalf("append events: %v", err)
	}

	got, err := db.RecentEvents(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want limit 2", len(got))
	}
	if got[0].Tick != 3 || got[0].Category != "hire" {
		t.Fatalf("newest first order broken: %+v", got)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveMeta("schema_note", "v1"); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	if err := db.SaveMeta("schema_note", "v2"); err != nil {
		t.Fatalf("replace meta: %v", err)
	}
	v, err := db.GetMeta("schema_note")
	if err != nil || v != "v2" {
		t.Fatalf("meta = %q, %v; want v2", v, err)
	}
}
