// Snapshot export and restore. The persistence layer stores State; the
// sim never touches the database itself.
package sim

import (
	"github.com/talgya/nanoverse/internal/building"
	"github.com/talgya/nanoverse/internal/energy"
	"github.com/talgya/nanoverse/internal/nano"
)

// ClockState is the calendar portion of a snapshot.
type ClockState struct {
	Minute int `json:"minute"`
	Hour   int `json:"hour"`
	Day    int `json:"day"`
	Month  int `json:"month"`
	Year   int `json:"year"`
}

// ResourceState is the bank portion of a snapshot.
type ResourceState struct {
	Surge     float64 `json:"surge"`
	Credits   float64 `json:"credits"`
	WorkPower float64 `json:"work_power"`
	SellRate  float64 `json:"sell_rate"`
}

// State is a complete colony snapshot. The candidate pool is rolled fresh
// on restore rather than persisted.
type State struct {
	Tick      uint64              `json:"tick"`
	Clock     ClockState          `json:"clock"`
	Resources ResourceState       `json:"resources"`
	Cells     []energy.Cell       `json:"cells"`
	Buildings []building.Building `json:"buildings"`
	Nanos     []nano.Nano         `json:"nanos"`
}

// Export captures the full colony state as values.
func (s *Simulation) Export() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Tick: s.tick,
		Clock: ClockState{
			Minute: s.Clock.Minute,
			Hour:   s.Clock.Hour,
			Day:    s.Clock.Day,
			Month:  s.Clock.Month,
			Year:   s.Clock.Year,
		},
		Resources: ResourceState{
			Surge:     s.Bank.Surge,
			Credits:   s.Bank.Credits,
			WorkPower: s.Bank.WorkPower,
			SellRate:  s.Bank.SellRate,
		},
	}
	for _, c := range s.Bank.Cells {
		st.Cells = append(st.Cells, *c)
	}
	for _, b := range s.Buildings.All() {
		cp := *b
		cp.Occupants = append([]int(nil), b.Occupants...)
		st.Buildings = append(st.Buildings, cp)
	}
	for _, id := range s.order {
		st.Nanos = append(st.Nanos, *s.nanos[id])
	}
	return st
}

// Restore replaces the colony state with a snapshot. The spawner's ID
// counter is raised past every loaded nano so candidates never collide.
func (s *Simulation) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick = st.Tick
	s.Clock.Minute = st.Clock.Minute
	s.Clock.Hour = st.Clock.Hour
	s.Clock.Day = st.Clock.Day
	s.Clock.Month = st.Clock.Month
	s.Clock.Year = st.Clock.Year

	s.Bank = energy.NewBank(s.cfg.Energy)
	s.Bank.Surge = st.Resources.Surge
	s.Bank.Credits = st.Resources.Credits
	s.Bank.WorkPower = st.Resources.WorkPower
	s.Bank.SellRate = st.Resources.SellRate
	for i := range st.Cells {
		c := st.Cells[i]
		s.Bank.Cells = append(s.Bank.Cells, &c)
	}

	s.Buildings = building.NewRegistry(s.cfg.Buildings)
	for i := range st.Buildings {
		b := st.Buildings[i]
		b.Occupants = append([]int(nil), st.Buildings[i].Occupants...)
		s.Buildings.Restore(&b)
	}

	s.nanos = make(map[int]*nano.Nano, len(st.Nanos))
	s.order = s.order[:0]
	maxID := 0
	for i := range st.Nanos {
		n := st.Nanos[i]
		s.nanos[n.ID] = &n
		s.order = append(s.order, n.ID)
		if n.ID > maxID {
			maxID = n.ID
		}
	}
	for _, c := range s.candidates {
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	s.spawner.SetNextID(maxID + 1)
	s.events = nil
}
