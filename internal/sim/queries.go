// Read-side views. Every query copies under the mutex so callers never
// hold references into live state.
package sim

import (
	"github.com/talgya/nanoverse/internal/building"
	"github.com/talgya/nanoverse/internal/clock"
	"github.com/talgya/nanoverse/internal/energy"
	"github.com/talgya/nanoverse/internal/nano"
)

// Status is the top-line colony summary.
type Status struct {
	Tick     uint64 `json:"tick"`
	Calendar string `json:"calendar"`
	Minute   int    `json:"minute"`
	Hour     int    `json:"hour"`
	Day      int    `json:"day"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
	Season   string `json:"season"`
	Daytime  bool   `json:"daytime"`
	Weather  string `json:"weather"`

	Surge         float64 `json:"surge"`
	CellEnergy    float64 `json:"cell_energy"`
	TotalCapacity float64 `json:"total_capacity"`
	Credits       float64 `json:"credits"`
	WorkPower     float64 `json:"work_power"`
	SellRate      float64 `json:"sell_rate"`

	Population int `json:"population"`
	Candidates int `json:"candidates"`
	Cells      int `json:"cells"`
	Buildings  int `json:"buildings"`
}

// Status returns the colony summary.
func (s *Simulation) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Tick:     s.tick,
		Calendar: s.Clock.String(),
		Minute:   s.Clock.Minute,
		Hour:     s.Clock.Hour,
		Day:      s.Clock.Day,
		Month:    s.Clock.Month,
		Year:     s.Clock.Year,
		Season:   clock.SeasonName(s.Clock.CurrentSeason()),
		Daytime:  s.Clock.IsDaytime(),
		Weather:  s.mods.Description,

		Surge:         s.Bank.Surge,
		CellEnergy:    s.Bank.CellEnergy(),
		TotalCapacity: s.Bank.TotalCapacity(),
		Credits:       s.Bank.Credits,
		WorkPower:     s.Bank.WorkPower,
		SellRate:      s.Bank.SellRate,

		Population: len(s.order),
		Candidates: len(s.candidates),
		Cells:      len(s.Bank.Cells),
		Buildings:  s.Buildings.Len(),
	}
}

// CellViews returns value copies of all cells in number order.
func (s *Simulation) CellViews() []energy.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]energy.Cell, 0, len(s.Bank.Cells))
	for _, c := range s.Bank.Cells {
		out = append(out, *c)
	}
	return out
}

// BuildingViews returns value copies of all buildings in placement order,
// occupant lists included.
func (s *Simulation) BuildingViews() []building.Building {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.Buildings.All()
	out := make([]building.Building, 0, len(all))
	for _, b := range all {
		cp := *b
		cp.Occupants = append([]int(nil), b.Occupants...)
		out = append(out, cp)
	}
	return out
}

// NanoViews returns value copies of all living nanos in hire order.
func (s *Simulation) NanoViews() []nano.Nano {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]nano.Nano, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.nanos[id])
	}
	return out
}

// CandidateViews returns value copies of the hire pool.
func (s *Simulation) CandidateViews() []nano.Nano {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]nano.Nano, 0, len(s.candidates))
	for _, c := range s.candidates {
		out = append(out, *c)
	}
	return out
}

// EventsSince returns events with a tick strictly greater than the given
// tick, oldest first.
func (s *Simulation) EventsSince(tick uint64) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Event
	for _, e := range s.events {
		if e.Tick > tick {
			out = append(out, e)
		}
	}
	return out
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Nano returns a value copy of one nano.
func (s *Simulation) Nano(id int) (nano.Nano, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nanos[id]
	if !ok {
		return nano.Nano{}, false
	}
	return *n, true
}
