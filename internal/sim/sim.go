// Package sim is the orchestrator: it owns every subsystem and advances
// them in a fixed order each tick. All mutation happens on the caller's
// goroutine under one mutex, so subsystem code never locks.
package sim

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/talgya/nanoverse/internal/building"
	"github.com/talgya/nanoverse/internal/clock"
	"github.com/talgya/nanoverse/internal/energy"
	"github.com/talgya/nanoverse/internal/grid"
	"github.com/talgya/nanoverse/internal/nano"
	"github.com/talgya/nanoverse/internal/tuning"
	"github.com/talgya/nanoverse/internal/weather"
)

// ModifierSource supplies the current weather modifiers. The sim reads it
// once per tick; nil means neutral weather.
type ModifierSource interface {
	Current(season clock.Season, daytime bool) weather.Modifiers
}

// Event is a notable occurrence, timestamped by tick number.
type Event struct {
	Tick        uint64  `json:"tick"`
	Description string  `json:"description"`
	Category    string  `json:"category"` // "energy", "build", "hire", "death", "reject"
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// maxEvents bounds the in-memory event list.
const maxEvents = 1000

// Simulation holds the complete colony state and wires the subsystems
// together.
type Simulation struct {
	mu  sync.Mutex
	cfg tuning.Config
	rng *rand.Rand

	Clock     *clock.Clock
	Bank      *energy.Bank
	Buildings *building.Registry
	Grid      *grid.Grid

	nanos      map[int]*nano.Nano
	order      []int // nano IDs in hire order
	candidates []*nano.Nano
	spawner    *nano.Spawner

	Weather ModifierSource
	mods    weather.Modifiers

	tick   uint64
	events []Event
}

// New creates a fresh colony: empty bank, generated grid, full candidate
// pool, clock at year zero.
func New(cfg tuning.Config) *Simulation {
	s := &Simulation{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		Clock:   clock.New(cfg.Time.SunriseHour, cfg.Time.SunsetHour),
		Bank:    energy.NewBank(cfg.Energy),
		Grid:    grid.Generate(cfg.Grid.Cols, cfg.Grid.Rows, cfg.Grid.CellSize, cfg.Seed, cfg.Grid.Blocked),
		nanos:   make(map[int]*nano.Nano),
		spawner: nano.NewSpawner(cfg.Seed),
		mods:    weather.Neutral(),
	}
	s.Buildings = building.NewRegistry(cfg.Buildings)
	s.Clock.OnHour = s.hourTick
	s.Clock.OnYear = s.yearTick

	for i := 0; i < cfg.Nano.CandidatePool; i++ {
		s.candidates = append(s.candidates, s.spawner.Next())
	}
	return s
}

// Tick advances the simulation by dt real seconds. Order is fixed: clock,
// economy, production, agents, death sweep.
func (s *Simulation) Tick(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	if s.Weather != nil {
		s.mods = s.Weather.Current(s.Clock.CurrentSeason(), s.Clock.IsDaytime())
	}

	s.Clock.Advance(dt)

	s.Bank.Dissipate(dt)
	s.Bank.TransferToCells(dt)
	s.Bank.CorrectOverflow(dt)

	s.produce(dt)

	for _, id := range s.order {
		n := s.nanos[id]
		n.UpdatePosition(dt, s.cfg.Nano.MoveSpeed)
		s.stepNano(n, dt)
	}

	s.reapDead()

	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
}

// hourTick runs at each hour rollover: meal attempts, then needs decay.
// Called from Clock.Advance while the tick mutex is held.
func (s *Simulation) hourTick(hour int) {
	meal := false
	for _, h := range s.cfg.Nano.MealHours {
		if h == hour {
			meal = true
			break
		}
	}

	for _, id := range s.order {
		n := s.nanos[id]
		if meal && n.MealsToday < s.cfg.Nano.MealsPerDay {
			if s.Bank.DrainSystem(s.cfg.Energy.MealCost) {
				n.MealEaten()
			} else {
				n.MealMissed(s.cfg.Nano)
				s.addEvent("reject", fmt.Sprintf("%s missed a meal", n.Name), n.X, n.Y)
			}
		}
		n.ApplyHourlyNeeds(hour, s.cfg.Nano)
	}
}

// yearTick applies the aging curve to every nano.
func (s *Simulation) yearTick(year int) {
	for _, id := range s.order {
		s.nanos[id].AgeOneYear()
	}
}

// produce runs BIO generation: each nano working inside a BIO reactor
// yields 1 EU per sim-hour at worker skill 10, scaled by skill and the
// weather production modifier. Output goes through the capped surge
// admission path.
func (s *Simulation) produce(dt float64) {
	for _, b := range s.Buildings.All() {
		if b.Type != building.Bio {
			continue
		}
		for _, id := range b.Occupants {
			n, ok := s.nanos[id]
			if !ok || n.State != nano.Working || !n.Inside || n.CurrentBuilding != b.ID {
				continue
			}
			eu := 1.0 * (n.Skills[nano.SkillWorker] / nano.MaxSkill) * (dt / 3600.0) * s.mods.Production
			s.Bank.AddEnergy(eu)
		}
	}
}

// reapDead removes every nano whose terminal condition holds, evicting it
// from all occupant lists in the same tick.
func (s *Simulation) reapDead() {
	for i := 0; i < len(s.order); {
		id := s.order[i]
		n := s.nanos[id]
		if !n.Dead() {
			i++
			continue
		}
		s.Buildings.EvictEverywhere(id)
		delete(s.nanos, id)
		s.order = append(s.order[:i], s.order[i+1:]...)
		s.addEvent("death", fmt.Sprintf("%s has died", n.Name), n.X, n.Y)
	}
}

func (s *Simulation) addEvent(category, description string, x, y float64) {
	s.events = append(s.events, Event{
		Tick:        s.tick,
		Description: description,
		Category:    category,
		X:           x,
		Y:           y,
	})
}
