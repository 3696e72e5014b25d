// Player commands. Every command takes the sim mutex, validates, applies
// atomically, and returns a Result the caller can render as a floating
// label. Failures leave all balances untouched and record a reject event.
package sim

import (
	"fmt"

	"github.com/talgya/nanoverse/internal/building"
	"github.com/talgya/nanoverse/internal/energy"
)

// Code classifies a command outcome.
type Code uint8

const (
	CodeOK Code = iota
	CodeInsufficient
	CodeCapacity
	CodeInvalidPlacement
	CodeNotFound
)

var codeNames = [...]string{"ok", "insufficient", "capacity", "invalid_placement", "not_found"}

func (c Code) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "unknown"
}

// Result is the outcome of a command: a short label for player feedback
// and, on an affordability failure, the missing amounts.
type Result struct {
	OK             bool    `json:"ok"`
	Code           Code    `json:"-"`
	Status         string  `json:"status"`
	Label          string  `json:"label"`
	MissingEU      float64 `json:"missing_eu,omitempty"`
	MissingCredits float64 `json:"missing_credits,omitempty"`
}

func okResult(label string) Result {
	return Result{OK: true, Code: CodeOK, Status: CodeOK.String(), Label: label}
}

func failResult(code Code, label string) Result {
	return Result{Code: code, Status: code.String(), Label: label}
}

func shortResult(short energy.Shortfall) Result {
	r := failResult(CodeInsufficient, shortLabel(short))
	r.MissingEU = short.EU
	r.MissingCredits = short.Credits
	return r
}

func shortLabel(short energy.Shortfall) string {
	switch {
	case short.EU > 0 && short.Credits > 0:
		return fmt.Sprintf("need %.1f EU, %.0f credits", short.EU, short.Credits)
	case short.EU > 0:
		return fmt.Sprintf("need %.1f EU", short.EU)
	default:
		return fmt.Sprintf("need %.0f credits", short.Credits)
	}
}

// ManualWork adds one work-power worth of energy through the capped
// admission path and reports what was actually admitted.
func (s *Simulation) ManualWork() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	admitted := s.Bank.AddEnergy(s.Bank.WorkPower)
	x, y := s.Grid.HubCenter()
	s.addEvent("energy", fmt.Sprintf("+%.2f EU", admitted), x, y)
	return okResult(fmt.Sprintf("+%.2f EU", admitted))
}

// UpgradeWorkPower raises the manual work yield for a fixed dual cost.
func (s *Simulation) UpgradeWorkPower() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	short, ok := s.Bank.UpgradeWorkPower()
	if !ok {
		s.rejectEvent(shortLabel(short))
		return shortResult(short)
	}
	return okResult(fmt.Sprintf("work power %.1f", s.Bank.WorkPower))
}

// SellEnergy converts stored energy to credits at the decaying rate.
func (s *Simulation) SellEnergy(amount float64) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	earned, ok := s.Bank.Sell(amount)
	if !ok {
		missing := amount - s.Bank.SystemEnergy()
		if missing < 0 {
			missing = 0
		}
		r := failResult(CodeInsufficient, fmt.Sprintf("need %.1f EU", missing))
		r.MissingEU = missing
		s.rejectEvent(r.Label)
		return r
	}
	s.addEventAtHub("energy", fmt.Sprintf("+%.0f credits", earned))
	return okResult(fmt.Sprintf("+%.0f credits", earned))
}

// PurchaseCell buys the next cell and places it on an open grid position.
func (s *Simulation) PurchaseCell(x, y int) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Bank.AtMaxCells() {
		s.rejectEvent("cell limit reached")
		return failResult(CodeCapacity, "cell limit reached")
	}
	if !s.placeable(x, y) {
		return failResult(CodeInvalidPlacement, "blocked position")
	}
	c, short, ok := s.Bank.PurchaseCell(x, y)
	if !ok {
		s.rejectEvent(shortLabel(short))
		return shortResult(short)
	}
	px, py := s.Grid.Center(x, y)
	s.addEvent("build", fmt.Sprintf("cell #%d built", c.Number), px, py)
	return okResult(fmt.Sprintf("cell #%d", c.Number))
}

// UpgradeCell raises a cell's level, and with it its capacity.
func (s *Simulation) UpgradeCell(number int) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.Bank.Cell(number)
	if c == nil {
		return failResult(CodeNotFound, fmt.Sprintf("no cell #%d", number))
	}
	if c.Level >= s.cfg.Energy.MaxCellLevel {
		s.rejectEvent(fmt.Sprintf("cell #%d at max level", number))
		return failResult(CodeCapacity, "max level")
	}
	short, ok := s.Bank.UpgradeCell(number)
	if !ok {
		s.rejectEvent(shortLabel(short))
		return shortResult(short)
	}
	px, py := s.Grid.Center(c.X, c.Y)
	s.addEvent("build", fmt.Sprintf("cell #%d level %d", number, c.Level), px, py)
	return okResult(fmt.Sprintf("level %d", c.Level))
}

// PlaceBuilding charges a building's dual cost and places it on an open
// grid position.
func (s *Simulation) PlaceBuilding(t building.Type, x, y int) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.placeable(x, y) {
		return failResult(CodeInvalidPlacement, "blocked position")
	}
	spec := s.Buildings.Spec(t)
	short, ok := s.Bank.Charge(spec.CostEU, spec.CostCr)
	if !ok {
		s.rejectEvent(shortLabel(short))
		return shortResult(short)
	}
	b := s.Buildings.Place(t, x, y)
	px, py := s.Grid.Center(x, y)
	s.addEvent("build", fmt.Sprintf("%s built", b.Type), px, py)
	return okResult(fmt.Sprintf("%s #%d", b.Type, b.ID))
}

// Hire promotes a candidate into the colony for wage times the hire
// factor. The new nano spawns at the hub and the pool is refilled.
func (s *Simulation) Hire(candidateID int) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.candidates {
		if c.ID == candidateID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return failResult(CodeNotFound, "no such candidate")
	}
	c := s.candidates[idx]
	cost := c.HireCost(s.cfg.Nano.HireCostFactor)
	if !s.Bank.SpendCredits(cost) {
		missing := cost - s.Bank.Credits
		r := failResult(CodeInsufficient, fmt.Sprintf("need %.0f credits", missing))
		r.MissingCredits = missing
		s.rejectEvent(r.Label)
		return r
	}

	c.X, c.Y = s.Grid.HubCenter()
	s.nanos[c.ID] = c
	s.order = append(s.order, c.ID)
	s.candidates[idx] = s.spawner.Next()
	s.wander(c)

	s.addEvent("hire", fmt.Sprintf("%s joined the colony", c.Name), c.X, c.Y)
	return okResult(fmt.Sprintf("%s hired", c.Name))
}

// MoveNano sends a nano toward a pixel position. The schedule may override
// the order on a later tick.
func (s *Simulation) MoveNano(id int, x, y float64) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nanos[id]
	if !ok {
		return failResult(CodeNotFound, "no such nano")
	}
	if n.Inside {
		s.exitBuilding(n)
	}
	n.MoveTo(x, y)
	return okResult("moving")
}

// InjectCellEnergy adds energy directly to a cell, bypassing the surge
// admission cap. Overflow correction bleeds any excess back down.
func (s *Simulation) InjectCellEnergy(number int, amount float64) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Bank.InjectCell(number, amount) {
		return failResult(CodeNotFound, fmt.Sprintf("no cell #%d", number))
	}
	c := s.Bank.Cell(number)
	px, py := s.Grid.Center(c.X, c.Y)
	s.addEvent("energy", fmt.Sprintf("cell #%d +%.1f EU", number, amount), px, py)
	return okResult(fmt.Sprintf("+%.1f EU", amount))
}

// placeable reports whether a grid position can take a new cell or
// building: in bounds, walkable, and unoccupied.
func (s *Simulation) placeable(x, y int) bool {
	if !s.Grid.Walkable(x, y) {
		return false
	}
	if s.Buildings.OccupiedAt(x, y) {
		return false
	}
	return s.Bank.CellAt(x, y) == nil
}

func (s *Simulation) rejectEvent(label string) {
	s.addEventAtHub("reject", label)
}

func (s *Simulation) addEventAtHub(category, label string) {
	x, y := s.Grid.HubCenter()
	s.addEvent(category, label, x, y)
}
