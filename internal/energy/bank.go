// Package energy implements the resource-flow engine: the surge capacitor
// (liquid EU buffer), the credit ledger, and the numbered cell bank. No
// operation here creates or destroys energy outside the defined admission,
// transfer, bleed, and drain rules.
package energy

import (
	"math"

	"github.com/talgya/nanoverse/internal/tuning"
)

// epsilon absorbs float residue in proportional drains.
const epsilon = 1e-3

// Cell is a discrete energy store. Capacity equals its level. Numbers are
// dense, 1-based, assigned at purchase and never reused.
type Cell struct {
	Number int     `json:"number"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Level  int     `json:"level"`
	Stored float64 `json:"stored"`
}

// Capacity is the cell's storage ceiling in EU.
func (c *Cell) Capacity() float64 { return float64(c.Level) }

// Shortfall reports how much a failed dual-cost transaction was missing,
// for the caller's floating-label feedback.
type Shortfall struct {
	EU      float64
	Credits float64
}

// Zero reports whether nothing was missing.
func (s Shortfall) Zero() bool { return s.EU == 0 && s.Credits == 0 }

// Bank owns the surge capacitor, credits, and all cells. The orchestrator
// is its only mutator during a tick.
type Bank struct {
	cfg tuning.Energy

	Surge     float64
	Credits   float64
	WorkPower float64
	SellRate  float64

	Cells []*Cell // ordered by cell number
}

// NewBank creates a bank with the configured starting balances and no cells.
func NewBank(cfg tuning.Energy) *Bank {
	return &Bank{
		cfg:       cfg,
		Credits:   cfg.StartingCredits,
		WorkPower: cfg.StartingWorkPower,
		SellRate:  cfg.SellRate,
	}
}

// Ceiling is the current surge admission cap: a fixed small constant with
// zero cells, total system capacity otherwise.
func (b *Bank) Ceiling() float64 {
	if len(b.Cells) == 0 {
		return b.cfg.SurgeCeiling
	}
	return b.TotalCapacity()
}

// TotalCapacity is the sum of all cell levels.
func (b *Bank) TotalCapacity() float64 {
	total := 0.0
	for _, c := range b.Cells {
		total += c.Capacity()
	}
	return total
}

// CellEnergy is the total energy stored across all cells.
func (b *Bank) CellEnergy() float64 {
	total := 0.0
	for _, c := range b.Cells {
		total += c.Stored
	}
	return total
}

// SystemEnergy is surge capacitor plus all cells.
func (b *Bank) SystemEnergy() float64 {
	return b.Surge + b.CellEnergy()
}

// AddEnergy admits amount into the surge capacitor up to the ceiling and
// discards the excess. Returns the admitted amount. Manual work and BIO
// production both route through here.
func (b *Bank) AddEnergy(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	space := b.Ceiling() - b.Surge
	if space <= 0 {
		return 0
	}
	admitted := math.Min(amount, space)
	b.Surge += admitted
	return admitted
}

// Dissipate bleeds the surge capacitor when no cells exist: a fixed slow
// absolute rate below the ceiling, proportional at or above it. With cells
// present the capacitor holds energy until it transfers.
func (b *Bank) Dissipate(dt float64) {
	if len(b.Cells) > 0 || b.Surge <= 0 {
		return
	}
	var loss float64
	if b.Surge <= b.cfg.SurgeCeiling {
		loss = b.cfg.SlowBleedRate * dt
	} else {
		loss = b.Surge * b.cfg.FastBleedFrac * dt
	}
	b.Surge = math.Max(0, b.Surge-loss)
}

// TransferToCells moves a rate-limited amount from the surge capacitor into
// cells below capacity, split evenly, each capped by its remaining space.
// Only what was actually placed leaves the capacitor. Returns the amount
// moved.
func (b *Bank) TransferToCells(dt float64) float64 {
	if b.Surge <= 0 || len(b.Cells) == 0 {
		return 0
	}
	budget := math.Min(b.Surge, b.cfg.TransferRate*dt)
	if budget <= 0 {
		return 0
	}

	var under []*Cell
	for _, c := range b.Cells {
		if c.Stored < c.Capacity() {
			under = append(under, c)
		}
	}
	if len(under) == 0 {
		return 0
	}

	share := budget / float64(len(under))
	moved := 0.0
	for _, c := range under {
		take := math.Min(share, c.Capacity()-c.Stored)
		if take > 0 {
			c.Stored += take
			moved += take
		}
	}
	b.Surge -= moved
	return moved
}

// CorrectOverflow bleeds any cell above capacity down at a fast proportional
// rate, flooring at capacity. Runs every tick regardless of the transfer
// step, so externally injected energy converges.
func (b *Bank) CorrectOverflow(dt float64) {
	for _, c := range b.Cells {
		cap := c.Capacity()
		if c.Stored > cap {
			excess := c.Stored - cap
			c.Stored = math.Max(cap, c.Stored-excess*b.cfg.OverflowBleedFrac*dt)
		}
	}
}

// DrainCells removes amount from the cells in number order, emptying each
// before touching the next. All-or-nothing: fails without state change
// when the cells hold less than amount.
func (b *Bank) DrainCells(amount float64) bool {
	if amount <= 0 {
		return true
	}
	if b.CellEnergy()+epsilon < amount {
		return false
	}
	remaining := amount
	for _, c := range b.Cells {
		if remaining <= 0 {
			break
		}
		if c.Stored > 0 {
			take := math.Min(c.Stored, remaining)
			c.Stored -= take
			remaining -= take
		}
	}
	return remaining <= epsilon
}

// DrainSystem removes amount taking the surge capacitor first, then cells.
// All-or-nothing against the combined pool.
func (b *Bank) DrainSystem(amount float64) bool {
	if amount <= 0 {
		return true
	}
	if b.SystemEnergy()+epsilon < amount {
		return false
	}
	fromSurge := math.Min(b.Surge, amount)
	rest := amount - fromSurge
	if rest > 0 && !b.DrainCells(rest) {
		return false
	}
	b.Surge -= fromSurge
	return true
}

// SpendCredits deducts amount if affordable.
func (b *Bank) SpendCredits(amount float64) bool {
	if b.Credits < amount {
		return false
	}
	b.Credits -= amount
	return true
}

// Charge executes a dual EU+credit cost atomically: both availabilities are
// verified before anything is deducted. On failure it reports the missing
// amounts and leaves both balances untouched.
func (b *Bank) Charge(eu, credits float64) (Shortfall, bool) {
	var short Shortfall
	if avail := b.SystemEnergy(); avail+epsilon < eu {
		short.EU = eu - avail
	}
	if b.Credits < credits {
		short.Credits = credits - b.Credits
	}
	if !short.Zero() {
		return short, false
	}
	b.Credits -= credits
	b.DrainSystem(eu)
	return Shortfall{}, true
}

// Sell drains amount (cells first, proportionally, then surge) and credits
// amount times the rate in effect before decay. The rate then decays toward
// the floor. Fails without state change when the combined pools hold less
// than amount.
func (b *Bank) Sell(amount float64) (float64, bool) {
	if amount <= 0 || b.SystemEnergy()+epsilon < amount {
		return 0, false
	}
	fromCells := math.Min(b.CellEnergy(), amount)
	if fromCells > 0 && !b.DrainCells(fromCells) {
		return 0, false
	}
	b.Surge = math.Max(0, b.Surge-(amount-fromCells))

	earned := amount * b.SellRate
	b.Credits += earned
	b.SellRate = math.Max(b.SellRate*b.cfg.SellDecay, b.cfg.SellFloor)
	return earned, true
}

// UpgradeWorkPower raises the manual work yield by the configured step for
// a fixed dual cost.
func (b *Bank) UpgradeWorkPower() (Shortfall, bool) {
	short, ok := b.Charge(b.cfg.WorkUpgradeEU, b.cfg.WorkUpgradeCredits)
	if !ok {
		return short, false
	}
	b.WorkPower += b.cfg.WorkUpgradeStep
	return Shortfall{}, true
}
