package energy

// Purchase and upgrade cost curves. A new cell's EU cost equals its
// sequence number; upgrades scale with number times current level.

// NextCellNumber is the sequence number the next purchase will receive.
func (b *Bank) NextCellNumber() int { return len(b.Cells) + 1 }

// AtMaxCells reports whether the cell-count ceiling is reached.
func (b *Bank) AtMaxCells() bool { return len(b.Cells) >= b.cfg.MaxCells }

// NextCellCost returns the dual cost of the next cell purchase.
func (b *Bank) NextCellCost() (eu, credits float64) {
	return float64(b.NextCellNumber()), b.cfg.CellCreditCost
}

// UpgradeCost returns the dual cost of upgrading a cell at its current
// level, or false for an unknown number.
func (b *Bank) UpgradeCost(number int) (eu, credits float64, ok bool) {
	c := b.Cell(number)
	if c == nil {
		return 0, 0, false
	}
	nl := float64(number * c.Level)
	return nl, nl * b.cfg.UpgradeCreditFactor, true
}

// Cell returns the cell with the given sequence number, or nil.
func (b *Bank) Cell(number int) *Cell {
	if number < 1 || number > len(b.Cells) {
		return nil
	}
	return b.Cells[number-1]
}

// CellAt returns the cell occupying a grid position, or nil.
func (b *Bank) CellAt(x, y int) *Cell {
	for _, c := range b.Cells {
		if c.X == x && c.Y == y {
			return c
		}
	}
	return nil
}

// PurchaseCell charges the next cell's dual cost and creates it at the
// given grid position. The caller checks placement validity and the cell
// ceiling first.
func (b *Bank) PurchaseCell(x, y int) (*Cell, Shortfall, bool) {
	eu, credits := b.NextCellCost()
	short, ok := b.Charge(eu, credits)
	if !ok {
		return nil, short, false
	}
	c := &Cell{Number: b.NextCellNumber(), X: x, Y: y, Level: 1}
	b.Cells = append(b.Cells, c)
	return c, Shortfall{}, true
}

// UpgradeCell charges the upgrade cost and raises the cell's level in
// place. Fails for unknown numbers and at the level cap.
func (b *Bank) UpgradeCell(number int) (Shortfall, bool) {
	c := b.Cell(number)
	if c == nil || c.Level >= b.cfg.MaxCellLevel {
		return Shortfall{}, false
	}
	eu, credits, _ := b.UpgradeCost(number)
	short, ok := b.Charge(eu, credits)
	if !ok {
		return short, false
	}
	c.Level++
	return Shortfall{}, true
}

// InjectCell adds amount directly to a cell's store, bypassing the capped
// admission path. The store may transiently exceed capacity; overflow
// correction bleeds it back down. Used by the production-effect animation.
func (b *Bank) InjectCell(number int, amount float64) bool {
	c := b.Cell(number)
	if c == nil || amount <= 0 {
		return false
	}
	c.Stored += amount
	return true
}
