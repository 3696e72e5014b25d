package energy

import "testing"

func TestNextCellCostCurve(t *testing.T) {
	b := testBank()
	eu, credits := b.NextCellCost()
	if !approx(eu, 1.0) || !approx(credits, 100) {
		t.Fatalf("first cell cost %.1f EU / %.0f credits, want 1 / 100", eu, credits)
	}

	addCell(b, 1)
	addCell(b, 1)
	eu, credits = b.NextCellCost()
	if !approx(eu, 3.0) || !approx(credits, 100) {
		t.Fatalf("third cell cost %.1f EU / %.0f credits, want 3 / 100", eu, credits)
	}
}

func TestUpgradeCostCurve(t *testing.T) {
	b := testBank()
	addCell(b, 1)
	c := addCell(b, 4)

	eu, credits, ok := b.UpgradeCost(c.Number)
	if !ok {
		t.Fatal("upgrade cost for existing cell not found")
	}
	// number 2 at level 4: 8 EU, 800 credits.
	if !approx(eu, 8.0) || !approx(credits, 800) {
		t.Fatalf("upgrade cost %.1f EU / %.0f credits, want 8 / 800", eu, credits)
	}

	if _, _, ok := b.UpgradeCost(99); ok {
		t.Fatal("upgrade cost reported for unknown cell")
	}
}

func TestPurchaseCellChargesAndNumbers(t *testing.T) {
	b := testBank()
	b.Surge = 1.5

	c, _, ok := b.PurchaseCell(3, 4)
	if !ok {
		t.Fatal("affordable purchase failed")
	}
	if c.Number != 1 || c.Level != 1 || c.X != 3 || c.Y != 4 {
		t.Fatalf("cell %+v, want number 1 level 1 at (3,4)", c)
	}
	if !approx(b.Credits, 900) {
		t.Fatalf("credits %.1f after purchase, want 900", b.Credits)
	}
	if !approx(b.Surge, 0.5) {
		t.Fatalf("surge %.3f after purchase, want 0.5", b.Surge)
	}
}

func TestPurchaseCellRollsBackOnShortfall(t *testing.T) {
	b := testBank()
	b.Surge = 0.5 // next cell needs 1 EU

	_, short, ok := b.PurchaseCell(0, 0)
	if ok {
		t.Fatal("purchase succeeded without EU")
	}
	if !approx(short.EU, 0.5) {
		t.Fatalf("shortfall EU %.3f, want 0.5", short.EU)
	}
	if len(b.Cells) != 0 || !approx(b.Credits, 1000) {
		t.Fatal("failed purchase left state changed")
	}
}

func TestUpgradeCellRaisesLevel(t *testing.T) {
	b := testBank()
	c := addCell(b, 1)
	c.Stored = 1.0 // covers the 1 EU upgrade cost

	if _, ok := b.UpgradeCell(1); !ok {
		t.Fatal("affordable upgrade failed")
	}
	if c.Level != 2 {
		t.Fatalf("level %d after upgrade, want 2", c.Level)
	}
	if !approx(b.Credits, 900) {
		t.Fatalf("credits %.1f, want 900", b.Credits)
	}
}

func TestUpgradeCellLevelCap(t *testing.T) {
	b := testBank()
	addCell(b, 100)
	if _, ok := b.UpgradeCell(1); ok {
		t.Fatal("upgrade succeeded at the level cap")
	}
}

func TestAtMaxCells(t *testing.T) {
	b := testBank()
	for i := 0; i < 100; i++ {
		addCell(b, 1)
	}
	if !b.AtMaxCells() {
		t.Fatal("cap not reported at 100 cells")
	}
}

func TestCellAt(t *testing.T) {
	b := testBank()
	c := addCell(b, 1)
	c.X, c.Y = 2, 7
	if b.CellAt(2, 7) != c {
		t.Fatal("CellAt missed the occupying cell")
	}
	if b.CellAt(2, 8) != nil {
		t.Fatal("CellAt reported a cell on empty ground")
	}
}

func TestInjectCellBypassesCap(t *testing.T) {
	b := testBank()
	c := addCell(b, 1)
	if !b.InjectCell(1, 5.0) {
		t.Fatal("inject into existing cell failed")
	}
	if !approx(c.Stored, 5.0) {
		t.Fatalf("stored %.1f after inject, want 5.0", c.Stored)
	}
	if b.InjectCell(9, 1.0) {
		t.Fatal("inject into missing cell succeeded")
	}
}
