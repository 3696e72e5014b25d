// Package building provides the registry of placed structures and their
// worker occupancy. Admission and eviction here are the only mutators of
// a building's occupant list.
package building

import (
	"github.com/talgya/nanoverse/internal/tuning"
)

// Type is the closed set of structures.
type Type uint8

const (
	Bio Type = iota // power production
	Tent            // home
	Study           // education
	Music           // happiness venue
	Camp            // training
)

var typeNames = [...]string{"bio", "tent", "study", "music", "camp"}

// String returns the lowercase type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// TypeFromString parses a type name.
func TypeFromString(s string) (Type, bool) {
	for i, n := range typeNames {
		if n == s {
			return Type(i), true
		}
	}
	return 0, false
}

// Building is a placed structure with a type-fixed worker capacity and an
// ordered occupant list (nano IDs, no duplicates).
type Building struct {
	ID        int   `json:"id"`
	Type      Type  `json:"type"`
	X         int   `json:"x"`
	Y         int   `json:"y"`
	Level     int   `json:"level"`
	Capacity  int   `json:"capacity"`
	Occupants []int `json:"occupants"`
}

// HasSpace reports whether another worker fits.
func (b *Building) HasSpace() bool { return len(b.Occupants) < b.Capacity }

// Contains reports whether the nano is in the occupant list.
func (b *Building) Contains(nanoID int) bool {
	for _, id := range b.Occupants {
		if id == nanoID {
			return true
		}
	}
	return false
}

// Registry owns all placed buildings. Iteration order is placement order.
type Registry struct {
	cfg    tuning.Buildings
	nextID int

	byID  map[int]*Building
	order []int
}

// NewRegistry creates an empty registry with the given per-type specs.
func NewRegistry(cfg tuning.Buildings) *Registry {
	return &Registry{cfg: cfg, nextID: 1, byID: make(map[int]*Building)}
}

// Spec returns the configured capacity and dual cost for a type.
func (r *Registry) Spec(t Type) tuning.BuildingSpec {
	return r.cfg[t.String()]
}

// Place creates a building of the given type at a grid position and assigns
// the next ID. Cost and grid occupancy are the orchestrator's concern.
func (r *Registry) Place(t Type, x, y int) *Building {
	b := &Building{
		ID:       r.nextID,
		Type:     t,
		X:        x,
		Y:        y,
		Level:    1,
		Capacity: r.Spec(t).Capacity,
	}
	r.byID[b.ID] = b
	r.order = append(r.order, b.ID)
	r.nextID++
	return b
}

// Restore re-registers a building loaded from a snapshot, keeping the ID
// counter above it.
func (r *Registry) Restore(b *Building) {
	r.byID[b.ID] = b
	r.order = append(r.order, b.ID)
	if b.ID >= r.nextID {
		r.nextID = b.ID + 1
	}
}

// Get returns the building with the given ID, or nil.
func (r *Registry) Get(id int) *Building { return r.byID[id] }

// All returns the buildings in placement order.
func (r *Registry) All() []*Building {
	out := make([]*Building, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of placed buildings.
func (r *Registry) Len() int { return len(r.order) }

// FindAvailable returns the first-placed building of a type with spare
// capacity; ordering beyond "first found" is not significant.
func (r *Registry) FindAvailable(t Type) (int, bool) {
	for _, id := range r.order {
		b := r.byID[id]
		if b.Type == t && b.HasSpace() {
			return id, true
		}
	}
	return 0, false
}

// OccupiedAt reports whether any building sits on a grid position.
func (r *Registry) OccupiedAt(x, y int) bool {
	for _, id := range r.order {
		b := r.byID[id]
		if b.X == x && b.Y == y {
			return true
		}
	}
	return false
}

// Admit adds a nano to a building's occupant list. Refused at capacity or
// when the nano is already inside.
func (r *Registry) Admit(nanoID, buildingID int) bool {
	b := r.byID[buildingID]
	if b == nil || !b.HasSpace() || b.Contains(nanoID) {
		return false
	}
	b.Occupants = append(b.Occupants, nanoID)
	return true
}

// Evict removes a nano from a building's occupant list. Idempotent.
func (r *Registry) Evict(nanoID, buildingID int) {
	b := r.byID[buildingID]
	if b == nil {
		return
	}
	for i, id := range b.Occupants {
		if id == nanoID {
			b.Occupants = append(b.Occupants[:i], b.Occupants[i+1:]...)
			return
		}
	}
}

// EvictEverywhere removes a nano from every occupant list. Death cleanup.
func (r *Registry) EvictEverywhere(nanoID int) {
	for _, id := range r.order {
		r.Evict(nanoID, id)
	}
}
