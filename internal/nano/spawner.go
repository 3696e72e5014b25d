package nano

import (
	"fmt"
	"math/rand"
)

var nameStems = []string{"Zyx", "Qor", "Vex", "Nix", "Kol", "Jax", "Ryz", "Pyx", "Mox", "Lux"}

// Spawner generates hire candidates with randomized attributes from a
// seeded source, so a run is reproducible.
type Spawner struct {
	rng    *rand.Rand
	nextID int
}

// NewSpawner creates a spawner seeded for deterministic candidate rolls.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{rng: rand.New(rand.NewSource(seed)), nextID: 1}
}

// SetNextID raises the ID counter, used after restoring a saved world so
// new candidates never collide with loaded nanos.
func (s *Spawner) SetNextID(id int) {
	if id > s.nextID {
		s.nextID = id
	}
}

// Next rolls a fresh hire candidate. IDs are unique and never reused.
func (s *Spawner) Next() *Nano {
	id := s.nextID
	s.nextID++

	n := &Nano{
		ID:          id,
		Name:        fmt.Sprintf("%s%d", nameStems[s.rng.Intn(len(nameStems))], 100+s.rng.Intn(900)),
		Age:         18 + s.rng.Intn(23), // 18-40
		MaxLifespan: 60 + s.rng.Intn(31), // 60-90
		Speed:       float64(80 + s.rng.Intn(41)),
		Wage:        float64(8 + s.rng.Intn(8)),
		Happiness:   float64(80 + s.rng.Intn(21)),
		Health:      float64(90 + s.rng.Intn(11)),
		Intellect:   10,
		Force:       10,
		State:       Idle,
	}
	for i := range n.Skills {
		n.Skills[i] = 1
	}
	return n
}
