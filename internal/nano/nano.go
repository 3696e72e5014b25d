// Package nano provides the agent data model: attributes, needs counters,
// the activity state set, and straight-line movement. The schedule-driven
// behavior that reads buildings and time lives in the sim package.
package nano

import "github.com/talgya/nanoverse/internal/tuning"

// State is the closed set of activities.
type State uint8

const (
	Idle State = iota
	Working
	Sleeping
	Learning
	Training
	HappyTime
)

var stateNames = [...]string{"idle", "working", "sleeping", "learning", "training", "happy_time"}

// String returns the lowercase state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Skill indexes the three skill tracks.
type Skill uint8

const (
	SkillWorker Skill = iota
	SkillBrainer
	SkillFixer
	numSkills
)

// Attribute bounds.
const (
	MaxSkill     = 10.0
	MaxHappiness = 100.0
	MaxHealth    = 100.0
	MaxIntellect = 20.0
	MinSpeed     = 50.0
	MinOldHealth = 50.0 // aging alone never drops health below this
)

// Nano is an autonomous worker. All building references are IDs; zero means
// none. A nano is inside a building iff Inside is set and CurrentBuilding
// names a building whose occupant list contains it.
type Nano struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	Age         int `json:"age"`
	MaxLifespan int `json:"max_lifespan"`

	Skills [3]float64 `json:"skills"` // worker, brainer, fixer; 0-10

	Speed     float64 `json:"speed"` // percent of base move speed
	Wage      float64 `json:"wage"`
	Happiness float64 `json:"happiness"` // 0-100
	Health    float64 `json:"health"`    // 0-100
	Intellect float64 `json:"intellect"`
	Force     float64 `json:"force"`

	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	TargetX float64 `json:"target_x"`
	TargetY float64 `json:"target_y"`
	Moving  bool    `json:"moving"`

	State State `json:"state"`

	WorkBuilding    int  `json:"work_building"`
	HomeBuilding    int  `json:"home_building"`
	CurrentBuilding int  `json:"current_building"`
	Inside          bool `json:"inside"`

	MealsToday       int `json:"meals_today"`
	HoursWithoutFood int `json:"hours_without_food"`
	HoursHomeless    int `json:"hours_homeless"`

	ActivityTimer    float64 `json:"activity_timer"`
	ActivityDuration float64 `json:"activity_duration"`
}

// HireCost is the one-time credit cost to promote a candidate.
func (n *Nano) HireCost(factor float64) float64 { return n.Wage * factor }

// Homeless reports whether the nano has no home assignment.
func (n *Nano) Homeless() bool { return n.HomeBuilding == 0 }

// Dead reports the terminal condition: lifespan reached or health gone.
func (n *Nano) Dead() bool {
	return n.Age >= n.MaxLifespan || n.Health <= 0
}

// MoveTo sets a movement target in pixels.
func (n *Nano) MoveTo(x, y float64) {
	n.TargetX = x
	n.TargetY = y
	n.Moving = true
}

// UpdatePosition advances toward the target in straight horizontal-then-
// vertical segments, scaled by the nano's speed attribute. Arrival snaps to
// the target exactly and clears the moving flag.
func (n *Nano) UpdatePosition(dt, baseSpeed float64) {
	if !n.Moving {
		return
	}
	dx := n.TargetX - n.X
	dy := n.TargetY - n.Y
	if abs(dx)+abs(dy) < 2.0 {
		n.X = n.TargetX
		n.Y = n.TargetY
		n.Moving = false
		return
	}

	step := (n.Speed / 100.0) * baseSpeed * dt
	switch {
	case abs(dx) > 1.0:
		if dx > 0 {
			n.X += step
		} else {
			n.X -= step
		}
	case abs(dy) > 1.0:
		if dy > 0 {
			n.Y += step
		} else {
			n.Y -= step
		}
	}
}

// GainHappiness raises happiness, clamped to the cap.
func (n *Nano) GainHappiness(amount float64) {
	n.Happiness = min(MaxHappiness, n.Happiness+amount)
}

// LoseHappiness lowers happiness, floored at zero.
func (n *Nano) LoseHappiness(amount float64) {
	n.Happiness = max(0, n.Happiness-amount)
}

// MealEaten resets the hunger clock after a successful meal.
func (n *Nano) MealEaten() {
	n.MealsToday++
	n.HoursWithoutFood = 0
}

// MealMissed applies the immediate penalty for a failed meal attempt.
func (n *Nano) MealMissed(cfg tuning.Nano) {
	n.Health -= cfg.MissedMealHealthLoss
}

// ApplyHourlyNeeds runs the needs-decay hook at each hour rollover: daily
// counter reset and homeless bookkeeping at hour 0, then the hunger clock
// and the recurring starvation and low-health penalties.
func (n *Nano) ApplyHourlyNeeds(hour int, cfg tuning.Nano) {
	if hour == 0 {
		n.MealsToday = 0
		if n.Homeless() {
			n.LoseHappiness(cfg.HomelessHappinessLoss)
			n.HoursHomeless += 24
			if n.HoursHomeless >= cfg.HomelessHealthHours {
				n.Health -= cfg.HomelessHealthLoss
			}
		} else {
			n.HoursHomeless = 0
		}
	}

	n.HoursWithoutFood++
	if n.HoursWithoutFood >= cfg.StarveHours {
		n.Health -= cfg.StarveHealthLoss
		n.LoseHappiness(cfg.StarveHappinessLoss)
	}
	if n.Health < cfg.LowHealthThreshold {
		n.LoseHappiness(cfg.LowHealthHappyLoss)
	}
}

// FinishMusic applies the happy-time payoff once, scaled by the weather
// happiness modifier.
func (n *Nano) FinishMusic(mod float64) {
	n.GainHappiness(2.0 * mod)
}

// FinishStudy applies the learning payoff once: worker skill and intellect.
func (n *Nano) FinishStudy() {
	n.Skills[SkillWorker] = min(MaxSkill, n.Skills[SkillWorker]+0.1)
	n.Intellect = min(MaxIntellect, n.Intellect+0.05)
}

// FinishTraining applies the training payoff once: force and health.
func (n *Nano) FinishTraining() {
	n.Force += 0.1
	n.Health = min(MaxHealth, n.Health+0.5)
}

// AgeOneYear applies the yearly aging curve: past 50 nanos slow down and
// grow wiser; past 65 health declines.
func (n *Nano) AgeOneYear() {
	n.Age++
	if n.Age > 50 {
		n.Speed = max(MinSpeed, n.Speed-2)
		n.Intellect = min(MaxIntellect, n.Intellect+0.5)
	}
	if n.Age > 65 {
		n.Health = max(MinOldHealth, n.Health-3)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
