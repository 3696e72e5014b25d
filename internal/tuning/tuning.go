// Package tuning holds the immutable simulation configuration: every cost,
// capacity, and rate the kernel consumes. Defaults match the reference
// balance; a YAML file can override individual values for experiments.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is threaded into the Simulation at construction. It is never
// mutated after Load/Default returns.
type Config struct {
	Seed int64 `yaml:"seed"`

	Time      Time      `yaml:"time"`
	Energy    Energy    `yaml:"energy"`
	Buildings Buildings `yaml:"buildings"`
	Nano      Nano      `yaml:"nano"`
	Grid      Grid      `yaml:"grid"`
}

// Time configures the day/night band. The calendar carries (60 minutes,
// 24 hours, 30 days, 12 months) are structural, not tunable.
type Time struct {
	SunriseHour int `yaml:"sunrise_hour"`
	SunsetHour  int `yaml:"sunset_hour"`
}

// Energy configures the surge capacitor, cell bank, and credit economy.
type Energy struct {
	StartingCredits   float64 `yaml:"starting_credits"`
	StartingWorkPower float64 `yaml:"starting_work_power"`

	SellRate  float64 `yaml:"sell_rate"`
	SellFloor float64 `yaml:"sell_floor"`
	SellDecay float64 `yaml:"sell_decay"`

	// Surge capacitor admission ceiling when no cells exist.
	SurgeCeiling float64 `yaml:"surge_ceiling"`

	// Dissipation with zero cells: absolute EU/s below the ceiling,
	// fraction of current value per second at or above it.
	SlowBleedRate float64 `yaml:"slow_bleed_rate"`
	FastBleedFrac float64 `yaml:"fast_bleed_frac"`

	// Surge-to-cell transfer rate, EU per second.
	TransferRate float64 `yaml:"transfer_rate"`

	// Fraction of a cell's over-capacity excess bled per second.
	OverflowBleedFrac float64 `yaml:"overflow_bleed_frac"`

	CellCreditCost      float64 `yaml:"cell_credit_cost"`
	UpgradeCreditFactor float64 `yaml:"upgrade_credit_factor"`
	MaxCells            int     `yaml:"max_cells"`
	MaxCellLevel        int     `yaml:"max_cell_level"`

	WorkUpgradeEU      float64 `yaml:"work_upgrade_eu"`
	WorkUpgradeCredits float64 `yaml:"work_upgrade_credits"`
	WorkUpgradeStep    float64 `yaml:"work_upgrade_step"`

	MealCost float64 `yaml:"meal_cost"`
}

// BuildingSpec is the per-type worker capacity and dual cost.
type BuildingSpec struct {
	Capacity int     `yaml:"capacity"`
	CostEU   float64 `yaml:"cost_eu"`
	CostCr   float64 `yaml:"cost_credits"`
}

// Buildings maps building type names (bio, tent, study, music, camp) to
// their specs.
type Buildings map[string]BuildingSpec

// Nano configures the agent schedule, needs decay, and attribute rolls.
type Nano struct {
	MoveSpeed float64 `yaml:"move_speed"` // px/s at speed attribute 100

	WorkStartHour  int `yaml:"work_start_hour"`
	WorkEndHour    int `yaml:"work_end_hour"`
	SleepStartHour int `yaml:"sleep_start_hour"`
	SleepEndHour   int `yaml:"sleep_end_hour"`

	MealHours    []int `yaml:"meal_hours"`
	MealsPerDay  int   `yaml:"meals_per_day"`

	ProximityRadius float64 `yaml:"proximity_radius"` // px, Manhattan

	HireCostFactor float64 `yaml:"hire_cost_factor"`
	CandidatePool  int     `yaml:"candidate_pool"`

	HomelessHappinessLoss float64 `yaml:"homeless_happiness_loss"`
	HomelessHealthHours   int     `yaml:"homeless_health_hours"`
	HomelessHealthLoss    float64 `yaml:"homeless_health_loss"`
	StarveHours           int     `yaml:"starve_hours"`
	StarveHealthLoss      float64 `yaml:"starve_health_loss"`
	StarveHappinessLoss   float64 `yaml:"starve_happiness_loss"`
	MissedMealHealthLoss  float64 `yaml:"missed_meal_health_loss"`
	LowHealthThreshold    float64 `yaml:"low_health_threshold"`
	LowHealthHappyLoss    float64 `yaml:"low_health_happy_loss"`

	// Free-time need thresholds.
	HappyThreshold float64 `yaml:"happy_threshold"`
	SkillThreshold float64 `yaml:"skill_threshold"`
	ForceThreshold float64 `yaml:"force_threshold"`
	EngageChance   float64 `yaml:"engage_chance"`
	WanderChance   float64 `yaml:"wander_chance"`

	// Timed activity duration ranges, seconds.
	MusicMinSec float64 `yaml:"music_min_sec"`
	MusicMaxSec float64 `yaml:"music_max_sec"`
	StudyMinSec float64 `yaml:"study_min_sec"`
	StudyMaxSec float64 `yaml:"study_max_sec"`
	CampMinSec  float64 `yaml:"camp_min_sec"`
	CampMaxSec  float64 `yaml:"camp_max_sec"`
}

// Grid configures the play area.
type Grid struct {
	Cols     int     `yaml:"cols"`
	Rows     int     `yaml:"rows"`
	CellSize int     `yaml:"cell_size"` // px
	Blocked  float64 `yaml:"blocked"`   // target fraction of unwalkable cells
}

// Default returns the reference balance.
func Default() Config {
	return Config{
		Seed: 42,
		Time: Time{
			SunriseHour: 6,
			SunsetHour:  18,
		},
		Energy: Energy{
			StartingCredits:   1000,
			StartingWorkPower: 0.1,
			SellRate:          1000,
			SellFloor:         10,
			SellDecay:         0.9,
			SurgeCeiling:      1.5,
			SlowBleedRate:     0.001,
			FastBleedFrac:     0.005,
			TransferRate:      0.5,
			OverflowBleedFrac: 0.9,

			CellCreditCost:      100,
			UpgradeCreditFactor: 100,
			MaxCells:            100,
			MaxCellLevel:        100,

			WorkUpgradeEU:      1.0,
			WorkUpgradeCredits: 100,
			WorkUpgradeStep:    0.1,

			MealCost: 0.3,
		},
		Buildings: Buildings{
			"bio":   {Capacity: 1, CostEU: 10, CostCr: 1000},
			"tent":  {Capacity: 2, CostEU: 10, CostCr: 100},
			"study": {Capacity: 3, CostEU: 10, CostCr: 100},
			"music": {Capacity: 5, CostEU: 10, CostCr: 500},
			"camp":  {Capacity: 4, CostEU: 10, CostCr: 250},
		},
		Nano: Nano{
			MoveSpeed: 100,

			WorkStartHour:  8,
			WorkEndHour:    16,
			SleepStartHour: 22,
			SleepEndHour:   6,

			MealHours:   []int{8, 12, 18},
			MealsPerDay: 3,

			ProximityRadius: 20,

			HireCostFactor: 10,
			CandidatePool:  5,

			HomelessHappinessLoss: 10,
			HomelessHealthHours:   48,
			HomelessHealthLoss:    10,
			StarveHours:           24,
			StarveHealthLoss:      2,
			StarveHappinessLoss:   5,
			MissedMealHealthLoss:  5,
			LowHealthThreshold:    20,
			LowHealthHappyLoss:    1,

			HappyThreshold: 80,
			SkillThreshold: 5,
			ForceThreshold: 15,
			EngageChance:   0.7,
			WanderChance:   0.01,

			MusicMinSec: 30,
			MusicMaxSec: 120,
			StudyMinSec: 60,
			StudyMaxSec: 180,
			CampMinSec:  45,
			CampMaxSec:  150,
		},
		Grid: Grid{
			Cols:     19,
			Rows:     20,
			CellSize: 32,
			Blocked:  0.08,
		},
	}
}

// Load reads a YAML override file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("tuning %s: %w", path, err)
	}
	return cfg, nil
}
