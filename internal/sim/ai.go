// Schedule-driven nano behavior: the hour band picks the goal (work,
// sleep, free time), proximity checks handle building entry and exit.
package sim

import (
	"github.com/talgya/nanoverse/internal/building"
	"github.com/talgya/nanoverse/internal/nano"
)

// stepNano runs one frame of behavior for a nano. Position has already
// been advanced this tick.
func (s *Simulation) stepNano(n *nano.Nano, dt float64) {
	n.ActivityTimer += dt
	s.checkBuildingInteraction(n)

	h := s.Clock.Hour
	nc := s.cfg.Nano
	switch {
	case h >= nc.WorkStartHour && h < nc.WorkEndHour:
		s.workTime(n)
	case h >= nc.SleepStartHour || h < nc.SleepEndHour:
		s.sleepTime(n)
	default:
		s.freeTime(n)
	}
}

// workTime sends the nano to its BIO reactor, claiming the first one with
// spare capacity if it has none.
func (s *Simulation) workTime(n *nano.Nano) {
	if n.WorkBuilding == 0 {
		if id, ok := s.Buildings.FindAvailable(building.Bio); ok {
			n.WorkBuilding = id
		}
	}
	if n.WorkBuilding == 0 {
		n.State = nano.Idle
		return
	}
	b := s.Buildings.Get(n.WorkBuilding)
	if b == nil {
		n.WorkBuilding = 0
		return
	}
	if !n.Inside && !n.Moving {
		x, y := s.Grid.Center(b.X, b.Y)
		n.MoveTo(x, y)
		n.State = nano.Working
	}
}

// sleepTime sends the nano home, claiming a tent if it has none. Homeless
// nanos stay idle and wander.
func (s *Simulation) sleepTime(n *nano.Nano) {
	if n.HomeBuilding == 0 {
		if id, ok := s.Buildings.FindAvailable(building.Tent); ok {
			n.HomeBuilding = id
		}
	}
	if n.HomeBuilding == 0 {
		n.State = nano.Idle
		if !n.Moving && s.rng.Float64() < s.cfg.Nano.WanderChance {
			s.wander(n)
		}
		return
	}
	b := s.Buildings.Get(n.HomeBuilding)
	if b == nil {
		n.HomeBuilding = 0
		return
	}
	if !n.Inside && !n.Moving {
		x, y := s.Grid.Center(b.X, b.Y)
		n.MoveTo(x, y)
		n.State = nano.Sleeping
	}
}

// freeTime runs between work and sleep: nanos with unmet needs seek the
// matching amenity, the rest idle and wander.
func (s *Simulation) freeTime(n *nano.Nano) {
	// Leaving the reactor after shift end is handled by the exit check;
	// a nano still inside an amenity rides out its activity timer there.
	if n.Inside {
		return
	}
	if n.Moving {
		return
	}
	// Stationary outside covers both "needs a plan" and "arrived but was
	// refused at the door": either way, pick again.
	s.chooseFreeTimeActivity(n)
}

// activityOption is one candidate free-time destination, weighted by how
// far the need is below its threshold.
type activityOption struct {
	buildingID int
	state      nano.State
	minSec     float64
	maxSec     float64
	weight     float64
}

// chooseFreeTimeActivity picks a need-weighted amenity, or wanders.
func (s *Simulation) chooseFreeTimeActivity(n *nano.Nano) {
	nc := s.cfg.Nano
	var opts []activityOption

	if n.Happiness < nc.HappyThreshold {
		if id, ok := s.Buildings.FindAvailable(building.Music); ok {
			opts = append(opts, activityOption{
				buildingID: id,
				state:      nano.HappyTime,
				minSec:     nc.MusicMinSec,
				maxSec:     nc.MusicMaxSec,
				weight:     (nc.HappyThreshold - n.Happiness) / nc.HappyThreshold,
			})
		}
	}
	if n.Skills[nano.SkillWorker] < nc.SkillThreshold {
		if id, ok := s.Buildings.FindAvailable(building.Study); ok {
			opts = append(opts, activityOption{
				buildingID: id,
				state:      nano.Learning,
				minSec:     nc.StudyMinSec,
				maxSec:     nc.StudyMaxSec,
				weight:     (nc.SkillThreshold - n.Skills[nano.SkillWorker]) / nc.SkillThreshold,
			})
		}
	}
	if n.Force < nc.ForceThreshold {
		if id, ok := s.Buildings.FindAvailable(building.Camp); ok {
			opts = append(opts, activityOption{
				buildingID: id,
				state:      nano.Training,
				minSec:     nc.CampMinSec,
				maxSec:     nc.CampMaxSec,
				weight:     (nc.ForceThreshold - n.Force) / nc.ForceThreshold,
			})
		}
	}

	if len(opts) > 0 && s.rng.Float64() < nc.EngageChance {
		opt := s.pickWeighted(opts)
		if b := s.Buildings.Get(opt.buildingID); b != nil {
			x, y := s.Grid.Center(b.X, b.Y)
			n.MoveTo(x, y)
			n.State = opt.state
			n.ActivityDuration = opt.minSec + s.rng.Float64()*(opt.maxSec-opt.minSec)
			n.ActivityTimer = 0
			return
		}
	}

	n.State = nano.Idle
	s.wander(n)
}

func (s *Simulation) pickWeighted(opts []activityOption) activityOption {
	total := 0.0
	for _, o := range opts {
		total += o.weight
	}
	r := s.rng.Float64() * total
	for _, o := range opts {
		r -= o.weight
		if r <= 0 {
			return o
		}
	}
	return opts[len(opts)-1]
}

// wander sends the nano to a random open grid cell.
func (s *Simulation) wander(n *nano.Nano) {
	x, y := s.Grid.RandomWalkable(s.rng)
	px, py := s.Grid.Center(x, y)
	n.MoveTo(px, py)
}

// checkBuildingInteraction handles entry (within the proximity radius, in
// the matching state, admitted under capacity) and exit (timer elapsed for
// amenities with their one-time payoff, schedule band left for work and
// sleep).
func (s *Simulation) checkBuildingInteraction(n *nano.Nano) {
	if n.Moving {
		return
	}
	nc := s.cfg.Nano

	if !n.Inside {
		for _, b := range s.Buildings.All() {
			cx, cy := s.Grid.Center(b.X, b.Y)
			if manhattan(n.X, n.Y, cx, cy) >= nc.ProximityRadius {
				continue
			}
			var enter bool
			switch b.Type {
			case building.Bio:
				enter = n.State == nano.Working && n.WorkBuilding == b.ID
			case building.Tent:
				enter = n.State == nano.Sleeping && n.HomeBuilding == b.ID
			case building.Music:
				enter = n.State == nano.HappyTime
			case building.Study:
				enter = n.State == nano.Learning
			case building.Camp:
				enter = n.State == nano.Training
			}
			if enter && s.Buildings.Admit(n.ID, b.ID) {
				n.CurrentBuilding = b.ID
				n.Inside = true
				n.ActivityTimer = 0
				break
			}
		}
		return
	}

	b := s.Buildings.Get(n.CurrentBuilding)
	if b == nil {
		n.Inside = false
		n.CurrentBuilding = 0
		return
	}

	h := s.Clock.Hour
	done := n.ActivityTimer >= n.ActivityDuration
	switch b.Type {
	case building.Music:
		if done {
			n.FinishMusic(s.mods.Happiness)
			s.exitBuilding(n)
		}
	case building.Study:
		if done {
			n.FinishStudy()
			s.exitBuilding(n)
		}
	case building.Camp:
		if done {
			n.FinishTraining()
			s.exitBuilding(n)
		}
	case building.Tent:
		if h >= nc.SleepEndHour && h < nc.SleepStartHour {
			s.exitBuilding(n)
		}
	case building.Bio:
		if h < nc.WorkStartHour || h >= nc.WorkEndHour {
			s.exitBuilding(n)
		}
	}
}

// exitBuilding evicts the nano and returns it to idle.
func (s *Simulation) exitBuilding(n *nano.Nano) {
	s.Buildings.Evict(n.ID, n.CurrentBuilding)
	n.CurrentBuilding = 0
	n.Inside = false
	n.State = nano.Idle
}

func manhattan(ax, ay, bx, by float64) float64 {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dy := ay - by
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
