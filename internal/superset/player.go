package superset

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/ottolift/internal/clock"
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/idgen"
	"github.com/hammamikhairi/ottolift/internal/logger"
	"github.com/hammamikhairi/ottolift/internal/timer"
)

// Phase is the player's position within a round.
type Phase string

const (
	PhaseWork       Phase = "work"
	PhaseTransition Phase = "transition"
	PhaseFinished   Phase = "finished"
)

// DefaultTransition is the rest between two exercises of a superset.
const DefaultTransition = 10

// SessionWriter is the single mutation entry point of the active session.
type SessionWriter interface {
	Update(ctx context.Context, fn func(*domain.WorkoutSession) error) error
}

// Option configures a player.
type Option func(*Player)

// WithTransition sets the transition rest in seconds.
func WithTransition(seconds int) Option {
	return func(p *Player) {
		p.transition = seconds
	}
}

// WithIDs sets the generator for synthesized set IDs.
func WithIDs(f idgen.Func) Option {
	return func(p *Player) {
		p.newID = f
	}
}

// State is a read-only view of the player.
type State struct {
	SupersetID     string `json:"supersetId"`
	Name           string `json:"name"`
	Phase          Phase  `json:"phase"`
	Round          int    `json:"round"` // 0-based
	ExerciseIndex  int    `json:"exerciseIndex"`
	ExerciseID     string `json:"exerciseId"`
	NextExerciseID string `json:"nextExerciseId,omitempty"`
	TotalRounds    int    `json:"totalRounds"`
	DisplayRounds  int    `json:"displayRounds"`
	TimeLeftMs     int64  `json:"timeLeftMs"`
	Paused         bool   `json:"paused"`
}

// Player is the ephemeral state machine guiding one superset. Every
// command is a single Update of the session. The engine serializes calls.
type Player struct {
	sessions   SessionWriter
	clock      clock.Clock
	log        *logger.Logger
	newID      idgen.Func
	transition int

	supersetID string
	configured int
	round      int
	index      int
	phase      Phase
	cd         timer.Countdown
	closed     bool
}

// Start opens a player on the given group, positioned at the first
// incomplete set (round by round, exercise by exercise). A group with
// nothing left to do opens in the finished phase.
func Start(ctx context.Context, sessions SessionWriter, supersetID string, clk clock.Clock, log *logger.Logger, opts ...Option) (*Player, error) {
	p := &Player{
		sessions:   sessions,
		clock:      clk,
		log:        log,
		newID:      idgen.New,
		transition: DefaultTransition,
		supersetID: supersetID,
	}
	for _, opt := range opts {
		opt(p)
	}

	err := sessions.Update(ctx, func(s *domain.WorkoutSession) error {
		members := Members(s, supersetID)
		if len(members) == 0 {
			return fmt.Errorf("superset %s: %w", supersetID, domain.ErrEmptySuperset)
		}
		p.configured = TotalRounds(s, supersetID)
		p.round, p.index, p.phase = firstIncomplete(s, members, p.configured)
		if p.phase == PhaseWork {
			EnsureSlots(s, members[p.index:p.index+1], p.round, p.newID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("superset %s: %s at round %d, exercise %d", supersetID, p.phase, p.round+1, p.index+1)
	return p, nil
}

func firstIncomplete(s *domain.WorkoutSession, members []string, total int) (round, index int, phase Phase) {
	for r := 0; r < total; r++ {
		for i, id := range members {
			_, ex := s.FindExercise(id)
			if r >= len(ex.Sets) || !ex.Sets[r].IsComplete {
				return r, i, PhaseWork
			}
		}
	}
	return max(total-1, 0), len(members) - 1, PhaseFinished
}

// SupersetID returns the group being played.
func (p *Player) SupersetID() string { return p.supersetID }

// Phase returns the current phase.
func (p *Player) Phase() Phase { return p.phase }

// Closed reports whether the player has been closed, either by the user
// or because its group disappeared.
func (p *Player) Closed() bool { return p.closed }

// Running reports whether the transition countdown is live.
func (p *Player) Running() bool {
	return !p.closed && p.phase == PhaseTransition && !p.cd.IsPaused
}

// CompleteSet records the current set with the given values and moves to
// the transition. The last set of the last round finishes the player.
func (p *Player) CompleteSet(ctx context.Context, weight float64, reps int) error {
	if p.closed {
		return domain.ErrInvalidPhase
	}
	if p.phase != PhaseWork {
		return fmt.Errorf("complete set in %s: %w", p.phase, domain.ErrInvalidPhase)
	}
	if reps < 0 || weight < 0 {
		return fmt.Errorf("weight %.1f reps %d: %w", weight, reps, domain.ErrInvalidInput)
	}

	now := clock.Millis(p.clock)
	return p.update(ctx, func(s *domain.WorkoutSession, members []string) {
		id := members[p.index]
		EnsureSlots(s, []string{id}, p.round, p.newID)

		_, ex := s.FindExercise(id)
		set := &ex.Sets[p.round]
		set.Weight = weight
		set.Reps = reps
		set.IsComplete = true
		set.CompletedAt = now
		set.ClearInherited()

		lastExercise := p.index == len(members)-1
		lastRound := p.round >= TotalRounds(s, p.supersetID)-1
		if lastExercise && lastRound {
			p.phase = PhaseFinished
			p.log.Info("superset %s finished after round %d", p.supersetID, p.round+1)
			return
		}
		p.phase = PhaseTransition
		p.cd = timer.NewCountdown(now, p.transition)
	})
}

// Advance ends the transition and moves to the next exercise, wrapping to
// the next round after the last one. The slot for the new position is
// created in the same write.
func (p *Player) Advance(ctx context.Context) error {
	if p.closed {
		return domain.ErrInvalidPhase
	}
	if p.phase != PhaseTransition {
		return fmt.Errorf("advance in %s: %w", p.phase, domain.ErrInvalidPhase)
	}
	return p.update(ctx, func(s *domain.WorkoutSession, members []string) {
		p.index++
		if p.index >= len(members) {
			p.index = 0
			p.round++
		}
		EnsureSlots(s, members[p.index:p.index+1], p.round, p.newID)
		p.phase = PhaseWork
	})
}

// OneMoreRound extends a finished superset by one round, creating a slot
// on every exercise of the group in a single write.
func (p *Player) OneMoreRound(ctx context.Context) error {
	if p.closed {
		return domain.ErrInvalidPhase
	}
	if p.phase != PhaseFinished {
		return fmt.Errorf("one more round in %s: %w", p.phase, domain.ErrInvalidPhase)
	}
	return p.update(ctx, func(s *domain.WorkoutSession, members []string) {
		next := TotalRounds(s, p.supersetID)
		if next <= p.round {
			next = p.round + 1
		}
		EnsureSlots(s, members, next, p.newID)
		p.round = next
		p.index = 0
		p.phase = PhaseWork
		p.log.Info("superset %s: one more round (%d)", p.supersetID, p.round+1)
	})
}

// AddTime extends the transition rest.
func (p *Player) AddTime(delta int) error {
	if p.closed || p.phase != PhaseTransition {
		return domain.ErrInvalidPhase
	}
	p.cd.AddTime(clock.Millis(p.clock), delta)
	return nil
}

// Tick advances out of an expired transition. It reports whether the
// player moved.
func (p *Player) Tick(ctx context.Context) bool {
	if !p.Running() || !p.cd.Expired(clock.Millis(p.clock)) {
		return false
	}
	if err := p.Advance(ctx); err != nil {
		p.log.Debug("superset %s: auto-advance: %v", p.supersetID, err)
		return false
	}
	return true
}

// Close stops the player. Recorded sets stay as they are.
func (p *Player) Close() {
	p.closed = true
}

// Reconcile closes the player if its group no longer exists in s, and
// keeps the position inside the group if it shrank.
func (p *Player) Reconcile(s *domain.WorkoutSession) {
	if p.closed {
		return
	}
	n := 0
	if s != nil {
		n = len(s.SupersetMembers(p.supersetID))
	}
	if n == 0 {
		p.log.Debug("superset %s is gone, closing player", p.supersetID)
		p.closed = true
		return
	}
	if p.index >= n {
		p.index = n - 1
	}
}

// Contains reports whether the exercise belongs to the group in s.
func (p *Player) Contains(s *domain.WorkoutSession, exerciseID string) bool {
	if p.closed || s == nil {
		return false
	}
	_, ex := s.FindExercise(exerciseID)
	return ex != nil && ex.SupersetID == p.supersetID
}

// State returns a view of the player against the current session.
func (p *Player) State(s *domain.WorkoutSession) State {
	st := State{
		SupersetID:    p.supersetID,
		Phase:         p.phase,
		Round:         p.round,
		ExerciseIndex: p.index,
	}
	if s != nil {
		st.Name = s.Supersets[p.supersetID].Name
		members := Members(s, p.supersetID)
		if p.index < len(members) {
			st.ExerciseID = members[p.index]
		}
		if p.phase == PhaseTransition && len(members) > 0 {
			st.NextExerciseID = members[(p.index+1)%len(members)]
		}
		st.TotalRounds = TotalRounds(s, p.supersetID)
	}
	st.DisplayRounds = DisplayRounds(p.configured, p.round)
	if p.phase == PhaseTransition {
		st.TimeLeftMs = p.cd.Remaining(clock.Millis(p.clock))
		st.Paused = p.cd.IsPaused
	}
	return st
}

// update runs fn against the live group in one session write. A group
// that has vanished closes the player silently.
func (p *Player) update(ctx context.Context, fn func(s *domain.WorkoutSession, members []string)) error {
	return p.sessions.Update(ctx, func(s *domain.WorkoutSession) error {
		members := Members(s, p.supersetID)
		if len(members) == 0 {
			p.log.Debug("superset %s is gone, closing player", p.supersetID)
			p.closed = true
			return nil
		}
		if p.index >= len(members) {
			p.index = len(members) - 1
		}
		fn(s, members)
		return nil
	})
}
