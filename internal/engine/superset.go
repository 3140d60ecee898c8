package engine

import (
	"context"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/superset"
)

// StartSuperset opens the guided player on a superset group. A rest timer
// pointing into the group is cancelled; the player drives it from now on.
func (e *Engine) StartSuperset(ctx context.Context, supersetID string) (superset.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s := e.sessions.Active(); s == nil {
		return superset.State{}, domain.ErrNoActiveSession
	}

	e.closePlayer()
	p, err := superset.Start(ctx, e.sessions, supersetID, e.clock, e.log.Named("superset"),
		superset.WithTransition(e.transition),
		superset.WithIDs(e.newID),
	)
	if err != nil {
		return superset.State{}, err
	}
	e.player = p

	s := e.sessions.Active()
	if info := e.rest.Info(); info != nil && p.Contains(s, info.ExerciseID) {
		e.rest.Cancel(ctx)
	}
	if e.guard != nil {
		e.guard.Start(ctx)
	}

	e.settle(ctx, EventSuperset)
	return p.State(s), nil
}

// SupersetCompleteSet records the current set of the player.
func (e *Engine) SupersetCompleteSet(ctx context.Context, weight float64, reps int) error {
	return e.playerCommand(ctx, func(p *superset.Player) error {
		return p.CompleteSet(ctx, weight, reps)
	})
}

// SupersetAdvance ends the transition early.
func (e *Engine) SupersetAdvance(ctx context.Context) error {
	return e.playerCommand(ctx, func(p *superset.Player) error {
		return p.Advance(ctx)
	})
}

// SupersetAddTime extends the transition rest.
func (e *Engine) SupersetAddTime(ctx context.Context, delta int) error {
	return e.playerCommand(ctx, func(p *superset.Player) error {
		return p.AddTime(delta)
	})
}

// SupersetOneMoreRound adds a round to a finished superset.
func (e *Engine) SupersetOneMoreRound(ctx context.Context) error {
	return e.playerCommand(ctx, func(p *superset.Player) error {
		return p.OneMoreRound(ctx)
	})
}

// CloseSuperset closes the player and releases the wake lock.
func (e *Engine) CloseSuperset(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.player == nil {
		return domain.ErrInvalidPhase
	}
	e.closePlayer()
	e.settle(ctx, EventSuperset)
	return nil
}

// SetVisible reports screen visibility so the wake lock can follow it.
func (e *Engine) SetVisible(ctx context.Context, visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.guard != nil {
		e.guard.SetVisible(ctx, visible)
	}
}

func (e *Engine) playerCommand(ctx context.Context, fn func(*superset.Player) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.player == nil {
		return domain.ErrInvalidPhase
	}
	if err := fn(e.player); err != nil {
		return err
	}
	e.settle(ctx, EventSuperset)
	return nil
}

func (e *Engine) closePlayer() {
	if e.player == nil {
		return
	}
	e.player.Close()
	e.player = nil
	if e.guard != nil {
		e.guard.Stop()
	}
}
