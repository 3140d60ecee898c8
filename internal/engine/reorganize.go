package engine

import (
	"context"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/reorganize"
)

// BeginReorganize snapshots the exercise list into a scratch buffer.
// Starting again discards any unsaved buffer.
func (e *Engine) BeginReorganize(ctx context.Context) (reorganize.Layout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.sessions.Active()
	if s == nil {
		return reorganize.Layout{}, domain.ErrNoActiveSession
	}
	e.reorg = reorganize.Begin(s, e.newID)
	e.events.Publish(Event{Kind: EventReorganize})
	return e.reorg.Layout(), nil
}

// Reorganize applies one move to the scratch buffer. The live session is
// not touched.
func (e *Engine) Reorganize(ctx context.Context, mv reorganize.Move) (reorganize.Layout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.reorg == nil {
		return reorganize.Layout{}, domain.ErrNotReorganizing
	}
	if err := e.reorg.Apply(mv); err != nil {
		return reorganize.Layout{}, err
	}
	e.events.Publish(Event{Kind: EventReorganize})
	return e.reorg.Layout(), nil
}

// SaveReorganize merges the buffer's order and grouping onto the live
// session, keeping every set as it is now.
func (e *Engine) SaveReorganize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.reorg == nil {
		return domain.ErrNotReorganizing
	}
	buf := e.reorg
	err := e.sessions.Update(ctx, func(s *domain.WorkoutSession) error {
		buf.Commit(s)
		return nil
	})
	if err != nil {
		return err
	}
	e.reorg = nil
	e.log.Info("reorganize saved (%d moves)", buf.Moves())
	e.settle(ctx, EventSession)
	return nil
}

// CancelReorganize drops the buffer.
func (e *Engine) CancelReorganize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.reorg == nil {
		return domain.ErrNotReorganizing
	}
	e.reorg = nil
	e.events.Publish(Event{Kind: EventReorganize})
	return nil
}
