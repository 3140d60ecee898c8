package timer

import (
	"context"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/storage"
)

// TimerStore persists the single active rest timer so it survives a
// restart. Reads go straight to the document store; writes are queued.
type TimerStore struct {
	docs  domain.DocumentStore
	queue *storage.WriteQueue
}

// NewTimerStore creates a timer store. A nil queue writes through.
func NewTimerStore(docs domain.DocumentStore, queue *storage.WriteQueue) *TimerStore {
	return &TimerStore{docs: docs, queue: queue}
}

// Load returns the persisted timer, or nil when none is stored.
func (s *TimerStore) Load(ctx context.Context) (*domain.ActiveTimerInfo, error) {
	var info domain.ActiveTimerInfo
	ok, err := storage.LoadJSON(ctx, s.docs, storage.KeyRestTimer, &info)
	if err != nil || !ok {
		return nil, err
	}
	return &info, nil
}

// Save persists info; nil clears the stored timer.
func (s *TimerStore) Save(ctx context.Context, info *domain.ActiveTimerInfo) error {
	if info == nil {
		if s.queue != nil {
			s.queue.Delete(storage.KeyRestTimer)
			return nil
		}
		return s.docs.Delete(ctx, storage.KeyRestTimer)
	}
	if s.queue != nil {
		return storage.QueueJSON(s.queue, storage.KeyRestTimer, info)
	}
	return storage.SaveJSON(ctx, s.docs, storage.KeyRestTimer, info)
}

func toInfo(exerciseID, setID string, c Countdown) *domain.ActiveTimerInfo {
	return &domain.ActiveTimerInfo{
		ExerciseID:         exerciseID,
		SetID:              setID,
		TargetTime:         c.TargetTime,
		TotalDuration:      c.TotalDuration,
		InitialDuration:    c.InitialDuration,
		IsPaused:           c.IsPaused,
		TimeLeftWhenPaused: c.TimeLeftWhenPaused,
		RunStart:           c.RunStart,
		ElapsedMs:          c.ElapsedMs,
	}
}

// fromInfo rebuilds a countdown. Records written without elapsed
// tracking get it derived from the target and total.
func fromInfo(info *domain.ActiveTimerInfo) Countdown {
	c := Countdown{
		TargetTime:         info.TargetTime,
		TotalDuration:      info.TotalDuration,
		InitialDuration:    info.InitialDuration,
		IsPaused:           info.IsPaused,
		TimeLeftWhenPaused: info.TimeLeftWhenPaused,
		RunStart:           info.RunStart,
		ElapsedMs:          info.ElapsedMs,
	}
	if c.RunStart == 0 && c.ElapsedMs == 0 {
		total := int64(c.TotalDuration) * 1000
		if c.IsPaused {
			c.ElapsedMs = total - c.TimeLeftWhenPaused
		} else {
			c.RunStart = c.TargetTime - total
		}
	}
	return c
}
