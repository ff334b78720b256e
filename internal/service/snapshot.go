package service

import (
	"sync"
	"sync/atomic"
	"time"

	"doctor-duty-notifier/internal/domain/entity"
)

// ScheduleSnapshot is an immutable view of the last extracted schedule.
// Callers must not modify Records.
type ScheduleSnapshot struct {
	Version uint64
	Records []entity.DutyRecord
	TakenAt time.Time
}

// SnapshotStore owns the current schedule snapshot. Readers get a stable
// pointer; Replace swaps in a new version atomically.
type SnapshotStore struct {
	mu      sync.Mutex // serializes Replace
	current atomic.Pointer[ScheduleSnapshot]
}

func NewSnapshotStore() *SnapshotStore {
	s := &SnapshotStore{}
	s.current.Store(&ScheduleSnapshot{})
	return s
}

// Current returns the latest snapshot. Version 0 means nothing was loaded yet.
func (s *SnapshotStore) Current() *ScheduleSnapshot {
	return s.current.Load()
}

// Replace publishes records as the new snapshot and returns it.
func (s *SnapshotStore) Replace(records []entity.DutyRecord, takenAt time.Time) *ScheduleSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := make([]entity.DutyRecord, len(records))
	copy(owned, records)

	next := &ScheduleSnapshot{
		Version: s.current.Load().Version + 1,
		Records: owned,
		TakenAt: takenAt,
	}
	s.current.Store(next)
	return next
}
