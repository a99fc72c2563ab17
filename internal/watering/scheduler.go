package watering

import (
	"sync"
	"time"

	"github.com/AgboganEmmanuel/planty/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scheduler schedules a one-shot local reminder for a future instant.
// ScheduleAt returns an opaque id usable with Cancel; scheduling a time in
// the past fires immediately.
type Scheduler interface {
	ScheduleAt(title, body string, at time.Time) (string, error)
	Cancel(id string) error
}

// TimerScheduler runs reminders on in-process timers. Reminders do not
// survive a restart; persistent delivery comes from the notification rows
// produced by the due-date check.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	fire   func(title, body string)
}

// NewTimerScheduler creates a scheduler that invokes fire when a reminder
// elapses. A nil fire logs the reminder instead.
func NewTimerScheduler(fire func(title, body string)) *TimerScheduler {
	if fire == nil {
		fire = func(title, body string) {
			logger.Log.Info("Reminder fired",
				zap.String("title", title),
				zap.String("body", body),
			)
		}
	}
	return &TimerScheduler{
		timers: make(map[string]*time.Timer),
		fire:   fire,
	}
}

// ScheduleAt arms a timer for the given instant
func (s *TimerScheduler) ScheduleAt(title, body string, at time.Time) (string, error) {
	id := uuid.New().String()
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		s.fire(title, body)
	})
	s.mu.Unlock()

	logger.Log.Debug("Reminder scheduled",
		zap.String("reminder_id", id),
		zap.Time("at", at),
	)
	return id, nil
}

// Cancel stops a pending reminder. Cancelling an unknown or already-fired
// id is a no-op.
func (s *TimerScheduler) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	return nil
}

// Stop cancels every pending reminder
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// NopScheduler discards reminders; used when local reminders are disabled
type NopScheduler struct{}

func (NopScheduler) ScheduleAt(title, body string, at time.Time) (string, error) {
	return uuid.New().String(), nil
}

func (NopScheduler) Cancel(id string) error { return nil }
