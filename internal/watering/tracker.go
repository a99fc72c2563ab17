package watering

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AgboganEmmanuel/planty/internal/logger"
	"github.com/AgboganEmmanuel/planty/internal/metrics"
	"github.com/AgboganEmmanuel/planty/internal/models"
	"github.com/AgboganEmmanuel/planty/internal/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound is returned when the plant does not exist for the user
var ErrNotFound = errors.New("plant not found")

const defaultFrequencyDays = 7

// Tracker owns watering state: recording waterings and the due-date sweep
// that turns next_watering_date into notifications.
type Tracker struct {
	db        *gorm.DB
	notify    *notify.Service
	scheduler Scheduler

	// dedupWindow suppresses repeat due/overdue notifications for the same
	// plant inside the window; zero emits on every pass
	dedupWindow time.Duration
}

// NewTracker creates a watering tracker. scheduler may be nil to disable
// local reminders.
func NewTracker(db *gorm.DB, notifier *notify.Service, scheduler Scheduler, dedupWindow time.Duration) *Tracker {
	if scheduler == nil {
		scheduler = NopScheduler{}
	}
	return &Tracker{
		db:          db,
		notify:      notifier,
		scheduler:   scheduler,
		dedupWindow: dedupWindow,
	}
}

// RecordWatering marks the plant watered at the given instant, advances
// next_watering_date by the plant's frequency, emits a watering_completed
// notification and schedules a local reminder for the next due date.
func (t *Tracker) RecordWatering(ctx context.Context, userID, plantID string, now time.Time) (*models.Plant, error) {
	var plant models.Plant
	err := t.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", plantID, userID).
		First(&plant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to fetch plant: %w", err)
	}

	freq := plant.WateringFrequency
	if freq <= 0 {
		freq = defaultFrequencyDays
	}

	now = now.UTC()
	next := now.AddDate(0, 0, freq)
	plant.LastWatered = &now
	plant.NextWateringDate = &next

	err = t.db.WithContext(ctx).Model(&plant).Updates(map[string]interface{}{
		"last_watered":       now,
		"next_watering_date": next,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to record watering: %w", err)
	}

	metrics.Get().WateringsRecordedTotal.WithLabelValues("completed").Inc()

	if t.notify != nil {
		_, err := t.notify.Create(ctx, userID, models.NotificationWateringComplete, &plant.ID,
			fmt.Sprintf("You watered your %s", plant.PlantName))
		if err != nil {
			logger.Log.Warn("Failed to create watering_completed notification",
				logger.WithPlantID(plant.ID),
				zap.Error(err),
			)
		}
	}

	_, err = t.scheduler.ScheduleAt(
		"Time to Water Your Plant!",
		fmt.Sprintf("Don't forget to water your %s", plant.PlantName),
		next,
	)
	if err != nil {
		logger.Log.Warn("Failed to schedule watering reminder",
			logger.WithPlantID(plant.ID),
			zap.Error(err),
		)
	}

	return &plant, nil
}

// CheckStatus classifies one plant after a due-date sweep
type CheckStatus string

const (
	StatusOverdue      CheckStatus = "overdue"
	StatusDueToday     CheckStatus = "due_today"
	StatusNotDue       CheckStatus = "not_due"
	StatusUnscheduled  CheckStatus = "unscheduled"
	StatusDeduplicated CheckStatus = "deduplicated"
	StatusError        CheckStatus = "error"
)

// CheckOutcome reports what the sweep did for one plant. Notified lists
// every notification type created this pass; overdue and due-today are
// independent, so a plant whose due date passed earlier today carries both.
type CheckOutcome struct {
	PlantID   string                    `json:"plant_id"`
	PlantName string                    `json:"plant_name"`
	Status    CheckStatus               `json:"status"`
	Notified  []models.NotificationType `json:"notified,omitempty"`
	Error     string                    `json:"error,omitempty"`
}

// CheckWateringNotifications sweeps every plant the user owns and emits
// overdue or due-today notifications. Plants are checked concurrently; the
// returned outcomes cover every plant, failures included, so one broken row
// never hides the rest.
func (t *Tracker) CheckWateringNotifications(ctx context.Context, userID string, now time.Time) ([]CheckOutcome, error) {
	var plants []models.Plant
	err := t.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&plants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}

	now = now.UTC()
	outcomes := make([]CheckOutcome, len(plants))

	var wg sync.WaitGroup
	for i := range plants {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = t.checkPlant(ctx, &plants[i], now)
		}(i)
	}
	wg.Wait()

	for _, o := range outcomes {
		metrics.Get().WateringChecksTotal.WithLabelValues(string(o.Status)).Inc()
	}

	return outcomes, nil
}

func (t *Tracker) checkPlant(ctx context.Context, plant *models.Plant, now time.Time) CheckOutcome {
	outcome := CheckOutcome{PlantID: plant.ID, PlantName: plant.PlantName}

	if plant.NextWateringDate == nil {
		outcome.Status = StatusUnscheduled
		return outcome
	}

	next := plant.NextWateringDate.UTC()

	// Overdue and due-today are checked independently: a due date that
	// passed earlier today emits both notifications in the same pass.
	type dueNotification struct {
		typ     models.NotificationType
		message string
		status  CheckStatus
	}
	var due []dueNotification
	if next.Before(now) {
		due = append(due, dueNotification{
			typ:     models.NotificationWateringOverdue,
			message: fmt.Sprintf("Your %s is overdue for watering!", plant.PlantName),
			status:  StatusOverdue,
		})
	}
	if sameCalendarDay(next, now) {
		due = append(due, dueNotification{
			typ:     models.NotificationWateringDueToday,
			message: fmt.Sprintf("Your %s needs watering today", plant.PlantName),
			status:  StatusDueToday,
		})
	}
	if len(due) == 0 {
		outcome.Status = StatusNotDue
		return outcome
	}

	// Overdue dominates when both fire
	outcome.Status = due[0].status

	for _, d := range due {
		if t.dedupWindow > 0 {
			recent, err := t.notify.HasRecent(ctx, plant.UserID, d.typ, plant.ID, t.dedupWindow)
			if err != nil {
				outcome.Status = StatusError
				outcome.Error = err.Error()
				return outcome
			}
			if recent {
				continue
			}
		}

		if _, err := t.notify.Create(ctx, plant.UserID, d.typ, &plant.ID, d.message); err != nil {
			logger.Log.Error("Failed to create watering notification",
				logger.WithPlantID(plant.ID),
				zap.String("type", string(d.typ)),
				zap.Error(err),
			)
			outcome.Status = StatusError
			outcome.Error = err.Error()
			return outcome
		}
		outcome.Notified = append(outcome.Notified, d.typ)
	}

	if len(outcome.Notified) == 0 {
		outcome.Status = StatusDeduplicated
	}
	return outcome
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
