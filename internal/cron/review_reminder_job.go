package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	"github.com/schoolbridge/schoolbridge-backend/pkg/logger"
)

const (
	reviewReminderAfterDays   = 14
	reviewReminderCadenceDays = 7
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stalledApplicationReader interface {
	ListByStatusBefore(ctx context.Context, statuses []enums.SupplierStatus, cutoff time.Time) ([]models.SupplierApplication, error)
}

type reminderNotificationRepo interface {
	Create(ctx context.Context, notification *models.Notification) error
	ExistsSince(ctx context.Context, userID uuid.UUID, notificationType enums.NotificationType, title string, since time.Time) (bool, error)
}

// ReviewReminderJobParams configures the stalled-application reminder.
type ReviewReminderJobParams struct {
	Logger        *logger.Logger
	Applications  stalledApplicationReader
	Notifications reminderNotificationRepo
	RemindAfter   int
	Cadence       int
}

// NewReviewReminderJob builds the job that nudges suppliers whose
// applications have sat in pending or waiting past the reminder window.
func NewReviewReminderJob(params ReviewReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Applications == nil {
		return nil, fmt.Errorf("application reader required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	remindAfter := params.RemindAfter
	if remindAfter <= 0 {
		remindAfter = reviewReminderAfterDays
	}
	cadence := params.Cadence
	if cadence <= 0 {
		cadence = reviewReminderCadenceDays
	}
	return &reviewReminderJob{
		logg:          params.Logger,
		applications:  params.Applications,
		notifications: params.Notifications,
		remindAfter:   remindAfter,
		cadence:       cadence,
		now:           time.Now,
	}, nil
}

type reviewReminderJob struct {
	logg          *logger.Logger
	applications  stalledApplicationReader
	notifications reminderNotificationRepo
	remindAfter   int
	cadence       int
	now           func() time.Time
}

func (j *reviewReminderJob) Name() string { return "review-reminder" }

const reviewReminderTitle = "Application still in review"

func (j *reviewReminderJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-time.Duration(j.remindAfter) * 24 * time.Hour)
	cadenceCutoff := now.Add(-time.Duration(j.cadence) * 24 * time.Hour)

	stalled, err := j.applications.ListByStatusBefore(ctx,
		[]enums.SupplierStatus{enums.SupplierStatusPending, enums.SupplierStatusWaiting}, cutoff)
	if err != nil {
		return fmt.Errorf("list stalled applications: %w", err)
	}

	var reminded int
	var errs error
	for i := range stalled {
		app := stalled[i]
		sent, err := j.remind(ctx, &app, cadenceCutoff)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("application %s: %w", app.ID, err))
			continue
		}
		if sent {
			reminded++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"stalled":  len(stalled),
		"reminded": reminded,
		"cutoff":   cutoff,
	})
	j.logg.Info(logCtx, "review reminder cycle complete")
	return errs
}

func (j *reviewReminderJob) remind(ctx context.Context, app *models.SupplierApplication, cadenceCutoff time.Time) (bool, error) {
	already, err := j.notifications.ExistsSince(ctx, app.OwnerID, enums.NotificationTypeApplicationUpdate, reviewReminderTitle, cadenceCutoff)
	if err != nil {
		return false, err
	}
	if already {
		return false, nil
	}

	message := fmt.Sprintf("Your supplier application for %s is still in review. We will notify you as soon as a decision is made.", app.CompanyName)
	if app.Status == enums.SupplierStatusWaiting {
		message = fmt.Sprintf("Your supplier application for %s is on the waiting list. We will notify you when a spot opens up.", app.CompanyName)
	}
	link := "/supplier/application"
	notification := &models.Notification{
		UserID:  app.OwnerID,
		Type:    enums.NotificationTypeApplicationUpdate,
		Title:   reviewReminderTitle,
		Message: message,
		Link:    &link,
	}
	if err := j.notifications.Create(ctx, notification); err != nil {
		return false, err
	}
	return true, nil
}
