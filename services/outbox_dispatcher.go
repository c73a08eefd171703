package services

import (
	"context"
	"time"

	"hms-backend/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OutboxDispatcher drains pending outbox rows and delivers them to the
// broadcast and notification sinks. Rows are claimed FOR UPDATE SKIP
// LOCKED so several instances can run safely; a stale LockedAt older
// than LockTTL is treated as abandoned and reclaimed.
type OutboxDispatcher struct {
	DB          *gorm.DB
	Logger      *logrus.Logger
	Broadcast   BroadcastSink
	Notifier    NotificationSink
	BatchSize   int
	Interval    time.Duration
	LockTTL     time.Duration
	MaxAttempts int
}

func NewOutboxDispatcher(db *gorm.DB, logger *logrus.Logger, broadcast BroadcastSink, notifier NotificationSink) *OutboxDispatcher {
	return &OutboxDispatcher{
		DB:          db,
		Logger:      logger,
		Broadcast:   broadcast,
		Notifier:    notifier,
		BatchSize:   50,
		Interval:    2 * time.Second,
		LockTTL:     30 * time.Second,
		MaxAttempts: 5,
	}
}

// EnqueueOutboxEvent writes an intended side effect inside the caller's
// transaction, so it commits or rolls back with the state change itself.
func EnqueueOutboxEvent(tx *gorm.DB, resource, eventKind string, payload []byte) error {
	event := models.OutboxEvent{
		ID:        uuid.NewString(),
		Resource:  resource,
		EventKind: eventKind,
		Payload:   datatypes.JSON(payload),
		Status:    models.OutboxStatusPending,
	}
	return tx.Create(&event).Error
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.DB == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.processOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.Interval):
		}
	}
}

func (d *OutboxDispatcher) processOnce(ctx context.Context) {
	now := time.Now().UTC()
	staleBefore := now.Add(-d.LockTTL)

	var claimed []models.OutboxEvent
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.
			Where("status = ?", models.OutboxStatusPending).
			Where("(locked_at IS NULL OR locked_at <= ?)", staleBefore).
			Order("created_at ASC").
			Limit(d.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}
		ids := make([]string, 0, len(claimed))
		for _, ev := range claimed {
			ids = append(ids, ev.ID)
		}
		return tx.Model(&models.OutboxEvent{}).
			Where("id IN ?", ids).
			Update("locked_at", now).Error
	})
	if err != nil {
		d.Logger.WithError(err).Warn("outbox claim failed")
		return
	}

	for _, ev := range claimed {
		d.dispatchOne(ev)
	}
}

func (d *OutboxDispatcher) dispatchOne(ev models.OutboxEvent) {
	err := d.deliver(ev)
	if err == nil {
		if uerr := d.DB.Model(&models.OutboxEvent{}).
			Where("id = ?", ev.ID).
			Updates(map[string]interface{}{
				"status":    models.OutboxStatusDispatched,
				"locked_at": nil,
			}).Error; uerr != nil {
			d.Logger.WithError(uerr).WithField("event_id", ev.ID).Warn("outbox mark dispatched failed")
		}
		return
	}

	attempts := ev.Attempts + 1
	status := models.OutboxStatusPending
	if attempts >= d.MaxAttempts {
		status = models.OutboxStatusFailed
	}
	d.Logger.WithError(err).WithFields(logrus.Fields{
		"event_id": ev.ID,
		"resource": ev.Resource,
		"kind":     ev.EventKind,
		"attempts": attempts,
	}).Warn("outbox dispatch failed")

	if uerr := d.DB.Model(&models.OutboxEvent{}).
		Where("id = ?", ev.ID).
		Updates(map[string]interface{}{
			"status":     status,
			"attempts":   attempts,
			"last_error": err.Error(),
			"locked_at":  nil,
		}).Error; uerr != nil {
		d.Logger.WithError(uerr).WithField("event_id", ev.ID).Warn("outbox status update failed")
	}
}

// deliver routes an event: every event is broadcast; lifecycle events
// that guests should hear about also go to the notification sink.
func (d *OutboxDispatcher) deliver(ev models.OutboxEvent) error {
	if err := d.Broadcast.Broadcast(ev.Resource, ev.EventKind, ev.Payload); err != nil {
		return err
	}
	switch ev.EventKind {
	case models.EventCreated, models.EventCheckIn, models.EventCheckOut, models.EventMaintenance:
		if ev.Resource == "reservations" || ev.Resource == "rooms" {
			return d.Notifier.Send(ev.Resource+"."+ev.EventKind, ev.Payload)
		}
	}
	return nil
}
