package services

import (
	"github.com/sirupsen/logrus"
)

// BroadcastSink receives resource change events for fan-out to connected
// clients. The real websocket transport lives outside this service; the
// contract is fire-and-forget.
type BroadcastSink interface {
	Broadcast(resource, eventKind string, payload []byte) error
}

// NotificationSink delivers guest-facing notifications (reservation
// created, check-in, check-out, room maintenance). Failures are logged
// by the dispatcher and retried; they never surface to a request.
type NotificationSink interface {
	Send(kind string, payload []byte) error
}

// LogBroadcastSink is the default transport: it only logs. Deployments
// wire a real transport in main.
type LogBroadcastSink struct {
	Logger *logrus.Logger
}

func (s *LogBroadcastSink) Broadcast(resource, eventKind string, payload []byte) error {
	s.Logger.WithFields(logrus.Fields{
		"resource": resource,
		"event":    eventKind,
	}).Info("broadcast")
	return nil
}

type LogNotificationSink struct {
	Logger *logrus.Logger
}

func (s *LogNotificationSink) Send(kind string, payload []byte) error {
	s.Logger.WithFields(logrus.Fields{
		"kind": kind,
	}).Info("notification")
	return nil
}
