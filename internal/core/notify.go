package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// NotificationKind distinguishes success and failure notifications.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyFailure NotificationKind = "error"
)

// Notification is the outcome signal of an import attempt.
type Notification struct {
	Kind     NotificationKind `json:"kind"`
	Message  string           `json:"message"`
	Inserted int              `json:"inserted"`
	Code     string           `json:"code,omitempty"`
	Action   string           `json:"action,omitempty"`
}

// SuccessNotification reports a committed batch.
func SuccessNotification(inserted int) Notification {
	return Notification{
		Kind:     NotifySuccess,
		Message:  fmt.Sprintf("%d records imported successfully", inserted),
		Inserted: inserted,
	}
}

// FailureNotification reports a failed attempt with the coded user message for err.
func FailureNotification(err error) Notification {
	msg := MapError(err)
	return Notification{Kind: NotifyFailure, Message: msg.Message, Code: msg.Code, Action: msg.Action}
}

// Notifier receives outcome signals. Close is fired only after a success.
type Notifier interface {
	Notify(n Notification)
	Close()
}

// NopNotifier discards every signal.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}
func (NopNotifier) Close()              {}

// LogNotifier writes signals to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(n Notification) {
	level := slog.LevelInfo
	if n.Kind == NotifyFailure {
		level = slog.LevelWarn
	}
	l.logger().Log(context.Background(), level, n.Message,
		"kind", n.Kind,
		"inserted", n.Inserted,
		"code", n.Code,
	)
}

func (l LogNotifier) Close() {
	l.logger().Debug("import dialog closed")
}

func (l LogNotifier) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// RecordingNotifier keeps every signal in memory. Safe for concurrent use.
type RecordingNotifier struct {
	mu            sync.Mutex
	notifications []Notification
	closed        int
}

func (r *RecordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *RecordingNotifier) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
}

// Notifications returns a copy of the recorded signals.
func (r *RecordingNotifier) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// Last returns the most recent signal.
func (r *RecordingNotifier) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return Notification{}, false
	}
	return r.notifications[len(r.notifications)-1], true
}

// Closed returns how many times Close was called.
func (r *RecordingNotifier) Closed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
