package domain

import "time"

// NotificationKind distinguishes success toasts from error toasts.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification is a transient toast. Unless Sticky is set it expires on its
// own after the configured duration; manual dismissal is always available.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	Sticky    bool             `json:"sticky,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// ConnectionState is the last observed backend liveness. It is overwritten
// on every poll; no history is kept.
type ConnectionState string

const (
	ConnectionUnknown      ConnectionState = "unknown"
	ConnectionConnected    ConnectionState = "connected"
	ConnectionDisconnected ConnectionState = "disconnected"
)
