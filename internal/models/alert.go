package models

import "time"

// Alert is a transient, user-visible message about an approaching deadline or
// a server-side event. Alerts live only in the in-app list for the current
// session; durable dedup state is the ledger's job.
type Alert struct {
	Message   string    `json:"message"`
	TaskID    int64     `json:"task_id,omitempty"`
	TaskTitle string    `json:"task_title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertEventKind distinguishes plain in-app alerts from events that should
// also surface as an OS/browser notification on the client.
type AlertEventKind string

const (
	EventAlert        AlertEventKind = "alert"
	EventNotification AlertEventKind = "notification"
)

// AlertEvent is the wire form pushed over the realtime channel.
type AlertEvent struct {
	Kind      AlertEventKind `json:"kind"`
	Message   string         `json:"message"`
	TaskTitle string         `json:"task_title,omitempty"`
}
