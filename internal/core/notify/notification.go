// Package notify implements the toast notification engine: id allocation,
// capacity-bounded admission with eviction, and timed auto-expiry.
package notify

import (
	"encoding/json"
	"time"
)

// ID identifies a notification. IDs are allocated by the Store and are never
// reused within a process.
type ID int64

// Kind represents the semantic category of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindDefault Kind = "default"
)

// Kinds lists the recognized kinds in display order.
var Kinds = []Kind{KindSuccess, KindError, KindInfo, KindWarning, KindDefault}

// Valid reports whether k is one of the recognized kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSuccess, KindError, KindInfo, KindWarning, KindDefault:
		return true
	}
	return false
}

// Style roles resolved by the presentation layer into concrete colors.
const (
	StyleSuccess = "success"
	StyleError   = "error"
	StyleInfo    = "info"
	StyleWarning = "warning"
	StyleMuted   = "muted"
)

// Descriptor is the presentation hint attached to a notification.
type Descriptor struct {
	Icon  string
	Style string
}

var descriptors = map[Kind]Descriptor{
	KindSuccess: {Icon: "\uf05d", Style: StyleSuccess}, // check-circle
	KindError:   {Icon: "\uf06a", Style: StyleError},   // exclamation-circle
	KindInfo:    {Icon: "\uf05a", Style: StyleInfo},    // info-circle
	KindWarning: {Icon: "\uf071", Style: StyleWarning}, // warning
	KindDefault: {Icon: "\uf0f3", Style: StyleMuted},   // bell
}

// Describe returns the descriptor for k, falling back to the default entry
// for unrecognized kinds.
func Describe(k Kind) Descriptor {
	if d, ok := descriptors[k]; ok {
		return d
	}
	return descriptors[KindDefault]
}

// Notification is a single active toast.
type Notification struct {
	ID        ID
	Kind      Kind
	Message   string
	Icon      string
	Style     string
	Duration  time.Duration // 0 means persistent
	CreatedAt time.Time
}

// Persistent reports whether the notification never expires on its own.
func (n Notification) Persistent() bool {
	return n.Duration == 0
}

type notificationJSON struct {
	ID         ID        `json:"id"`
	Kind       Kind      `json:"kind"`
	Message    string    `json:"message"`
	Icon       string    `json:"icon"`
	Style      string    `json:"style"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// MarshalJSON encodes the duration in milliseconds.
func (n Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(notificationJSON{
		ID:         n.ID,
		Kind:       n.Kind,
		Message:    n.Message,
		Icon:       n.Icon,
		Style:      n.Style,
		DurationMS: n.Duration.Milliseconds(),
		CreatedAt:  n.CreatedAt,
	})
}

// Snapshot is the ordered set of active notifications published after a
// mutation. Version increases strictly with every published mutation so that
// consumers receiving snapshots from several goroutines can keep the newest.
type Snapshot struct {
	Version uint64         `json:"version"`
	Items   []Notification `json:"items"`
}

// Has reports whether the snapshot contains id.
func (s Snapshot) Has(id ID) bool {
	for _, n := range s.Items {
		if n.ID == id {
			return true
		}
	}
	return false
}
