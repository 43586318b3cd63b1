package spc

import "time"

// AreaSnapshot is a point-in-time copy of one area, safe to marshal and keep
// around after the area itself has moved on.
type AreaSnapshot struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Mode          AreaMode  `json:"mode"`
	LastChanged   time.Time `json:"last_changed"`
	LastChangedBy string    `json:"last_changed_by,omitempty"`
	VerifiedAlarm bool      `json:"verified_alarm"`
}

// ZoneSnapshot is a point-in-time copy of one zone. AreaID records the
// ownership so a snapshot can be restored without the live registry.
type ZoneSnapshot struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	AreaID string     `json:"area"`
	Input  ZoneInput  `json:"input"`
	Status ZoneStatus `json:"status"`
	Alarm  bool       `json:"alarm"`
}

// Snapshot is the full mirrored state of a gateway, ordered by id.
type Snapshot struct {
	Panel *Panel         `json:"panel,omitempty"`
	Areas []AreaSnapshot `json:"areas"`
	Zones []ZoneSnapshot `json:"zones"`
}
