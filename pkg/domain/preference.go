package domain

import "time"

// Preference holds per-profile client settings.
type Preference struct {
	ID                           string    `json:"id"`
	AppIcon                      int       `json:"appIcon"`
	HighSignalNotificationFilter bool      `json:"highSignalNotificationFilter"`
	CreatedAt                    time.Time `json:"createdAt"`
}

// PreferenceUpdate carries the fields a client asked to change. Nil fields are
// left untouched on update and take their zero value on create.
type PreferenceUpdate struct {
	AppIcon                      *int  `json:"appIcon,omitempty"`
	HighSignalNotificationFilter *bool `json:"highSignalNotificationFilter,omitempty"`
}

// DefaultPreference is what a profile without stored preferences gets.
func DefaultPreference(id string) Preference {
	return Preference{ID: id}
}

// Apply merges the update into p.
func (u PreferenceUpdate) Apply(p Preference) Preference {
	if u.AppIcon != nil {
		p.AppIcon = *u.AppIcon
	}
	if u.HighSignalNotificationFilter != nil {
		p.HighSignalNotificationFilter = *u.HighSignalNotificationFilter
	}
	return p
}
