package models

import "time"

// Setting keys consumed by the eligibility engine. Both booleans are read
// per-request so changes take effect on the next call.
const (
	SettingDefaultShiftHours      = "defaultShiftHours"
	SettingRequireSkills          = "requireSkillsForAvailability"
	SettingAllowUTCLegacyFallback = "allowUtcLegacyAvailability"
)

// Setting is a persisted key/value application setting.
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
