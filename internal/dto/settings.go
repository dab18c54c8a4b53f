package dto

// SettingsResponse maps setting keys to raw string values, the shape the
// settings page round-trips.
type SettingsResponse struct {
	Settings map[string]string `json:"settings"`
}

// UpdateSettingsRequest upserts allow-listed keys in bulk.
type UpdateSettingsRequest map[string]string
