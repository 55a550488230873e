package request

// UpdateSettingsRequest replaces the establishment behavior settings
type UpdateSettingsRequest struct {
	AllowEarlySettlement bool    `json:"allow_early_settlement"`
	DefaultTipPercent    float64 `json:"default_tip_percent"`
}
