package dto

type SettingsResponse struct {
	Settings map[string]any `json:"settings"`
}

type UpdateSettingsRequest struct {
	GitHubRepo string `json:"github_repo"`
}

// SaveSettingsRequest is the widget's form, carrying the workspace in the body.
type SaveSettingsRequest struct {
	WebsiteID string                `json:"website_id"`
	Settings  UpdateSettingsRequest `json:"settings"`
}

type SaveSettingsResponse struct {
	Success bool `json:"success"`
}
