package dto

import (
	"encoding/json"
	"strings"

	"basegraph.app/bugrelay/internal/model"
)

// CreateBugRequest asks the server to fetch the conversation itself.
type CreateBugRequest struct {
	SessionID  string `json:"session_id"`
	WebsiteID  string `json:"website_id"`
	GitHubRepo string `json:"github_repo,omitempty"`
}

// TranscriptBugRequest embeds the conversation, as sent by older widgets.
type TranscriptBugRequest struct {
	SessionID  string       `json:"session_id"`
	WebsiteID  string       `json:"website_id"`
	GitHubRepo string       `json:"github_repo,omitempty"`
	Messages   []MessageDTO `json:"messages"`
	Meta       *MetaDTO     `json:"meta,omitempty"`
	Device     *DeviceDTO   `json:"device,omitempty"`
}

type MessageDTO struct {
	Type      string          `json:"type"`
	From      string          `json:"from"`
	Content   json.RawMessage `json:"content"`
	Timestamp float64         `json:"timestamp"`
}

type MetaDTO struct {
	Email  *string    `json:"email,omitempty"`
	Device *DeviceDTO `json:"device,omitempty"`
}

type DeviceDTO struct {
	Capabilities []string        `json:"capabilities,omitempty"`
	Geolocation  *GeolocationDTO `json:"geolocation,omitempty"`
	System       *SystemDTO      `json:"system,omitempty"`
}

type GeolocationDTO struct {
	Country *string `json:"country,omitempty"`
	City    *string `json:"city,omitempty"`
}

type SystemDTO struct {
	OS      *NamedVersionDTO `json:"os,omitempty"`
	Browser *NamedVersionDTO `json:"browser,omitempty"`
}

type NamedVersionDTO struct {
	Name    *string `json:"name,omitempty"`
	Version *string `json:"version,omitempty"`
}

type CreateBugResponse struct {
	IssueNumber int64  `json:"issueNumber"`
	IssueURL    string `json:"issueUrl"`
	Title       string `json:"title"`
}

// ToMessages keeps nil as nil so a missing field stays distinguishable from
// an empty transcript.
func (r TranscriptBugRequest) ToMessages() []model.Message {
	if r.Messages == nil {
		return nil
	}
	out := make([]model.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		var content string
		if err := json.Unmarshal(m.Content, &content); err != nil {
			content = ""
		}
		out = append(out, model.Message{
			Type:      m.Type,
			From:      m.From,
			Content:   content,
			Timestamp: int64(m.Timestamp),
		})
	}
	return out
}

// ToMeta merges the top-level device into the metadata; meta.device wins.
func (r TranscriptBugRequest) ToMeta() model.ConversationMeta {
	var meta model.ConversationMeta
	device := r.Device
	if r.Meta != nil {
		meta.Email = trimmed(r.Meta.Email)
		if r.Meta.Device != nil {
			device = r.Meta.Device
		}
	}
	meta.Device = device.toModel()
	return meta
}

func (d *DeviceDTO) toModel() *model.Device {
	if d == nil {
		return nil
	}
	device := &model.Device{Capabilities: d.Capabilities}
	if d.Geolocation != nil {
		device.Geolocation = &model.Geolocation{
			Country: trimmed(d.Geolocation.Country),
			City:    trimmed(d.Geolocation.City),
		}
	}
	if d.System != nil {
		device.System = &model.System{
			OS:      d.System.OS.toModel(),
			Browser: d.System.Browser.toModel(),
		}
	}
	return device
}

func (nv *NamedVersionDTO) toModel() *model.NamedVersion {
	if nv == nil {
		return nil
	}
	return &model.NamedVersion{Name: trimmed(nv.Name), Version: trimmed(nv.Version)}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
