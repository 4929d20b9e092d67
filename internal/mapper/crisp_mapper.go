package mapper

import (
	"strings"

	"basegraph.app/bugrelay/internal/crisp"
	"basegraph.app/bugrelay/internal/model"
)

// CrispMapper converts Crisp API payloads into the canonical model types.
type CrispMapper struct{}

func NewCrispMapper() *CrispMapper {
	return &CrispMapper{}
}

// MapMessages keeps every entry and its order. Non-string content (files,
// pickers, events) maps to an empty content so only the type survives.
func (m *CrispMapper) MapMessages(in []crisp.ConversationMessage) []model.Message {
	out := make([]model.Message, 0, len(in))
	for _, msg := range in {
		content, _ := msg.TextContent()
		out = append(out, model.Message{
			Type:      msg.Type,
			From:      msg.From,
			Content:   content,
			Timestamp: msg.Timestamp,
		})
	}
	return out
}

// MapMeta turns Crisp's zero-value-heavy metadata into the optional tree:
// empty strings and empty objects become absent.
func (m *CrispMapper) MapMeta(in *crisp.ConversationMeta) model.ConversationMeta {
	if in == nil {
		return model.ConversationMeta{}
	}
	return model.ConversationMeta{
		Email:  optional(in.Email),
		Device: m.mapDevice(in.Device),
	}
}

func (m *CrispMapper) mapDevice(in *crisp.Device) *model.Device {
	if in == nil {
		return nil
	}

	device := &model.Device{
		Capabilities: in.Capabilities,
	}

	if in.Geolocation != nil {
		geo := &model.Geolocation{
			Country: optional(in.Geolocation.Country),
			City:    optional(in.Geolocation.City),
		}
		if geo.Country != nil || geo.City != nil {
			device.Geolocation = geo
		}
	}

	if in.System != nil {
		system := &model.System{
			OS:      mapSoftware(in.System.OS),
			Browser: mapSoftware(in.System.Browser),
		}
		if system.OS != nil || system.Browser != nil {
			device.System = system
		}
	}

	if len(device.Capabilities) == 0 && device.Geolocation == nil && device.System == nil {
		return nil
	}
	return device
}

func mapSoftware(in *crisp.Software) *model.NamedVersion {
	if in == nil {
		return nil
	}
	nv := &model.NamedVersion{
		Name:    optional(in.Name),
		Version: optional(in.Version),
	}
	if nv.Name == nil && nv.Version == nil {
		return nil
	}
	return nv
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
