package service

import (
	"strings"

	"basegraph.app/bugrelay/internal/model"
)

// BuildUserContext flattens conversation metadata for display. It never
// fails: an absent source value, or an absent ancestor, yields a nil field.
func BuildUserContext(meta model.ConversationMeta) model.UserContext {
	uc := model.UserContext{
		Email: nonEmpty(meta.Email),
	}

	device := meta.Device
	if device == nil {
		return uc
	}

	if len(device.Capabilities) > 0 {
		uc.Device = nonEmpty(ptr(strings.Join(device.Capabilities, ", ")))
	}
	if device.Geolocation != nil {
		uc.Country = nonEmpty(device.Geolocation.Country)
	}
	if device.System != nil {
		uc.Browser = joinNameVersion(device.System.Browser)
		uc.OS = joinNameVersion(device.System.OS)
	}

	return uc
}

// joinNameVersion is only populated when both halves are present.
func joinNameVersion(nv *model.NamedVersion) *string {
	if nv == nil {
		return nil
	}
	name, version := nonEmpty(nv.Name), nonEmpty(nv.Version)
	if name == nil || version == nil {
		return nil
	}
	return ptr(*name + " " + *version)
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func ptr[T any](v T) *T {
	return &v
}
