package crisp

import "encoding/json"

// ConversationMessage is a message as returned by the messages endpoint.
// Content is a string for text and note messages and an object for files,
// pickers and other rich types, so it is kept raw.
type ConversationMessage struct {
	Type        string          `json:"type"`
	From        string          `json:"from"`
	Origin      string          `json:"origin"`
	Content     json.RawMessage `json:"content"`
	Fingerprint int64           `json:"fingerprint"`
	Timestamp   int64           `json:"timestamp"`
}

// TextContent returns the content when it is a JSON string.
func (m ConversationMessage) TextContent() (string, bool) {
	var s string
	if err := json.Unmarshal(m.Content, &s); err != nil {
		return "", false
	}
	return s, true
}

type ConversationMeta struct {
	Nickname string  `json:"nickname,omitempty"`
	Email    string  `json:"email,omitempty"`
	Phone    string  `json:"phone,omitempty"`
	IP       string  `json:"ip,omitempty"`
	Device   *Device `json:"device,omitempty"`
}

type Device struct {
	Capabilities []string     `json:"capabilities,omitempty"`
	Geolocation  *Geolocation `json:"geolocation,omitempty"`
	System       *System      `json:"system,omitempty"`
	Timezone     *int         `json:"timezone,omitempty"`
	Locales      []string     `json:"locales,omitempty"`
}

type Geolocation struct {
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
}

type System struct {
	OS        *Software `json:"os,omitempty"`
	Engine    *Software `json:"engine,omitempty"`
	Browser   *Software `json:"browser,omitempty"`
	UserAgent string    `json:"useragent,omitempty"`
}

type Software struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	Major   string `json:"major,omitempty"`
}

// NewMessage is the body of the send-message endpoint.
type NewMessage struct {
	Type    string `json:"type"`
	From    string `json:"from"`
	Origin  string `json:"origin"`
	Content string `json:"content"`
}
