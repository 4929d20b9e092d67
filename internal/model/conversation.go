package model

// MessageTypeText is the only message type that carries bug-report signal.
const MessageTypeText = "text"

// Message is one transcript entry as the chat platform returns it.
type Message struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

func (m Message) IsText() bool {
	return m.Type == MessageTypeText
}

// ConversationMeta is the per-conversation side information. Any field or
// nested object may be absent.
type ConversationMeta struct {
	Email  *string `json:"email,omitempty"`
	Device *Device `json:"device,omitempty"`
}

type Device struct {
	Capabilities []string     `json:"capabilities,omitempty"`
	Geolocation  *Geolocation `json:"geolocation,omitempty"`
	System       *System      `json:"system,omitempty"`
}

type Geolocation struct {
	Country *string `json:"country,omitempty"`
	City    *string `json:"city,omitempty"`
}

type System struct {
	OS      *NamedVersion `json:"os,omitempty"`
	Browser *NamedVersion `json:"browser,omitempty"`
}

type NamedVersion struct {
	Name    *string `json:"name,omitempty"`
	Version *string `json:"version,omitempty"`
}

// Conversation is a fetched transcript plus its metadata.
type Conversation struct {
	Messages []Message
	Meta     ConversationMeta
}

// UserContext is the flattened, display-oriented view of ConversationMeta.
// A nil field means the source value was absent.
type UserContext struct {
	Email   *string
	Device  *string
	Browser *string
	OS      *string
	Country *string
}
