package live

// MessageType identifies a frame.
type MessageType string

const (
	TypeHello    MessageType = "hello"
	TypeHash     MessageType = "hash"
	TypeContent  MessageType = "content"
	TypeNavigate MessageType = "navigate"
	TypeReload   MessageType = "reload"
	TypeCSS      MessageType = "css"
	TypeError    MessageType = "error"
)

// Message is a frame exchanged with the browser client.
type Message struct {
	Type    MessageType `json:"type"`
	Hash    string      `json:"hash,omitempty"`
	Target  string      `json:"target,omitempty"`
	HTML    string      `json:"html,omitempty"`
	Targets []string    `json:"targets,omitempty"`
	File    string      `json:"file,omitempty"`
	Error   string      `json:"error,omitempty"`
}
