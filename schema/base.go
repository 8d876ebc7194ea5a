package schema

// Base is a base schema. Embedding it makes a struct a Schema which is
// rendered as JSON by Stringify.
type Base struct{}

// String implements Schema interface
func (r Base) String() string {
	return ""
}

// Input is the default user input schema
type Input struct {
	Base
	// ChatMessage is the chat message from the user
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The chat message from the user." validate:"required"`
}

// NewInput returns a new Input
func NewInput(msg string) *Input {
	return &Input{
		ChatMessage: msg,
	}
}

func (r Input) String() string {
	return r.ChatMessage
}
