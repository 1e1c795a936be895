package model

// ChatResponse is the synchronous send response
type ChatResponse struct {
	ConversationID string   `json:"conversationId"`
	Message        *Message `json:"message"`
}

// ErrorResponse is the JSON body for every error status
type ErrorResponse struct {
	Error string `json:"error"`
}

// StreamEvent is one frame of an event stream. Three shapes reach the
// client: the open marker {content:"", done:false}, content deltas
// {content:chunk, done:false}, and the terminal {done:true} which carries
// either the conversation id or an error message.
type StreamEvent struct {
	MessageID      string `json:"messageId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Content        string `json:"content"`
	Done           bool   `json:"done"`
	Error          string `json:"error,omitempty"`
}
