package dto

// ChatMessageRequest carries one utterance.
type ChatMessageRequest struct {
	Text string `json:"text"`
}

// ChatMessage is a rendered conversation line.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
	HTML string `json:"html"`
}

// ChatNavigation asks the page to move after DelayMS milliseconds.
type ChatNavigation struct {
	Path    string `json:"path"`
	DelayMS int64  `json:"delay_ms"`
}

// ChatUser is the customer a chat session is logged in as.
type ChatUser struct {
	CustomerID string `json:"customer_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

// ChatSessionResponse describes a session after a turn.
type ChatSessionResponse struct {
	SessionID     string          `json:"session_id"`
	Phase         string          `json:"phase"`
	Authenticated bool            `json:"authenticated"`
	User          *ChatUser       `json:"user,omitempty"`
	Messages      []ChatMessage   `json:"messages,omitempty"`
	Navigation    *ChatNavigation `json:"navigation,omitempty"`
}
