package request_models

// AgentMessageRequest carries either a new user turn or a resume payload for
// a pending human-in-the-loop interrupt, never both.
type AgentMessageRequest struct {
	Message string         `json:"message,omitempty"`
	Resume  *ResumePayload `json:"resume,omitempty"`
}

// ResumePayload answers an interrupt: "si"/"s" confirms the proposed change,
// anything else re-enters planning with the text as feedback.
type ResumePayload struct {
	Messages string `json:"messages"`
}
