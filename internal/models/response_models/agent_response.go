package response_models

import "rumbo/internal/models/db_models"

type AgentMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Interrupt is a pending human-in-the-loop confirmation on a thread.
type Interrupt struct {
	Prompt string `json:"prompt"`
}

type AgentStateResponse struct {
	TripID           string         `json:"trip_id"`
	ThreadID         string         `json:"thread_id"`
	AgentKind        string         `json:"agent_kind"`
	Messages         []AgentMessage `json:"messages"`
	PendingInterrupt *Interrupt     `json:"pending_interrupt,omitempty"`
}

type RouteProposalResponse struct {
	Routes []db_models.Route `json:"routes"`
}

type ItineraryResponse struct {
	ItineraryID string         `json:"itinerary_id"`
	Slug        string         `json:"slug,omitempty"`
	Status      string         `json:"status"`
	Visibility  string         `json:"visibility"`
	Trip        db_models.Trip `json:"trip"`
}

type SimilarItineraryResponse struct {
	ItineraryID string  `json:"itinerary_id"`
	TripName    string  `json:"trip_name"`
	Distance    float64 `json:"distance"`
}

type AccountResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token,omitempty"`
}
