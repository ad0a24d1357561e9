package agents

import (
	"rumbo/internal/models/db_models"
	"rumbo/pkg/llm"
	"rumbo/pkg/tools"
)

// Brief is the user's generation request plus the planning preferences the
// traveler-type engine derived for them.
type Brief struct {
	TripName           string
	TotalDays          int
	GeneralDestination string
	TripGoal           string
	TripSeason         string
	Preferences        *db_models.Preferences
	TravelerProfile    string
}

// State is the shared record every pipeline node reads and extends. Each
// node owns the fields it emits; nothing is shared across pipeline runs.
type State struct {
	Brief         Brief
	UserFeedback  string
	SelectedRoute *db_models.Route

	Messages    []llm.Message
	SearchNotes []tools.SearchResult

	TmpItineraryMarkdown string
	FeedbackNotes        string

	Routes []db_models.Route
	Trip   *db_models.Trip
}
