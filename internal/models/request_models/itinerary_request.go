package request_models

import "rumbo/internal/models/db_models"

type GenerateItineraryRequest struct {
	TripName           string                 `json:"trip_name" binding:"required"`
	TotalDays          int                    `json:"total_days" binding:"required,min=1"`
	GeneralDestination string                 `json:"general_destination" binding:"required"`
	TripGoal           string                 `json:"trip_goal,omitempty"`
	TripSeason         string                 `json:"trip_season,omitempty"`
	Preferences        *db_models.Preferences `json:"preferences,omitempty"`
	TravelerProfile    string                 `json:"traveler_profile,omitempty"`
	SelectedRoute      *db_models.Route       `json:"selected_route,omitempty"`
}

type AddAccommodationRequest struct {
	City     string `json:"city" binding:"required"`
	URL      string `json:"url" binding:"required,url"`
	Provider string `json:"provider,omitempty"`
}

type RouteProposalRequest struct {
	GeneralDestination string           `json:"general_destination" binding:"required"`
	TotalDays          int              `json:"total_days" binding:"required,min=1"`
	TripGoal           string           `json:"trip_goal"`
	TripSeason         string           `json:"trip_season"`
	UserFeedback       string           `json:"user_feedback,omitempty"`
	SelectedRoute      *db_models.Route `json:"selected_route,omitempty"`
}
