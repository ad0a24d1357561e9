package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"rumbo/internal/agents"
	"rumbo/internal/models/db_models"
	"rumbo/internal/models/request_models"
	"rumbo/internal/models/response_models"
	"rumbo/internal/repositories"
	"rumbo/pkg/llm"
	"rumbo/pkg/tools"
	"rumbo/pkg/utils"
)

type ItineraryServiceInterface interface {
	ProposeRoutes(ctx context.Context, userID *uuid.UUID, req request_models.RouteProposalRequest) (*response_models.RouteProposalResponse, error)
	Generate(ctx context.Context, userID *uuid.UUID, req request_models.GenerateItineraryRequest) (*response_models.ItineraryResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*response_models.ItineraryResponse, error)
	FindSimilar(ctx context.Context, id uuid.UUID, limit int) ([]response_models.SimilarItineraryResponse, error)
	AddAccommodation(ctx context.Context, itineraryID uuid.UUID, req request_models.AddAccommodationRequest) (*db_models.Accommodation, error)
}

type ItineraryService struct {
	planner        *agents.Planner
	itineraryRepo  repositories.ItineraryRepository
	accommodations repositories.AccommodationRepository
	accountRepo    repositories.AccountRepository
	embedder       llm.Embedder
	geocoder       tools.Geocoder
	images         tools.ImageSearcher
}

func NewItineraryService(
	planner *agents.Planner,
	itineraryRepo repositories.ItineraryRepository,
	accommodations repositories.AccommodationRepository,
	accountRepo repositories.AccountRepository,
	embedder llm.Embedder,
	geocoder tools.Geocoder,
	images tools.ImageSearcher,
) ItineraryServiceInterface {
	return &ItineraryService{
		planner:        planner,
		itineraryRepo:  itineraryRepo,
		accommodations: accommodations,
		accountRepo:    accountRepo,
		embedder:       embedder,
		geocoder:       geocoder,
		images:         images,
	}
}

func (s *ItineraryService) ProposeRoutes(ctx context.Context, userID *uuid.UUID, req request_models.RouteProposalRequest) (*response_models.RouteProposalResponse, error) {
	if req.UserFeedback != "" && req.SelectedRoute == nil {
		return nil, fmt.Errorf("%w: feedback requires a selected route", utils.ErrValidation)
	}

	brief := agents.Brief{
		TotalDays:          req.TotalDays,
		GeneralDestination: req.GeneralDestination,
		TripGoal:           req.TripGoal,
		TripSeason:         req.TripSeason,
	}
	s.fillPreferences(ctx, &brief, userID, nil)

	routes, err := s.planner.ProposeRoutes(ctx, brief, req.UserFeedback, req.SelectedRoute)
	if err != nil {
		return nil, err
	}
	return &response_models.RouteProposalResponse{Routes: routes}, nil
}

func (s *ItineraryService) Generate(ctx context.Context, userID *uuid.UUID, req request_models.GenerateItineraryRequest) (*response_models.ItineraryResponse, error) {
	if req.SelectedRoute != nil {
		if sum := req.SelectedRoute.DaysSum(); sum != req.TotalDays {
			return nil, fmt.Errorf("%w: selected route covers %d days, trip wants %d", utils.ErrValidation, sum, req.TotalDays)
		}
	}

	brief := agents.Brief{
		TripName:           req.TripName,
		TotalDays:          req.TotalDays,
		GeneralDestination: req.GeneralDestination,
		TripGoal:           req.TripGoal,
		TripSeason:         req.TripSeason,
		TravelerProfile:    req.TravelerProfile,
	}
	s.fillPreferences(ctx, &brief, userID, req.Preferences)

	trip, err := s.planner.GenerateTrip(ctx, brief, req.SelectedRoute)
	if err != nil {
		return nil, err
	}

	s.geocodeDestinations(ctx, trip)

	slug := makeSlug(trip.TripName)
	itinerary := &db_models.Itinerary{
		UserID:           userID,
		Slug:             &slug,
		TripName:         trip.TripName,
		Status:           db_models.ItineraryStatusDraft,
		Visibility:       db_models.VisibilityPrivate,
		DetailsItinerary: *trip,
	}
	if err := s.itineraryRepo.Create(ctx, itinerary); err != nil {
		return nil, fmt.Errorf("%w: persisting itinerary: %v", utils.ErrDatabaseError, err)
	}

	// Embedding is best effort; a failed vector never fails the trip.
	s.saveEmbedding(ctx, itinerary.ID, trip)

	return toItineraryResponse(itinerary), nil
}

func (s *ItineraryService) GetByID(ctx context.Context, id uuid.UUID) (*response_models.ItineraryResponse, error) {
	itinerary, err := s.itineraryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if itinerary == nil {
		return nil, fmt.Errorf("%w: itinerary %s", utils.ErrNotFound, id)
	}
	return toItineraryResponse(itinerary), nil
}

func (s *ItineraryService) FindSimilar(ctx context.Context, id uuid.UUID, limit int) ([]response_models.SimilarItineraryResponse, error) {
	itinerary, err := s.itineraryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if itinerary == nil {
		return nil, fmt.Errorf("%w: itinerary %s", utils.ErrNotFound, id)
	}

	vector, err := s.embedder.Embed(ctx, embeddingText(&itinerary.DetailsItinerary))
	if err != nil {
		return nil, err
	}

	// Overfetch one so the itinerary itself can be dropped from its own
	// neighbourhood.
	rows, err := s.itineraryRepo.FindSimilar(ctx, vector, limit+1)
	if err != nil {
		return nil, err
	}

	results := make([]response_models.SimilarItineraryResponse, 0, limit)
	for _, row := range rows {
		if row.ItineraryID == id {
			continue
		}
		results = append(results, response_models.SimilarItineraryResponse{
			ItineraryID: row.ItineraryID.String(),
			TripName:    row.TripName,
			Distance:    row.Distance,
		})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

func (s *ItineraryService) AddAccommodation(ctx context.Context, itineraryID uuid.UUID, req request_models.AddAccommodationRequest) (*db_models.Accommodation, error) {
	itinerary, err := s.itineraryRepo.GetByID(ctx, itineraryID)
	if err != nil {
		return nil, err
	}
	if itinerary == nil {
		return nil, fmt.Errorf("%w: itinerary %s", utils.ErrNotFound, itineraryID)
	}

	accommodation := &db_models.Accommodation{
		ItineraryID: itineraryID,
		City:        req.City,
		URL:         req.URL,
		Provider:    req.Provider,
		Status:      db_models.AccommodationStatusDraft,
	}

	if s.images != nil {
		imgs, err := s.images.Images(ctx, req.City+" hotel", "es", 4)
		if err != nil {
			log.Printf("accommodation image lookup for %q failed: %v", req.City, err)
		}
		for _, img := range imgs {
			accommodation.ImgURLs = append(accommodation.ImgURLs, img.URL)
		}
	}

	if err := s.accommodations.Create(ctx, accommodation); err != nil {
		return nil, err
	}
	return accommodation, nil
}

// fillPreferences resolves planning preferences: explicit request values win,
// then the account's stored traveler-type preferences.
func (s *ItineraryService) fillPreferences(ctx context.Context, brief *agents.Brief, userID *uuid.UUID, explicit *db_models.Preferences) {
	if explicit != nil {
		brief.Preferences = explicit
		return
	}
	if userID == nil || s.accountRepo == nil {
		return
	}

	account, err := s.accountRepo.GetByID(ctx, *userID)
	if err != nil {
		log.Printf("loading account %s preferences: %v", userID, err)
		return
	}
	if account != nil && account.Preferences != nil {
		brief.Preferences = account.Preferences
	}
}

// geocodeDestinations backfills coordinates the generator left empty.
// Lookups are best effort; a missing coordinate never blocks the trip.
func (s *ItineraryService) geocodeDestinations(ctx context.Context, trip *db_models.Trip) {
	if s.geocoder == nil || trip == nil {
		return
	}

	queries := make([]string, 0, len(trip.Destinations))
	for _, d := range trip.Destinations {
		if d.Coordinates.Lat == 0 && d.Coordinates.Lon == 0 {
			queries = append(queries, d.City+", "+d.Country)
		}
	}
	if len(queries) == 0 {
		return
	}

	entries, err := s.geocoder.GeocodeBatch(ctx, queries, "")
	if err != nil {
		log.Printf("geocoding destinations: %v", err)
		return
	}
	for i := range trip.Destinations {
		d := &trip.Destinations[i]
		entry, ok := entries[d.City+", "+d.Country]
		if !ok || entry.Result == nil {
			continue
		}
		d.Coordinates = db_models.Coordinates{Lat: entry.Result.Lat, Lon: entry.Result.Lon}
	}
}

func (s *ItineraryService) saveEmbedding(ctx context.Context, itineraryID uuid.UUID, trip *db_models.Trip) {
	if s.embedder == nil {
		return
	}
	vector, err := s.embedder.Embed(ctx, embeddingText(trip))
	if err != nil {
		log.Printf("embedding itinerary %s: %v", itineraryID, err)
		return
	}
	if err := s.itineraryRepo.SaveEmbedding(ctx, itineraryID, vector); err != nil {
		log.Printf("saving embedding for itinerary %s: %v", itineraryID, err)
	}
}

func embeddingText(trip *db_models.Trip) string {
	var b strings.Builder
	b.WriteString(trip.TripName)
	b.WriteString(". ")
	b.WriteString(trip.TripSummary)
	for _, d := range trip.Destinations {
		fmt.Fprintf(&b, " %s, %s (%d días).", d.City, d.Country, d.DaysInDestination)
	}
	return b.String()
}

func toItineraryResponse(itinerary *db_models.Itinerary) *response_models.ItineraryResponse {
	resp := &response_models.ItineraryResponse{
		ItineraryID: itinerary.ID.String(),
		Status:      itinerary.Status,
		Visibility:  itinerary.Visibility,
		Trip:        itinerary.DetailsItinerary,
	}
	if itinerary.Slug != nil {
		resp.Slug = *itinerary.Slug
	}
	return resp
}

// makeSlug builds a URL-safe slug from the trip name plus a short random
// suffix to dodge collisions on common names.
func makeSlug(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == 'á':
			b.WriteRune('a')
			lastDash = false
		case r == 'é':
			b.WriteRune('e')
			lastDash = false
		case r == 'í':
			b.WriteRune('i')
			lastDash = false
		case r == 'ó':
			b.WriteRune('o')
			lastDash = false
		case r == 'ú', r == 'ü':
			b.WriteRune('u')
			lastDash = false
		case r == 'ñ':
			b.WriteRune('n')
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "viaje"
	}
	return slug + "-" + uuid.NewString()[:8]
}
