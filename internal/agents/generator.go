package agents

import (
	"context"
	"fmt"
	"strings"

	"rumbo/internal/models/db_models"
	"rumbo/pkg/llm"
	"rumbo/pkg/utils"
)

// TripGeneratorNode turns the selected route into a full trip (without the
// daily plan). Destination order and day counts are pinned to the route; the
// model only writes the narrative and transport choices.
func TripGeneratorNode(client llm.Client) Node {
	return Node{
		Name: "trip_generator",
		Run: func(ctx context.Context, s *State) error {
			route := s.SelectedRoute
			if route == nil {
				if len(s.Routes) == 0 {
					return fmt.Errorf("%w: no route to generate from", utils.ErrValidation)
				}
				route = &s.Routes[0]
			}

			var trip db_models.Trip
			messages := []llm.Message{{Role: llm.RoleUser, Content: tripGeneratorPrompt(s.Brief, *route)}}
			if err := client.ChatJSON(ctx, messages, &trip); err != nil {
				// One schema retry; structured output failures are retryable.
				if err2 := client.ChatJSON(ctx, messages, &trip); err2 != nil {
					return fmt.Errorf("%w: trip generation: %v", utils.ErrGeneration, err2)
				}
			}

			pinTripToRoute(&trip, s.Brief, *route)
			s.Trip = &trip
			return nil
		},
	}
}

// ValidateRepairNode runs the deterministic validator and bounded repair on
// the generated trip before anything is persisted.
func ValidateRepairNode() Node {
	return Node{
		Name: "validate_repair",
		When: func(s *State) bool { return s.Trip != nil },
		Run: func(ctx context.Context, s *State) error {
			repaired, err := RepairTrip(*s.Trip)
			if err != nil {
				return err
			}
			s.Trip = &repaired
			return nil
		},
	}
}

// pinTripToRoute overrides everything the model is not trusted with: the
// destination sequence, day counts and totals come from the route verbatim.
func pinTripToRoute(trip *db_models.Trip, b Brief, route db_models.Route) {
	trip.TotalDays = b.TotalDays
	if trip.TripName == "" {
		trip.TripName = b.TripName
	}
	if trip.GeneralDestination == "" {
		trip.GeneralDestination = b.GeneralDestination
	}
	if trip.RouteChosen == "" {
		trip.RouteChosen = routeSummary(route)
	}

	destinations := make([]db_models.Destination, len(route.Destinations))
	copy(destinations, route.Destinations)

	// Carry over accommodation hints by city when the model produced them.
	hints := make(map[string]string, len(trip.Destinations))
	for _, d := range trip.Destinations {
		if d.AccommodationHint != "" {
			hints[d.City] = d.AccommodationHint
		}
	}
	for i := range destinations {
		if hint := hints[destinations[i].City]; hint != "" {
			destinations[i].AccommodationHint = hint
		}
	}
	trip.Destinations = destinations

	if len(trip.Destinations) <= 1 {
		trip.Transports = nil
	}
	for i := range trip.Transports {
		trip.Transports[i].TransportKind = normalizeKind(trip.Transports[i].TransportKind)
		for j := range trip.Transports[i].Alternatives {
			trip.Transports[i].Alternatives[j] = normalizeKind(trip.Transports[i].Alternatives[j])
		}
	}
}

func normalizeKind(k db_models.TransportKind) db_models.TransportKind {
	if k.Valid() {
		return k
	}
	lowered := strings.ToLower(strings.TrimSpace(string(k)))
	if lowered != "" {
		titled := db_models.TransportKind(strings.ToUpper(lowered[:1]) + lowered[1:])
		if titled.Valid() {
			return titled
		}
	}
	switch lowered {
	case "bus", "autobus", "autobús":
		return db_models.TransportCoach
	case "flight", "airplane", "avión", "avion":
		return db_models.TransportPlane
	case "ferry", "barco":
		return db_models.TransportBoat
	}
	return db_models.TransportOther
}
