package agents

import (
	"fmt"
	"strings"

	"rumbo/internal/models/db_models"
	"rumbo/pkg/utils"
)

// ValidateTrip checks the structural invariants every accepted trip must
// satisfy: transport cardinality, exact origin/destination sequencing,
// duration consistency and, when a daily plan is present, contiguous day
// coverage.
func ValidateTrip(t *db_models.Trip) error {
	if t.TotalDays < 1 {
		return fmt.Errorf("%w: total_days must be >= 1", utils.ErrInvariant)
	}

	daysSum := 0
	for i, d := range t.Destinations {
		if strings.TrimSpace(d.City) == "" {
			return fmt.Errorf("%w: destination %d has empty city", utils.ErrInvariant, i)
		}
		if d.DaysInDestination < 1 {
			return fmt.Errorf("%w: destination %s has %d days", utils.ErrInvariant, d.City, d.DaysInDestination)
		}
		daysSum += d.DaysInDestination
	}
	if daysSum != t.TotalDays {
		return fmt.Errorf("%w: destination days sum to %d, trip has %d", utils.ErrInvariant, daysSum, t.TotalDays)
	}

	expected := len(t.Destinations) - 1
	if expected < 0 {
		expected = 0
	}
	if len(t.Transports) != expected {
		return fmt.Errorf("%w: %d transports for %d destinations", utils.ErrInvariant, len(t.Transports), len(t.Destinations))
	}

	for i, tr := range t.Transports {
		if !tr.TransportKind.Valid() {
			return fmt.Errorf("%w: transport %d has kind %q", utils.ErrInvariant, i, tr.TransportKind)
		}
		if tr.OriginCity != t.Destinations[i].City {
			return fmt.Errorf("%w: transport %d origin %q, expected %q", utils.ErrInvariant, i, tr.OriginCity, t.Destinations[i].City)
		}
		if tr.DestinationCity != t.Destinations[i+1].City {
			return fmt.Errorf("%w: transport %d destination %q, expected %q", utils.ErrInvariant, i, tr.DestinationCity, t.Destinations[i+1].City)
		}
	}

	if len(t.DailyItinerary) > 0 {
		if len(t.DailyItinerary) != t.TotalDays {
			return fmt.Errorf("%w: daily itinerary covers %d days of %d", utils.ErrInvariant, len(t.DailyItinerary), t.TotalDays)
		}
		seen := make(map[int]bool, len(t.DailyItinerary))
		for _, day := range t.DailyItinerary {
			if day.DayIndex < 1 || day.DayIndex > t.TotalDays || seen[day.DayIndex] {
				return fmt.Errorf("%w: bad day index %d", utils.ErrInvariant, day.DayIndex)
			}
			seen[day.DayIndex] = true
		}
	}

	return nil
}

// RepairTrip enforces transport sequencing with bounded rewrites and returns
// the repaired trip. Destinations are never touched; a trip whose duration
// cannot reconcile fails outright. Repair is idempotent: a repaired trip
// passes through unchanged.
func RepairTrip(t db_models.Trip) (db_models.Trip, error) {
	if len(t.Destinations) <= 1 {
		t.Transports = nil
	} else {
		t.Transports = rebuildTransports(t.Destinations, t.Transports)
	}

	if err := ValidateTrip(&t); err != nil {
		return t, err
	}
	return t, nil
}

func rebuildTransports(destinations []db_models.Destination, input []db_models.Transport) []db_models.Transport {
	used := make([]bool, len(input))
	rebuilt := make([]db_models.Transport, 0, len(destinations)-1)

	for i := 0; i < len(destinations)-1; i++ {
		origin := destinations[i].City
		dest := destinations[i+1].City

		// Exact endpoint match first.
		if idx := findTransport(input, used, func(tr db_models.Transport) bool {
			return tr.OriginCity == origin && tr.DestinationCity == dest
		}); idx != -1 {
			used[idx] = true
			rebuilt = append(rebuilt, input[idx])
			continue
		}

		// A transport touching either endpoint donates its kind and notes.
		if idx := findTransport(input, used, func(tr db_models.Transport) bool {
			return tr.OriginCity == origin || tr.DestinationCity == dest ||
				tr.OriginCity == dest || tr.DestinationCity == origin
		}); idx != -1 {
			used[idx] = true
			donor := input[idx]
			rebuilt = append(rebuilt, db_models.Transport{
				OriginCity:      origin,
				DestinationCity: dest,
				TransportKind:   donor.TransportKind,
				Justification:   strings.TrimSpace(donor.Justification + " (auto-corrected for sequencing)"),
				Alternatives:    donor.Alternatives,
			})
			continue
		}

		rebuilt = append(rebuilt, db_models.Transport{
			OriginCity:      origin,
			DestinationCity: dest,
			TransportKind:   db_models.TransportCar,
			Justification:   "auto-generated due to missing data",
			Alternatives: []db_models.TransportKind{
				db_models.TransportPlane,
				db_models.TransportCoach,
				db_models.TransportTrain,
				db_models.TransportCar,
			},
		})
	}

	return rebuilt
}

func findTransport(input []db_models.Transport, used []bool, match func(db_models.Transport) bool) int {
	for i, tr := range input {
		if used[i] {
			continue
		}
		if match(tr) {
			return i
		}
	}
	return -1
}
