package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rumbo/internal/models/db_models"
)

func TestPinTripToRoutePinsSequenceAndCarriesHints(t *testing.T) {
	route := db_models.Route{
		TripName:  "Andalucía",
		TotalDays: 6,
		Destinations: []db_models.Destination{
			{City: "Sevilla", Country: "España", CountryCode: "ES", DaysInDestination: 3},
			{City: "Granada", Country: "España", CountryCode: "ES", DaysInDestination: 3},
		},
	}
	brief := Brief{TripName: "Andalucía", TotalDays: 6, GeneralDestination: "Andalucía"}

	// The model reordered the cities, changed the day split and invented an
	// extra stop; only its hints survive.
	trip := db_models.Trip{
		TotalDays: 9,
		Destinations: []db_models.Destination{
			{City: "Granada", Country: "España", DaysInDestination: 5, AccommodationHint: "cerca de la Alhambra"},
			{City: "Córdoba", Country: "España", DaysInDestination: 2},
			{City: "Sevilla", Country: "España", DaysInDestination: 2, AccommodationHint: "barrio de Triana"},
		},
		Transports: []db_models.Transport{
			{OriginCity: "Sevilla", DestinationCity: "Granada", TransportKind: "bus"},
		},
	}

	pinTripToRoute(&trip, brief, route)

	assert.Equal(t, 6, trip.TotalDays)
	assert.Equal(t, []string{"Sevilla", "Granada"}, []string{trip.Destinations[0].City, trip.Destinations[1].City})
	assert.Equal(t, 3, trip.Destinations[0].DaysInDestination)
	assert.Equal(t, "barrio de Triana", trip.Destinations[0].AccommodationHint)
	assert.Equal(t, "cerca de la Alhambra", trip.Destinations[1].AccommodationHint)
	assert.Equal(t, db_models.TransportCoach, trip.Transports[0].TransportKind)
}

func TestPinTripToRouteClearsTransportsForSingleDestination(t *testing.T) {
	route := db_models.Route{
		TotalDays: 4,
		Destinations: []db_models.Destination{
			{City: "Oporto", Country: "Portugal", CountryCode: "PT", DaysInDestination: 4},
		},
	}
	trip := db_models.Trip{
		Transports: []db_models.Transport{
			{OriginCity: "Oporto", DestinationCity: "Lisboa", TransportKind: db_models.TransportTrain},
		},
	}

	pinTripToRoute(&trip, Brief{TotalDays: 4}, route)

	assert.Nil(t, trip.Transports)
}

func TestNormalizeKind(t *testing.T) {
	cases := map[db_models.TransportKind]db_models.TransportKind{
		"Plane":   db_models.TransportPlane,
		"train":   db_models.TransportTrain,
		"bus":     db_models.TransportCoach,
		"autobús": db_models.TransportCoach,
		"flight":  db_models.TransportPlane,
		"avión":   db_models.TransportPlane,
		"ferry":   db_models.TransportBoat,
		"scooter": db_models.TransportOther,
		"":        db_models.TransportOther,
	}
	for input, want := range cases {
		assert.Equal(t, want, normalizeKind(input), "input %q", input)
	}
}
