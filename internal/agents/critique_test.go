package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rumbo/internal/models/db_models"
	"rumbo/pkg/utils"
)

func singleCityTrip() db_models.Trip {
	return db_models.Trip{
		TripName:  "Lisboa a fondo",
		TotalDays: 3,
		Destinations: []db_models.Destination{
			{City: "Lisboa", Country: "Portugal", CountryCode: "PT", DaysInDestination: 3},
		},
	}
}

func TestCritiqueSkipsFixerWhenReviewIsOK(t *testing.T) {
	trip := singleCityTrip()
	client := &stubClient{chatScript: []scriptStep{
		{payload: "## Day 1\ndraft itinerary"},
		{payload: "OK"},
	}}
	state := &State{Trip: &trip}

	err := NewGraph(CritiqueNode(client)).Run(context.Background(), state)

	require.NoError(t, err)
	assert.Equal(t, "## Day 1\ndraft itinerary", state.TmpItineraryMarkdown)
	assert.Equal(t, 2, client.chatCalls)
}

func TestCritiqueAppliesExactlyOneFixPass(t *testing.T) {
	trip := singleCityTrip()
	client := &stubClient{chatScript: []scriptStep{
		{payload: "## Day 1\ndraft itinerary"},
		{payload: "Day 2 needs an evening plan."},
		{payload: "## Day 1\nfixed itinerary"},
	}}
	state := &State{Trip: &trip}

	err := NewGraph(CritiqueNode(client)).Run(context.Background(), state)

	require.NoError(t, err)
	assert.Equal(t, "## Day 1\nfixed itinerary", state.TmpItineraryMarkdown)
	assert.Equal(t, 3, client.chatCalls)
}

func TestCritiqueOnlyRunsForSingleDestinationTrips(t *testing.T) {
	trip := threeCityTrip()
	client := &stubClient{chatScript: []scriptStep{{payload: "never used"}}}
	state := &State{Trip: &trip}

	err := NewGraph(CritiqueNode(client)).Run(context.Background(), state)

	require.NoError(t, err)
	assert.Zero(t, client.chatCalls)
	assert.Empty(t, state.TmpItineraryMarkdown)
}

func TestStructureDaysPinsIndexAndCity(t *testing.T) {
	trip := singleCityTrip()
	payload := `{"days":[
		{"day_index":9,"city":"Oporto","title":"Llegada","afternoon":[{"title":"Alfama"}]},
		{"day_index":9,"city":"Oporto","title":"Centro","afternoon":[{"title":"Chiado"}]},
		{"day_index":9,"city":"Oporto","title":"Despedida","afternoon":[{"title":"Belém"}]}
	]}`
	client := &stubClient{jsonScript: []scriptStep{{payload: payload}}}
	state := &State{Trip: &trip, TmpItineraryMarkdown: "## Day 1 ..."}

	err := NewGraph(StructureDaysNode(client)).Run(context.Background(), state)

	require.NoError(t, err)
	require.Len(t, trip.DailyItinerary, 3)
	for i, day := range trip.DailyItinerary {
		assert.Equal(t, i+1, day.DayIndex)
		assert.Equal(t, "Lisboa", day.City)
		assert.Equal(t, "Portugal", day.Country)
	}
}

func TestStructureDaysRejectsWrongDayCount(t *testing.T) {
	trip := singleCityTrip()
	payload := `{"days":[{"day_index":1,"afternoon":[{"title":"algo"}]}]}`
	client := &stubClient{jsonScript: []scriptStep{{payload: payload}}}
	state := &State{Trip: &trip, TmpItineraryMarkdown: "## Day 1 ..."}

	err := NewGraph(StructureDaysNode(client)).Run(context.Background(), state)

	require.ErrorIs(t, err, utils.ErrGeneration)
}

func TestStructureDaysSkipsWithoutMarkdown(t *testing.T) {
	trip := singleCityTrip()
	client := &stubClient{jsonScript: []scriptStep{{payload: "{}"}}}
	state := &State{Trip: &trip}

	err := NewGraph(StructureDaysNode(client)).Run(context.Background(), state)

	require.NoError(t, err)
	assert.Zero(t, client.jsonCalls)
}
