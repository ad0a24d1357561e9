package agents

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rumbo/internal/models/db_models"
)

func tripJSONFor(cities []string, days []int) string {
	var dests []string
	for i, city := range cities {
		dests = append(dests, fmt.Sprintf(
			`{"city":"%s","country":"España","country_code":"ES","days_in_destination":%d}`, city, days[i]))
	}
	var transports []string
	for i := 0; i < len(cities)-1; i++ {
		transports = append(transports, fmt.Sprintf(
			`{"origin_city":"%s","destination_city":"%s","transport_kind":"Train","justification":"fast"}`,
			cities[i], cities[i+1]))
	}
	total := 0
	for _, d := range days {
		total += d
	}
	return fmt.Sprintf(
		`{"trip_name":"Prueba","total_days":%d,"general_destination":"España","trip_summary":"resumen","destinations":[%s],"inter_destination_transports":[%s]}`,
		total, strings.Join(dests, ","), strings.Join(transports, ","))
}

func routeFor(cities []string, days []int) *db_models.Route {
	route := &db_models.Route{TripName: "Prueba"}
	for i, city := range cities {
		route.Destinations = append(route.Destinations, db_models.Destination{
			City: city, Country: "España", CountryCode: "ES", DaysInDestination: days[i],
		})
		route.TotalDays += days[i]
	}
	return route
}

func TestGenerateTripSingleCityTakesCritiquePath(t *testing.T) {
	structured := `{"days":[
		{"afternoon":[{"title":"a"}]},
		{"afternoon":[{"title":"b"}]},
		{"afternoon":[{"title":"c"}]}
	]}`
	client := &stubClient{
		jsonScript: []scriptStep{
			{payload: tripJSONFor([]string{"Madrid"}, []int{3})},
			{payload: structured},
		},
		chatScript: []scriptStep{
			{payload: "## Day 1\nborrador"},
			{payload: "OK"},
		},
	}
	planner := NewPlanner(client, nil, DefaultConfig())
	brief := Brief{TripName: "Prueba", TotalDays: 3, GeneralDestination: "Madrid"}

	trip, err := planner.GenerateTrip(context.Background(), brief, routeFor([]string{"Madrid"}, []int{3}))

	require.NoError(t, err)
	require.Len(t, trip.DailyItinerary, 3)
	assert.Nil(t, trip.Transports)
	// The critique loop ran: draft plus review, no fixer needed.
	assert.Equal(t, 2, client.chatCalls)
	require.NoError(t, ValidateTrip(trip))
}

func TestGenerateTripTwoCitiesTakesSequentialPlanner(t *testing.T) {
	client := &stubClient{
		jsonScript: []scriptStep{
			{payload: tripJSONFor([]string{"Madrid", "Valencia"}, []int{2, 2})},
			{payload: goodDayJSON},
		},
	}
	planner := NewPlanner(client, nil, DefaultConfig())
	brief := Brief{TripName: "Prueba", TotalDays: 4, GeneralDestination: "España"}

	trip, err := planner.GenerateTrip(context.Background(), brief, routeFor([]string{"Madrid", "Valencia"}, []int{2, 2}))

	require.NoError(t, err)
	require.Len(t, trip.DailyItinerary, 4)
	// One trip generation plus one call per day; the critique path never ran.
	assert.Equal(t, 5, client.jsonCalls)
	assert.Zero(t, client.chatCalls)
	require.NoError(t, ValidateTrip(trip))
}

func TestGenerateTripManyCitiesFansOut(t *testing.T) {
	cities := []string{"Madrid", "Valencia", "Sevilla", "Granada"}
	days := []int{2, 1, 2, 1}
	client := &stubClient{
		jsonScript: []scriptStep{
			{payload: tripJSONFor(cities, days)},
			{payload: goodDayJSON},
		},
	}
	planner := NewPlanner(client, nil, DefaultConfig())
	brief := Brief{TripName: "Prueba", TotalDays: 6, GeneralDestination: "España"}

	trip, err := planner.GenerateTrip(context.Background(), brief, routeFor(cities, days))

	require.NoError(t, err)
	require.Len(t, trip.DailyItinerary, 6)
	for i, day := range trip.DailyItinerary {
		assert.Equal(t, i+1, day.DayIndex)
	}
	assert.Equal(t, "Madrid", trip.DailyItinerary[0].City)
	assert.Equal(t, "Granada", trip.DailyItinerary[5].City)
	require.NoError(t, ValidateTrip(trip))
}

func TestGenerateTripProposesRoutesWhenNoneSelected(t *testing.T) {
	client := &stubClient{
		jsonScript: []scriptStep{
			{payload: goodRoutesJSON},
			{payload: tripJSONFor([]string{"Madrid", "Toledo"}, []int{3, 2})},
			{payload: goodDayJSON},
		},
	}
	planner := NewPlanner(client, nil, DefaultConfig())
	brief := Brief{TripName: "Prueba", TotalDays: 5, GeneralDestination: "España"}

	trip, err := planner.GenerateTrip(context.Background(), brief, nil)

	require.NoError(t, err)
	// The first proposed route drives generation.
	assert.Equal(t, "Madrid", trip.Destinations[0].City)
	assert.Equal(t, "Toledo", trip.Destinations[1].City)
	require.NoError(t, ValidateTrip(trip))
}
