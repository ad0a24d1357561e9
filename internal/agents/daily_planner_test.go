package agents

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rumbo/internal/models/db_models"
	"rumbo/pkg/llm"
	"rumbo/pkg/tools"
	"rumbo/pkg/utils"
)

type countingSearcher struct {
	mu      sync.Mutex
	queries []string
	err     error
}

func (s *countingSearcher) Search(ctx context.Context, query, topic string, maxResults int) ([]tools.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return []tools.SearchResult{{URL: "https://example.com", Title: query, Content: "notes for " + query}}, nil
}

func searchReply(n int) llm.Message {
	calls := make([]llm.ToolCall, 0, n)
	for i := 0; i < n; i++ {
		calls = append(calls, llm.ToolCall{
			ID:        fmt.Sprintf("call-%d", i),
			Name:      "web_search",
			Arguments: fmt.Sprintf(`{"query":"lookup %d"}`, i),
		})
	}
	return llm.Message{Role: llm.RoleAssistant, ToolCalls: calls}
}

func TestSearchPlanClampsCallsToBudget(t *testing.T) {
	trip := threeCityTrip()
	trip.TotalDays = 2
	trip.Destinations = trip.Destinations[:2]
	trip.Destinations[0].DaysInDestination = 1
	trip.Destinations[1].DaysInDestination = 1

	// Budget for 2 days is 2*2+2 = 6; the model asks for 9.
	client := &stubClient{toolScript: []toolStep{{message: searchReply(9)}}}
	searcher := &countingSearcher{}
	state := &State{Trip: &trip}

	err := NewGraph(SearchPlanNode(client, searcher)).Run(context.Background(), state)

	require.NoError(t, err)
	assert.Len(t, searcher.queries, 6)
	assert.Len(t, state.SearchNotes, 6)
}

func TestSearchPlanToleratesFailedLookups(t *testing.T) {
	trip := threeCityTrip()
	client := &stubClient{toolScript: []toolStep{{message: searchReply(3)}}}
	searcher := &countingSearcher{err: fmt.Errorf("%w: search down", utils.ErrTransient)}
	state := &State{Trip: &trip}

	err := NewGraph(SearchPlanNode(client, searcher)).Run(context.Background(), state)

	require.NoError(t, err)
	assert.Empty(t, state.SearchNotes)
	// Every tool call still gets a tool message back.
	toolMsgs := 0
	for _, m := range state.Messages {
		if m.Role == llm.RoleTool {
			toolMsgs++
		}
	}
	assert.Equal(t, 3, toolMsgs)
}

const goodDayJSON = `{"title":"Día completo","morning":[{"title":"Paseo"}],"afternoon":[{"title":"Museo"}],"evening":[{"title":"Cena"}]}`
const emptyAfternoonJSON = `{"title":"Día flojo","afternoon":[]}`

func TestDailyPlannerFillsEveryDay(t *testing.T) {
	trip := threeCityTrip()
	client := &stubClient{jsonScript: []scriptStep{{payload: goodDayJSON}}}
	state := &State{Trip: &trip}

	err := NewGraph(DailyPlannerNode(client)).Run(context.Background(), state)

	require.NoError(t, err)
	require.Len(t, trip.DailyItinerary, 7)
	assert.Equal(t, 7, client.jsonCalls)

	// Day fields are pinned from the route, not trusted from the model.
	assert.Equal(t, 1, trip.DailyItinerary[0].DayIndex)
	assert.Equal(t, "Buenos Aires", trip.DailyItinerary[0].City)
	assert.Equal(t, "Mendoza", trip.DailyItinerary[2].City)
	assert.Equal(t, "Bariloche", trip.DailyItinerary[6].City)
}

func TestPlanOneDayRetriesEmptyAfternoonOnce(t *testing.T) {
	client := &stubClient{jsonScript: []scriptStep{{payload: emptyAfternoonJSON}, {payload: goodDayJSON}}}
	trip := threeCityTrip()

	day, err := planOneDay(context.Background(), client, Brief{}, trip, 3, trip.Destinations[1], nil)

	require.NoError(t, err)
	assert.Equal(t, 2, client.jsonCalls)
	assert.Equal(t, 3, day.DayIndex)
	assert.NotEmpty(t, day.Afternoon)
}

func TestPlanOneDayFailsWhenAfternoonStaysEmpty(t *testing.T) {
	client := &stubClient{jsonScript: []scriptStep{{payload: emptyAfternoonJSON}}}
	trip := threeCityTrip()

	_, err := planOneDay(context.Background(), client, Brief{}, trip, 1, trip.Destinations[0], nil)

	require.ErrorIs(t, err, utils.ErrGeneration)
	assert.Equal(t, 2, client.jsonCalls)
}

func TestDestinationForDay(t *testing.T) {
	destinations := threeCityTrip().Destinations

	assert.Equal(t, "Buenos Aires", destinationForDay(destinations, 1).City)
	assert.Equal(t, "Buenos Aires", destinationForDay(destinations, 2).City)
	assert.Equal(t, "Mendoza", destinationForDay(destinations, 3).City)
	assert.Equal(t, "Mendoza", destinationForDay(destinations, 4).City)
	assert.Equal(t, "Bariloche", destinationForDay(destinations, 5).City)
	assert.Equal(t, "Bariloche", destinationForDay(destinations, 7).City)
}

func TestCityMapReduceAssignsContiguousDayIndexes(t *testing.T) {
	trip := db_models.Trip{
		TotalDays: 5,
		Destinations: []db_models.Destination{
			{City: "Roma", Country: "Italia", CountryCode: "IT", DaysInDestination: 2},
			{City: "Florencia", Country: "Italia", CountryCode: "IT", DaysInDestination: 1},
			{City: "Venecia", Country: "Italia", CountryCode: "IT", DaysInDestination: 2},
		},
	}
	client := &stubClient{jsonScript: []scriptStep{{payload: goodDayJSON}}}
	state := &State{Trip: &trip}

	err := NewGraph(CityMapReduceNode(client, 2)).Run(context.Background(), state)

	require.NoError(t, err)
	require.Len(t, trip.DailyItinerary, 5)
	for i, day := range trip.DailyItinerary {
		assert.Equal(t, i+1, day.DayIndex)
	}
	assert.Equal(t, "Roma", trip.DailyItinerary[0].City)
	assert.Equal(t, "Roma", trip.DailyItinerary[1].City)
	assert.Equal(t, "Florencia", trip.DailyItinerary[2].City)
	assert.Equal(t, "Venecia", trip.DailyItinerary[3].City)
	assert.Equal(t, "Venecia", trip.DailyItinerary[4].City)
}
