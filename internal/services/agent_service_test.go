package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rumbo/internal/models/db_models"
	"rumbo/internal/models/request_models"
	"rumbo/internal/repositories"
	"rumbo/pkg/llm"
	mem "rumbo/pkg/memcache"
	"rumbo/pkg/utils"
)

type fakeItineraryRepo struct {
	mu          sync.Mutex
	itineraries map[uuid.UUID]*db_models.Itinerary
	tripUpdates int
	embeddings  int
	similar     []repositories.SimilarItinerary
}

func newFakeItineraryRepo() *fakeItineraryRepo {
	return &fakeItineraryRepo{itineraries: make(map[uuid.UUID]*db_models.Itinerary)}
}

func (r *fakeItineraryRepo) Create(ctx context.Context, itinerary *db_models.Itinerary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if itinerary.ID == uuid.Nil {
		itinerary.ID = uuid.New()
	}
	r.itineraries[itinerary.ID] = itinerary
	return nil
}

func (r *fakeItineraryRepo) GetByID(ctx context.Context, id uuid.UUID) (*db_models.Itinerary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	itinerary, ok := r.itineraries[id]
	if !ok {
		return nil, nil
	}
	copied := *itinerary
	return &copied, nil
}

func (r *fakeItineraryRepo) UpdateTrip(ctx context.Context, id uuid.UUID, trip db_models.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	itinerary, ok := r.itineraries[id]
	if !ok {
		return utils.ErrNotFound
	}
	itinerary.DetailsItinerary = trip
	r.tripUpdates++
	return nil
}

func (r *fakeItineraryRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	itinerary, ok := r.itineraries[id]
	if !ok {
		return utils.ErrNotFound
	}
	itinerary.Status = status
	return nil
}

func (r *fakeItineraryRepo) SaveEmbedding(ctx context.Context, itineraryID uuid.UUID, embedding pgvector.Vector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embeddings++
	return nil
}

func (r *fakeItineraryRepo) FindSimilar(ctx context.Context, embedding pgvector.Vector, limit int) ([]repositories.SimilarItinerary, error) {
	if len(r.similar) > limit {
		return r.similar[:limit], nil
	}
	return r.similar, nil
}

// scriptedLLM replays canned tool and JSON replies in order.
type scriptedLLM struct {
	mu          sync.Mutex
	toolReplies []llm.Message
	jsonReplies []string
	toolIdx     int
	jsonIdx     int
}

func (c *scriptedLLM) Chat(ctx context.Context, messages []llm.Message) (llm.Message, error) {
	return llm.Message{Role: llm.RoleAssistant, Content: "ok"}, nil
}

func (c *scriptedLLM) ChatJSON(ctx context.Context, messages []llm.Message, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload := c.jsonReplies[c.jsonIdx%len(c.jsonReplies)]
	c.jsonIdx++
	return json.Unmarshal([]byte(payload), out)
}

func (c *scriptedLLM) ChatWithTools(ctx context.Context, messages []llm.Message, tools []llm.Tool) (llm.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	reply := c.toolReplies[c.toolIdx%len(c.toolReplies)]
	c.toolIdx++
	return reply, nil
}

func (c *scriptedLLM) Close() error { return nil }

func draftItinerary(t *testing.T, repo *fakeItineraryRepo) *db_models.Itinerary {
	t.Helper()
	itinerary := &db_models.Itinerary{
		TripName:   "Lisboa a fondo",
		Status:     db_models.ItineraryStatusDraft,
		Visibility: db_models.VisibilityPrivate,
		DetailsItinerary: db_models.Trip{
			TripName:  "Lisboa a fondo",
			TotalDays: 3,
			Destinations: []db_models.Destination{
				{City: "Lisboa", Country: "Portugal", CountryCode: "PT", DaysInDestination: 3},
			},
			DailyItinerary: []db_models.ItineraryDay{
				{DayIndex: 1, City: "Lisboa", Country: "Portugal", Afternoon: []db_models.Activity{{Title: "Alfama"}}},
				{DayIndex: 2, City: "Lisboa", Country: "Portugal", Afternoon: []db_models.Activity{{Title: "Museo del Azulejo"}}},
				{DayIndex: 3, City: "Lisboa", Country: "Portugal", Afternoon: []db_models.Activity{{Title: "Belém"}}},
			},
		},
	}
	require.NoError(t, repo.Create(context.Background(), itinerary))
	return itinerary
}

func updateDayCall(dayIndex int, instructions string) llm.Message {
	args, _ := json.Marshal(dayUpdateArgs{DayIndex: dayIndex, Instructions: instructions})
	return llm.Message{
		Role: llm.RoleAssistant,
		ToolCalls: []llm.ToolCall{
			{ID: "call-1", Name: toolUpdateDay, Arguments: string(args)},
		},
	}
}

const rewrittenDayJSON = `{"day_index":2,"city":"Lisboa","country":"Portugal","title":"Día 2 de noche","afternoon":[{"title":"Siesta"}],"evening":[{"title":"Fado en la Mouraria"}]}`

func TestEditorRaisesInterruptBeforeRewritingADay(t *testing.T) {
	repo := newFakeItineraryRepo()
	itinerary := draftItinerary(t, repo)
	client := &scriptedLLM{toolReplies: []llm.Message{updateDayCall(2, "pasa las visitas a la noche")}}
	svc := NewAgentService(mem.NewCheckpoints(), repo, client, nil)

	state, err := svc.SendMessage(context.Background(), itinerary.ID, "thread-1", request_models.AgentMessageRequest{
		Message: "cambia el día 2",
	})

	require.NoError(t, err)
	require.NotNil(t, state.PendingInterrupt)
	assert.Contains(t, state.PendingInterrupt.Prompt, "día 2")
	// Nothing is written until the human confirms.
	assert.Zero(t, repo.tripUpdates)
}

func TestEditorAppliesPendingChangeOnConfirmation(t *testing.T) {
	repo := newFakeItineraryRepo()
	itinerary := draftItinerary(t, repo)
	client := &scriptedLLM{
		toolReplies: []llm.Message{updateDayCall(2, "pasa las visitas a la noche")},
		jsonReplies: []string{rewrittenDayJSON},
	}
	svc := NewAgentService(mem.NewCheckpoints(), repo, client, nil)

	_, err := svc.SendMessage(context.Background(), itinerary.ID, "thread-1", request_models.AgentMessageRequest{
		Message: "cambia el día 2",
	})
	require.NoError(t, err)

	state, err := svc.SendMessage(context.Background(), itinerary.ID, "thread-1", request_models.AgentMessageRequest{
		Resume: &request_models.ResumePayload{Messages: "Si"},
	})

	require.NoError(t, err)
	assert.Nil(t, state.PendingInterrupt)
	assert.Equal(t, 1, repo.tripUpdates)

	stored, err := repo.GetByID(context.Background(), itinerary.ID)
	require.NoError(t, err)
	day := stored.DetailsItinerary.DailyItinerary[1]
	assert.Equal(t, 2, day.DayIndex)
	assert.Equal(t, "Lisboa", day.City)
	require.NotEmpty(t, day.Evening)
	assert.Equal(t, "Fado en la Mouraria", day.Evening[0].Title)
}

func TestEditorFoldsFeedbackIntoANewInterrupt(t *testing.T) {
	repo := newFakeItineraryRepo()
	itinerary := draftItinerary(t, repo)
	client := &scriptedLLM{toolReplies: []llm.Message{updateDayCall(2, "pasa las visitas a la noche")}}
	store := mem.NewCheckpoints()
	svc := NewAgentService(store, repo, client, nil)

	_, err := svc.SendMessage(context.Background(), itinerary.ID, "thread-1", request_models.AgentMessageRequest{
		Message: "cambia el día 2",
	})
	require.NoError(t, err)

	state, err := svc.SendMessage(context.Background(), itinerary.ID, "thread-1", request_models.AgentMessageRequest{
		Resume: &request_models.ResumePayload{Messages: "mejor solo la tarde"},
	})

	require.NoError(t, err)
	require.NotNil(t, state.PendingInterrupt)
	assert.Zero(t, repo.tripUpdates)

	cp, ok := store.Get("thread-1")
	require.True(t, ok)
	require.NotNil(t, cp.Pending)
	assert.Contains(t, cp.Pending.Arguments, "mejor solo la tarde")
}

func TestEditorRejectsPlainMessageWhilePending(t *testing.T) {
	repo := newFakeItineraryRepo()
	itinerary := draftItinerary(t, repo)
	client := &scriptedLLM{toolReplies: []llm.Message{updateDayCall(2, "algo")}}
	svc := NewAgentService(mem.NewCheckpoints(), repo, client, nil)

	_, err := svc.SendMessage(context.Background(), itinerary.ID, "thread-1", request_models.AgentMessageRequest{
		Message: "cambia el día 2",
	})
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), itinerary.ID, "thread-1", request_models.AgentMessageRequest{
		Message: "¿sigues ahí?",
	})

	require.ErrorIs(t, err, utils.ErrValidation)
}

func TestEditorAnswersDirectlyWithoutTools(t *testing.T) {
	repo := newFakeItineraryRepo()
	itinerary := draftItinerary(t, repo)
	client := &scriptedLLM{toolReplies: []llm.Message{
		{Role: llm.RoleAssistant, Content: "El día 2 visita el Museo del Azulejo."},
	}}
	svc := NewAgentService(mem.NewCheckpoints(), repo, client, nil)

	state, err := svc.SendMessage(context.Background(), itinerary.ID, "thread-1", request_models.AgentMessageRequest{
		Message: "¿qué hago el día 2?",
	})

	require.NoError(t, err)
	assert.Nil(t, state.PendingInterrupt)
	require.NotEmpty(t, state.Messages)
	assert.Equal(t, "El día 2 visita el Museo del Azulejo.", state.Messages[len(state.Messages)-1].Content)
}

func TestEditorKindFollowsTripStatus(t *testing.T) {
	repo := newFakeItineraryRepo()
	itinerary := draftItinerary(t, repo)
	require.NoError(t, repo.UpdateStatus(context.Background(), itinerary.ID, db_models.ItineraryStatusConfirmed))

	client := &scriptedLLM{toolReplies: []llm.Message{
		{Role: llm.RoleAssistant, Content: "hola"},
	}}
	svc := NewAgentService(mem.NewCheckpoints(), repo, client, nil)

	state, err := svc.SendMessage(context.Background(), itinerary.ID, "thread-1", request_models.AgentMessageRequest{
		Message: "hola",
	})

	require.NoError(t, err)
	assert.Equal(t, AgentKindActivitiesEditor, state.AgentKind)
}

func TestGetStateUnknownThread(t *testing.T) {
	svc := NewAgentService(mem.NewCheckpoints(), newFakeItineraryRepo(), &scriptedLLM{}, nil)

	_, err := svc.GetState(context.Background(), "missing")

	require.ErrorIs(t, err, utils.ErrNotFound)
}

func TestStreamEmitsInterruptAndDone(t *testing.T) {
	repo := newFakeItineraryRepo()
	itinerary := draftItinerary(t, repo)
	client := &scriptedLLM{toolReplies: []llm.Message{updateDayCall(2, "pasa las visitas a la noche")}}
	svc := NewAgentService(mem.NewCheckpoints(), repo, client, nil)

	var events []string
	err := svc.SendMessageStream(context.Background(), itinerary.ID, "thread-1", request_models.AgentMessageRequest{
		Message: "cambia el día 2",
	}, func(ev StreamEvent) error {
		events = append(events, ev.Event)
		return nil
	})

	require.NoError(t, err)
	assert.Contains(t, events, "tool_call")
	assert.Contains(t, events, "interrupt")
	assert.Equal(t, "done", events[len(events)-1])
}
