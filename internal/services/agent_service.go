package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"rumbo/internal/agents"
	"rumbo/internal/models/db_models"
	"rumbo/internal/models/request_models"
	"rumbo/internal/models/response_models"
	"rumbo/internal/repositories"
	"rumbo/pkg/llm"
	mem "rumbo/pkg/memcache"
	"rumbo/pkg/utils"
)

const (
	AgentKindDraftEditor      = "draft_editor"
	AgentKindActivitiesEditor = "activities_editor"

	// maxToolRounds bounds the tool loop of a single turn.
	maxToolRounds = 4
)

const (
	toolGetItinerary = "get_itinerary"
	toolUpdateDay    = "update_day"
	toolRegenerate   = "regenerate_trip"
	toolConfirmTrip  = "confirm_itinerary"
)

// StreamEvent is one server-sent event of a streamed agent turn.
type StreamEvent struct {
	Event string
	Data  interface{}
}

type AgentServiceInterface interface {
	SendMessage(ctx context.Context, tripID uuid.UUID, threadID string, req request_models.AgentMessageRequest) (*response_models.AgentStateResponse, error)
	SendMessageStream(ctx context.Context, tripID uuid.UUID, threadID string, req request_models.AgentMessageRequest, emit func(StreamEvent) error) error
	GetState(ctx context.Context, threadID string) (*response_models.AgentStateResponse, error)
}

// AgentService is the conversational itinerary editor. Each trip status maps
// to an agent kind with its own tool surface; edits that rewrite stored trip
// content pause on a human-in-the-loop interrupt until the client resumes.
type AgentService struct {
	store         mem.CheckpointStore
	itineraryRepo repositories.ItineraryRepository
	client        llm.Client
	planner       *agents.Planner
}

func NewAgentService(store mem.CheckpointStore, itineraryRepo repositories.ItineraryRepository, client llm.Client, planner *agents.Planner) AgentServiceInterface {
	return &AgentService{
		store:         store,
		itineraryRepo: itineraryRepo,
		client:        client,
		planner:       planner,
	}
}

func (s *AgentService) SendMessage(ctx context.Context, tripID uuid.UUID, threadID string, req request_models.AgentMessageRequest) (*response_models.AgentStateResponse, error) {
	return s.handle(ctx, tripID, threadID, req, nil)
}

func (s *AgentService) SendMessageStream(ctx context.Context, tripID uuid.UUID, threadID string, req request_models.AgentMessageRequest, emit func(StreamEvent) error) error {
	state, err := s.handle(ctx, tripID, threadID, req, emit)
	if err != nil {
		return err
	}
	return emit(StreamEvent{Event: "done", Data: state})
}

func (s *AgentService) GetState(ctx context.Context, threadID string) (*response_models.AgentStateResponse, error) {
	cp, ok := s.store.Get(threadID)
	if !ok {
		return nil, fmt.Errorf("%w: thread %s", utils.ErrNotFound, threadID)
	}
	return checkpointToState(cp), nil
}

func (s *AgentService) handle(ctx context.Context, tripID uuid.UUID, threadID string, req request_models.AgentMessageRequest, emit func(StreamEvent) error) (*response_models.AgentStateResponse, error) {
	if (req.Message == "") == (req.Resume == nil) {
		return nil, fmt.Errorf("%w: send either a message or a resume payload", utils.ErrValidation)
	}

	release := s.store.Acquire(threadID)
	defer release()

	itinerary, err := s.itineraryRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if itinerary == nil {
		return nil, fmt.Errorf("%w: itinerary %s", utils.ErrNotFound, tripID)
	}

	cp, ok := s.store.Get(threadID)
	if !ok {
		cp = s.newCheckpoint(itinerary, threadID)
	}
	if cp.TripID != tripID.String() {
		return nil, fmt.Errorf("%w: thread %s belongs to another trip", utils.ErrValidation, threadID)
	}

	if req.Resume != nil {
		if cp.Pending == nil {
			return nil, fmt.Errorf("%w: thread %s has no pending interrupt", utils.ErrValidation, threadID)
		}
		if err := s.resume(ctx, itinerary, cp, req.Resume.Messages, emit); err != nil {
			return nil, err
		}
		s.store.Put(threadID, cp)
		return checkpointToState(cp), nil
	}

	if cp.Pending != nil {
		return nil, fmt.Errorf("%w: thread %s awaits a resume", utils.ErrValidation, threadID)
	}

	cp.Messages = append(cp.Messages, llm.Message{Role: llm.RoleUser, Content: req.Message})
	if err := s.toolLoop(ctx, itinerary, cp, emit); err != nil {
		return nil, err
	}

	s.store.Put(threadID, cp)
	return checkpointToState(cp), nil
}

func (s *AgentService) newCheckpoint(itinerary *db_models.Itinerary, threadID string) *mem.Checkpoint {
	kind := AgentKindDraftEditor
	if itinerary.Status == db_models.ItineraryStatusConfirmed {
		kind = AgentKindActivitiesEditor
	}
	return &mem.Checkpoint{
		TripID:    itinerary.ID.String(),
		ThreadID:  threadID,
		AgentKind: kind,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: editorSystemPrompt(kind, itinerary.DetailsItinerary)},
		},
	}
}

// toolLoop runs assistant turns until the model answers without tool calls,
// the round budget runs out, or a tool raises an interrupt.
func (s *AgentService) toolLoop(ctx context.Context, itinerary *db_models.Itinerary, cp *mem.Checkpoint, emit func(StreamEvent) error) error {
	toolSet := editorTools(cp.AgentKind)

	for round := 0; round < maxToolRounds; round++ {
		reply, err := s.client.ChatWithTools(ctx, cp.Messages, toolSet)
		if err != nil {
			return err
		}
		cp.Messages = append(cp.Messages, reply)

		if len(reply.ToolCalls) == 0 {
			streamContent(emit, reply.Content)
			return nil
		}

		for _, call := range reply.ToolCalls {
			if emit != nil {
				if err := emit(StreamEvent{Event: "tool_call", Data: map[string]string{"name": call.Name}}); err != nil {
					return err
				}
			}

			switch call.Name {
			case toolGetItinerary:
				payload, err := json.Marshal(itinerary.DetailsItinerary)
				if err != nil {
					return err
				}
				cp.Messages = append(cp.Messages, toolResult(call, string(payload)))

			case toolConfirmTrip:
				if err := s.itineraryRepo.UpdateStatus(ctx, uuid.MustParse(cp.TripID), db_models.ItineraryStatusConfirmed); err != nil {
					return err
				}
				itinerary.Status = db_models.ItineraryStatusConfirmed
				cp.AgentKind = AgentKindActivitiesEditor
				toolSet = editorTools(cp.AgentKind)
				cp.Messages = append(cp.Messages, toolResult(call, `{"status":"confirmed"}`))

			case toolUpdateDay, toolRegenerate:
				// Destructive edits wait for the human. The prompt the
				// interrupt carries is what the SSE client shows.
				cp.Pending = &mem.PendingAction{
					Prompt:    interruptPrompt(call),
					ToolName:  call.Name,
					Arguments: call.Arguments,
				}
				if emit != nil {
					if err := emit(StreamEvent{Event: "interrupt", Data: map[string]string{"prompt": cp.Pending.Prompt}}); err != nil {
						return err
					}
				}
				return nil

			default:
				cp.Messages = append(cp.Messages, toolResult(call, `{"error":"unknown tool"}`))
			}
		}
	}
	return fmt.Errorf("%w: editor exceeded the tool budget", utils.ErrGeneration)
}

// resume settles a pending interrupt. "si"/"s" applies the held tool call;
// anything else folds the text into the proposal as feedback and raises a
// fresh interrupt with the revised change.
func (s *AgentService) resume(ctx context.Context, itinerary *db_models.Itinerary, cp *mem.Checkpoint, answer string, emit func(StreamEvent) error) error {
	pending := cp.Pending

	if !isConfirmation(answer) {
		cp.Messages = append(cp.Messages, llm.Message{Role: llm.RoleUser, Content: answer})
		revised, err := reviseArguments(pending, answer)
		if err != nil {
			return err
		}
		cp.Pending = &mem.PendingAction{
			Prompt:    revisedPrompt(pending.ToolName, answer),
			ToolName:  pending.ToolName,
			Arguments: revised,
		}
		if emit != nil {
			return emit(StreamEvent{Event: "interrupt", Data: map[string]string{"prompt": cp.Pending.Prompt}})
		}
		return nil
	}

	var summary string
	var err error
	switch pending.ToolName {
	case toolUpdateDay:
		summary, err = s.applyDayUpdate(ctx, itinerary, pending.Arguments)
	case toolRegenerate:
		summary, err = s.applyRegenerate(ctx, itinerary, pending.Arguments)
	default:
		err = fmt.Errorf("%w: pending tool %q cannot be applied", utils.ErrValidation, pending.ToolName)
	}
	if err != nil {
		return err
	}

	cp.Pending = nil
	if id := lastToolCallID(cp.Messages, pending.ToolName); id != "" {
		cp.Messages = append(cp.Messages, llm.Message{
			Role:       llm.RoleTool,
			ToolCallID: id,
			Name:       pending.ToolName,
			Content:    `{"applied":true}`,
		})
	}
	cp.Messages = append(cp.Messages, llm.Message{Role: llm.RoleAssistant, Content: summary})
	streamContent(emit, summary)
	return nil
}

type dayUpdateArgs struct {
	DayIndex     int    `json:"day_index"`
	Instructions string `json:"instructions"`
}

func (s *AgentService) applyDayUpdate(ctx context.Context, itinerary *db_models.Itinerary, rawArgs string) (string, error) {
	var args dayUpdateArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("%w: day update arguments: %v", utils.ErrGeneration, err)
	}

	trip := itinerary.DetailsItinerary
	if args.DayIndex < 1 || args.DayIndex > len(trip.DailyItinerary) {
		return "", fmt.Errorf("%w: day %d is out of range", utils.ErrValidation, args.DayIndex)
	}
	current := trip.DailyItinerary[args.DayIndex-1]

	var day db_models.ItineraryDay
	prompt := rewriteDayPrompt(current, args.Instructions)
	messages := []llm.Message{{Role: llm.RoleUser, Content: prompt}}
	if err := s.client.ChatJSON(ctx, messages, &day); err != nil {
		return "", err
	}
	if len(day.Afternoon) == 0 {
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: "previous draft"},
			llm.Message{Role: llm.RoleUser, Content: "The afternoon block must contain at least one activity. Re-emit the full day JSON."})
		if err := s.client.ChatJSON(ctx, messages, &day); err != nil {
			return "", err
		}
		if len(day.Afternoon) == 0 {
			return "", fmt.Errorf("%w: rewritten day %d has an empty afternoon", utils.ErrGeneration, args.DayIndex)
		}
	}

	day.DayIndex = current.DayIndex
	day.City = current.City
	day.Country = current.Country
	trip.DailyItinerary[args.DayIndex-1] = day

	if err := agents.ValidateTrip(&trip); err != nil {
		return "", err
	}
	if err := s.itineraryRepo.UpdateTrip(ctx, itinerary.ID, trip); err != nil {
		return "", err
	}
	itinerary.DetailsItinerary = trip

	return fmt.Sprintf("Listo, he actualizado el día %d en %s.", args.DayIndex, day.City), nil
}

type regenerateArgs struct {
	Feedback string `json:"feedback"`
}

func (s *AgentService) applyRegenerate(ctx context.Context, itinerary *db_models.Itinerary, rawArgs string) (string, error) {
	var args regenerateArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return "", fmt.Errorf("%w: regenerate arguments: %v", utils.ErrGeneration, err)
	}

	old := itinerary.DetailsItinerary
	brief := agents.Brief{
		TripName:           old.TripName,
		TotalDays:          old.TotalDays,
		GeneralDestination: old.GeneralDestination,
	}
	selected := db_models.Route{
		TripName:           old.TripName,
		TotalDays:          old.TotalDays,
		RouteJustification: old.RouteJustification,
		Destinations:       old.Destinations,
	}

	routes, err := s.planner.ProposeRoutes(ctx, brief, args.Feedback, &selected)
	if err != nil {
		return "", err
	}
	if len(routes) == 0 {
		return "", fmt.Errorf("%w: no revised route produced", utils.ErrGeneration)
	}

	trip, err := s.planner.GenerateTrip(ctx, brief, &routes[0])
	if err != nil {
		return "", err
	}
	if err := s.itineraryRepo.UpdateTrip(ctx, itinerary.ID, *trip); err != nil {
		return "", err
	}
	itinerary.DetailsItinerary = *trip

	return "Listo, he regenerado el itinerario con tus cambios.", nil
}

// reviseArguments merges resume feedback into the held tool arguments so the
// next confirmation applies the adjusted change.
func reviseArguments(pending *mem.PendingAction, feedback string) (string, error) {
	switch pending.ToolName {
	case toolUpdateDay:
		var args dayUpdateArgs
		if err := json.Unmarshal([]byte(pending.Arguments), &args); err != nil {
			return "", fmt.Errorf("%w: day update arguments: %v", utils.ErrGeneration, err)
		}
		args.Instructions = strings.TrimSpace(args.Instructions + "\nAjuste del viajero: " + feedback)
		revised, err := json.Marshal(args)
		return string(revised), err
	case toolRegenerate:
		var args regenerateArgs
		if err := json.Unmarshal([]byte(pending.Arguments), &args); err != nil {
			return "", fmt.Errorf("%w: regenerate arguments: %v", utils.ErrGeneration, err)
		}
		args.Feedback = strings.TrimSpace(args.Feedback + "\nAjuste del viajero: " + feedback)
		revised, err := json.Marshal(args)
		return string(revised), err
	default:
		return "", fmt.Errorf("%w: pending tool %q cannot be revised", utils.ErrValidation, pending.ToolName)
	}
}

func isConfirmation(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "si", "sí", "s":
		return true
	}
	return false
}

func toolResult(call llm.ToolCall, content string) llm.Message {
	return llm.Message{
		Role:       llm.RoleTool,
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    content,
	}
}

func lastToolCallID(messages []llm.Message, name string) string {
	for i := len(messages) - 1; i >= 0; i-- {
		for _, call := range messages[i].ToolCalls {
			if call.Name == name {
				return call.ID
			}
		}
	}
	return ""
}

func interruptPrompt(call llm.ToolCall) string {
	switch call.Name {
	case toolUpdateDay:
		var args dayUpdateArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err == nil && args.DayIndex > 0 {
			return fmt.Sprintf("Voy a reescribir el día %d: %s. ¿Estás de acuerdo? [Si/feedback]", args.DayIndex, args.Instructions)
		}
		return "Voy a reescribir un día del itinerario. ¿Estás de acuerdo? [Si/feedback]"
	case toolRegenerate:
		return "Voy a regenerar el itinerario completo con tus cambios. ¿Estás de acuerdo? [Si/feedback]"
	}
	return "¿Aplico el cambio propuesto? [Si/feedback]"
}

func revisedPrompt(toolName, feedback string) string {
	if toolName == toolRegenerate {
		return fmt.Sprintf("He ajustado la propuesta con tu comentario (%s). ¿Aplico la regeneración? [Si/feedback]", truncateText(feedback, 120))
	}
	return fmt.Sprintf("He ajustado la propuesta con tu comentario (%s). ¿Aplico el cambio? [Si/feedback]", truncateText(feedback, 120))
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// streamContent chunks assistant text into token events so SSE clients render
// incrementally.
func streamContent(emit func(StreamEvent) error, content string) {
	if emit == nil || content == "" {
		return
	}
	const chunk = 48
	for start := 0; start < len(content); start += chunk {
		end := start + chunk
		if end > len(content) {
			end = len(content)
		}
		if err := emit(StreamEvent{Event: "token", Data: content[start:end]}); err != nil {
			return
		}
	}
}

func editorSystemPrompt(kind string, trip db_models.Trip) string {
	var sb strings.Builder
	sb.WriteString("You are a travel itinerary editor. Answer the traveler in their language, in Spanish by default.\n")
	fmt.Fprintf(&sb, "Trip under edit: %s\n", tripLine(trip))

	switch kind {
	case AgentKindDraftEditor:
		sb.WriteString("The trip is a draft. You may inspect it (get_itinerary), rewrite a single day (update_day), regenerate the whole trip from feedback (regenerate_trip) or confirm it (confirm_itinerary).\n")
	default:
		sb.WriteString("The trip is confirmed. You may inspect it (get_itinerary) and rewrite a single day (update_day); the route itself is fixed.\n")
	}
	sb.WriteString("Use update_day for any request that changes a day's activities; pass the traveler's request as instructions. For questions, answer directly.")
	return sb.String()
}

func tripLine(t db_models.Trip) string {
	parts := make([]string, 0, len(t.Destinations))
	for _, d := range t.Destinations {
		parts = append(parts, fmt.Sprintf("%s (%d days)", d.City, d.DaysInDestination))
	}
	return fmt.Sprintf("%s, %d days: %s", t.TripName, t.TotalDays, strings.Join(parts, " -> "))
}

func editorTools(kind string) []llm.Tool {
	tools := []llm.Tool{
		{
			Name:        toolGetItinerary,
			Description: "Return the full structured itinerary as JSON.",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        toolUpdateDay,
			Description: "Rewrite one day of the itinerary following the traveler's instructions. Requires confirmation.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"day_index":    map[string]interface{}{"type": "integer", "description": "1-based day to rewrite"},
					"instructions": map[string]interface{}{"type": "string", "description": "what to change in that day"},
				},
				"required": []string{"day_index", "instructions"},
			},
		},
	}

	if kind == AgentKindDraftEditor {
		tools = append(tools,
			llm.Tool{
				Name:        toolRegenerate,
				Description: "Regenerate the whole trip applying the traveler's feedback. Requires confirmation.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"feedback": map[string]interface{}{"type": "string", "description": "the changes the traveler wants"},
					},
					"required": []string{"feedback"},
				},
			},
			llm.Tool{
				Name:        toolConfirmTrip,
				Description: "Mark the draft itinerary as confirmed.",
				Parameters: map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{},
				},
			})
	}
	return tools
}

func rewriteDayPrompt(day db_models.ItineraryDay, instructions string) string {
	current, _ := json.Marshal(day)
	return fmt.Sprintf(
		"Rewrite this itinerary day applying the instructions. Return JSON only, same shape as the input day.\n"+
			"Rules:\n- afternoon must contain at least one activity.\n- Keep day_index, city and country unchanged.\n\n"+
			"Instructions: %s\n\nCurrent day:\n%s",
		instructions, current)
}

func checkpointToState(cp *mem.Checkpoint) *response_models.AgentStateResponse {
	messages := make([]response_models.AgentMessage, 0, len(cp.Messages))
	for _, m := range cp.Messages {
		if m.Role == llm.RoleSystem || m.Role == llm.RoleTool || m.Content == "" {
			continue
		}
		messages = append(messages, response_models.AgentMessage{Role: m.Role, Content: m.Content})
	}

	state := &response_models.AgentStateResponse{
		TripID:    cp.TripID,
		ThreadID:  cp.ThreadID,
		AgentKind: cp.AgentKind,
		Messages:  messages,
	}
	if cp.Pending != nil {
		state.PendingInterrupt = &response_models.Interrupt{Prompt: cp.Pending.Prompt}
	}
	return state
}
