package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"rumbo/internal/models/db_models"
	"rumbo/pkg/llm"
	"rumbo/pkg/tools"
	"rumbo/pkg/utils"
)

var webSearchTool = llm.Tool{
	Name:        "web_search",
	Description: "Search the web for up-to-date travel information: sights, opening hours, events, restaurants.",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The search query",
			},
		},
		"required": []string{"query"},
	},
}

type webSearchArgs struct {
	Query string `json:"query"`
}

// SearchPlanNode lets the model request web lookups for the daily pass, caps
// them at 2*total_days+2, dispatches the batch in parallel and folds the
// results into the state for the generator.
func SearchPlanNode(client llm.Client, searcher tools.WebSearcher) Node {
	return Node{
		Name: "search_plan",
		When: func(s *State) bool { return s.Trip != nil },
		Run: func(ctx context.Context, s *State) error {
			budget := 2*s.Trip.TotalDays + 2

			planMsg := llm.Message{Role: llm.RoleUser, Content: searchPlanPrompt(*s.Trip, budget)}
			s.Messages = append(s.Messages, planMsg)

			reply, err := client.ChatWithTools(ctx, s.Messages, []llm.Tool{webSearchTool})
			if err != nil {
				return err
			}
			s.Messages = append(s.Messages, reply)

			calls := reply.ToolCalls
			if len(calls) > budget {
				calls = calls[:budget]
			}

			results := make([][]tools.SearchResult, len(calls))
			var wg sync.WaitGroup
			for i, call := range calls {
				var args webSearchArgs
				if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil || args.Query == "" {
					continue
				}
				wg.Add(1)
				go func(i int, query string) {
					defer wg.Done()
					found, err := searcher.Search(ctx, query, "travel", 3)
					if err != nil {
						// A failed lookup costs context, not the pipeline.
						return
					}
					results[i] = found
				}(i, args.Query)
			}
			wg.Wait()

			for i, call := range calls {
				payload, _ := json.Marshal(results[i])
				s.Messages = append(s.Messages, llm.Message{
					Role:       llm.RoleTool,
					ToolCallID: call.ID,
					Name:       call.Name,
					Content:    string(payload),
				})
				s.SearchNotes = append(s.SearchNotes, results[i]...)
			}
			return nil
		},
	}
}

// DailyPlannerNode writes one structured day at a time over the whole trip.
func DailyPlannerNode(client llm.Client) Node {
	return Node{
		Name: "daily_planner",
		When: func(s *State) bool { return s.Trip != nil },
		Run: func(ctx context.Context, s *State) error {
			trip := s.Trip
			days := make([]db_models.ItineraryDay, 0, trip.TotalDays)

			for day := 1; day <= trip.TotalDays; day++ {
				dest := destinationForDay(trip.Destinations, day)
				planned, err := planOneDay(ctx, client, s.Brief, *trip, day, dest, s.SearchNotes)
				if err != nil {
					return err
				}
				days = append(days, planned)
			}

			trip.DailyItinerary = days
			return nil
		},
	}
}

func planOneDay(ctx context.Context, client llm.Client, b Brief, trip db_models.Trip, day int, dest db_models.Destination, notes []tools.SearchResult) (db_models.ItineraryDay, error) {
	prompt := dailyPlanPrompt(b, trip, day, dest.City, dest.Country, notes)
	messages := []llm.Message{{Role: llm.RoleUser, Content: prompt}}

	var out db_models.ItineraryDay
	err := client.ChatJSON(ctx, messages, &out)
	if err == nil && len(out.Afternoon) == 0 {
		err = fmt.Errorf("%w: day %d has an empty afternoon", utils.ErrGeneration, day)
	}
	if err != nil {
		// One retry covers both schema failures and empty afternoons.
		out = db_models.ItineraryDay{}
		if err2 := client.ChatJSON(ctx, messages, &out); err2 != nil {
			return db_models.ItineraryDay{}, fmt.Errorf("%w: day %d: %v", utils.ErrGeneration, day, err2)
		}
		if len(out.Afternoon) == 0 {
			return db_models.ItineraryDay{}, fmt.Errorf("%w: day %d has an empty afternoon after retry", utils.ErrGeneration, day)
		}
	}

	out.DayIndex = day
	out.City = dest.City
	out.Country = dest.Country
	return out, nil
}

// destinationForDay maps a 1-based trip day onto the destination the
// traveler sleeps in that night.
func destinationForDay(destinations []db_models.Destination, day int) db_models.Destination {
	remaining := day
	for _, d := range destinations {
		if remaining <= d.DaysInDestination {
			return d
		}
		remaining -= d.DaysInDestination
	}
	return destinations[len(destinations)-1]
}
