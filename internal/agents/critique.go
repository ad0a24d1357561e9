package agents

import (
	"context"
	"fmt"
	"strings"

	"rumbo/internal/models/db_models"
	"rumbo/pkg/llm"
	"rumbo/pkg/utils"
)

// CritiqueNode is the single-city planning path: an initial markdown draft,
// one round of targeted feedback, and one fix pass applying only the
// requested changes. The loop is bounded to exactly one critique-fix pass;
// an empty "OK" review skips the fixer.
func CritiqueNode(client llm.Client) Node {
	return Node{
		Name: "critique",
		When: func(s *State) bool { return s.Trip != nil && len(s.Trip.Destinations) == 1 },
		Run: func(ctx context.Context, s *State) error {
			draft, err := client.Chat(ctx, []llm.Message{
				{Role: llm.RoleUser, Content: draftItineraryPrompt(s.Brief, *s.Trip)},
			})
			if err != nil {
				return err
			}
			s.TmpItineraryMarkdown = draft.Content

			review, err := client.Chat(ctx, []llm.Message{
				{Role: llm.RoleUser, Content: feedbackPrompt(s.TmpItineraryMarkdown)},
			})
			if err != nil {
				return err
			}
			s.FeedbackNotes = strings.TrimSpace(review.Content)

			if s.FeedbackNotes == "" || strings.EqualFold(s.FeedbackNotes, "OK") {
				return nil
			}

			fixed, err := client.Chat(ctx, []llm.Message{
				{Role: llm.RoleUser, Content: fixPrompt(s.TmpItineraryMarkdown, s.FeedbackNotes)},
			})
			if err != nil {
				return err
			}
			s.TmpItineraryMarkdown = fixed.Content
			return nil
		},
	}
}

type structuredDaysOutput struct {
	Days []db_models.ItineraryDay `json:"days"`
}

// StructureDaysNode converts the critiqued markdown into the structured
// daily itinerary.
func StructureDaysNode(client llm.Client) Node {
	return Node{
		Name: "structure_days",
		When: func(s *State) bool { return s.Trip != nil && s.TmpItineraryMarkdown != "" },
		Run: func(ctx context.Context, s *State) error {
			messages := []llm.Message{{Role: llm.RoleUser, Content: structureDaysPrompt(*s.Trip, s.TmpItineraryMarkdown)}}

			var out structuredDaysOutput
			if err := client.ChatJSON(ctx, messages, &out); err != nil {
				if err2 := client.ChatJSON(ctx, messages, &out); err2 != nil {
					return fmt.Errorf("%w: structuring daily plan: %v", utils.ErrGeneration, err2)
				}
			}
			if len(out.Days) != s.Trip.TotalDays {
				return fmt.Errorf("%w: structured plan has %d days of %d", utils.ErrGeneration, len(out.Days), s.Trip.TotalDays)
			}

			dest := s.Trip.Destinations[0]
			for i := range out.Days {
				out.Days[i].DayIndex = i + 1
				out.Days[i].City = dest.City
				out.Days[i].Country = dest.Country
			}
			s.Trip.DailyItinerary = out.Days
			return nil
		},
	}
}
