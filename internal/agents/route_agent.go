package agents

import (
	"context"
	"fmt"
	"strings"

	"rumbo/internal/models/db_models"
	"rumbo/pkg/llm"
	"rumbo/pkg/utils"
)

type routeProposalOutput struct {
	Routes []db_models.Route `json:"routes"`
}

// RouteProposalNode asks for two candidate routes. A proposal that comes back
// short or with a broken day total gets one corrective retry; a second bad
// answer surfaces a generation error.
func RouteProposalNode(client llm.Client) Node {
	return Node{
		Name: "route_proposal",
		Run: func(ctx context.Context, s *State) error {
			prompt := routeProposalPrompt(s.Brief, s.UserFeedback, s.SelectedRoute)
			messages := []llm.Message{{Role: llm.RoleUser, Content: prompt}}

			routes, issue, err := proposeRoutes(ctx, client, messages, s.Brief.TotalDays)
			if err != nil {
				return err
			}
			if issue != "" {
				messages = append(messages,
					llm.Message{Role: llm.RoleUser, Content: "Your previous answer was invalid: " + issue + " Fix it and return the full JSON again."})
				routes, issue, err = proposeRoutes(ctx, client, messages, s.Brief.TotalDays)
				if err != nil {
					return err
				}
				if issue != "" {
					return fmt.Errorf("%w: route proposal: %s", utils.ErrGeneration, issue)
				}
			}

			s.Routes = routes
			return nil
		},
	}
}

func proposeRoutes(ctx context.Context, client llm.Client, messages []llm.Message, totalDays int) ([]db_models.Route, string, error) {
	var out routeProposalOutput
	if err := client.ChatJSON(ctx, messages, &out); err != nil {
		return nil, "", err
	}

	if len(out.Routes) < 2 {
		return nil, fmt.Sprintf("expected 2 routes, got %d.", len(out.Routes)), nil
	}
	for i := range out.Routes {
		r := &out.Routes[i]
		r.TotalDays = totalDays
		normalizeDestinations(r.Destinations)
		if len(r.Destinations) == 0 {
			return nil, fmt.Sprintf("route %d has no destinations.", i+1), nil
		}
		if sum := r.DaysSum(); sum != totalDays {
			return nil, fmt.Sprintf("route %d days sum to %d, must be %d.", i+1, sum, totalDays), nil
		}
	}

	return out.Routes[:2], "", nil
}

func normalizeDestinations(destinations []db_models.Destination) {
	for i := range destinations {
		destinations[i].City = strings.TrimSpace(destinations[i].City)
		destinations[i].CountryCode = strings.ToUpper(strings.TrimSpace(destinations[i].CountryCode))
	}
	// Destinations sharing a country share its code.
	byCountry := make(map[string]string)
	for _, d := range destinations {
		if d.CountryCode != "" && byCountry[d.Country] == "" {
			byCountry[d.Country] = d.CountryCode
		}
	}
	for i := range destinations {
		if code := byCountry[destinations[i].Country]; code != "" {
			destinations[i].CountryCode = code
		}
	}
}
