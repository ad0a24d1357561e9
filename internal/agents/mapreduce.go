package agents

import (
	"context"

	"golang.org/x/sync/errgroup"

	"rumbo/internal/models/db_models"
	"rumbo/pkg/llm"
)

// CityMapReduceNode fans out one planner invocation per destination and
// reduces the per-city results back into a single daily itinerary. The
// fan-out has no intra-batch ordering; the reducer restores destination
// order and assigns day indexes contiguously.
func CityMapReduceNode(client llm.Client, maxParallel int) Node {
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return Node{
		Name: "city_map_reduce",
		When: func(s *State) bool { return s.Trip != nil },
		Run: func(ctx context.Context, s *State) error {
			trip := s.Trip
			perCity := make([][]db_models.ItineraryDay, len(trip.Destinations))

			offsets := make([]int, len(trip.Destinations))
			offset := 0
			for i, d := range trip.Destinations {
				offsets[i] = offset
				offset += d.DaysInDestination
			}

			group, groupCtx := errgroup.WithContext(ctx)
			group.SetLimit(maxParallel)

			for i := range trip.Destinations {
				group.Go(func() error {
					dest := trip.Destinations[i]
					days := make([]db_models.ItineraryDay, 0, dest.DaysInDestination)
					for local := 1; local <= dest.DaysInDestination; local++ {
						globalDay := offsets[i] + local
						planned, err := planOneDay(groupCtx, client, s.Brief, *trip, globalDay, dest, s.SearchNotes)
						if err != nil {
							return err
						}
						days = append(days, planned)
					}
					perCity[i] = days
					return nil
				})
			}
			if err := group.Wait(); err != nil {
				return err
			}

			reduced := make([]db_models.ItineraryDay, 0, trip.TotalDays)
			for _, days := range perCity {
				reduced = append(reduced, days...)
			}
			for i := range reduced {
				reduced[i].DayIndex = i + 1
			}
			trip.DailyItinerary = reduced
			return nil
		},
	}
}
