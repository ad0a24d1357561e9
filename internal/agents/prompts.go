package agents

import (
	"fmt"
	"strings"

	"rumbo/internal/models/db_models"
	"rumbo/pkg/tools"
)

func preferencesBlock(p *db_models.Preferences) string {
	if p == nil {
		return "No stored preferences; assume a balanced pace and mid-range budget."
	}
	styles := make([]string, 0, len(p.TravelStyles))
	for _, s := range p.TravelStyles {
		styles = append(styles, string(s))
	}
	foods := make([]string, 0, len(p.FoodPreferences))
	for _, f := range p.FoodPreferences {
		foods = append(foods, string(f))
	}
	return fmt.Sprintf(
		"Budget: %s. Pace: %s. Sightseeing style: %s. Travel styles: %s. Food: %s.",
		p.Budget, p.TravelPace, p.CityView,
		strings.Join(styles, ", "), strings.Join(foods, ", "))
}

func paceGuidance(p *db_models.Preferences) string {
	if p == nil {
		return "Balance the number of destinations against the total days."
	}
	switch p.TravelPace {
	case db_models.PaceRelax:
		return "Relaxed pace: favor fewer destinations with at least 2 days in each."
	case db_models.PaceActive:
		return "Active pace: 1-day stops are acceptable; cover more ground."
	default:
		return "Balanced pace: mix longer stays with the occasional short stop."
	}
}

func routeProposalPrompt(b Brief, feedback string, selected *db_models.Route) string {
	var sb strings.Builder

	sb.WriteString("You are a travel route planner. Return JSON only, matching exactly:\n")
	sb.WriteString(`{"routes":[{"trip_name":"...","total_days":N,"route_justification":"...","destinations":[{"city":"...","country":"...","country_code":"XX","coordinates":{"lat":0,"lon":0},"days_in_destination":N,"short_description":"..."}]}]}` + "\n\n")

	fmt.Fprintf(&sb, "General destination: %s. Total days: %d.\n", b.GeneralDestination, b.TotalDays)
	if b.TripGoal != "" {
		fmt.Fprintf(&sb, "Trip goal: %s.\n", b.TripGoal)
	}
	if b.TripSeason != "" {
		fmt.Fprintf(&sb, "Season: %s.\n", b.TripSeason)
	}
	sb.WriteString(preferencesBlock(b.Preferences) + "\n")
	sb.WriteString(paceGuidance(b.Preferences) + "\n\n")

	if feedback != "" && selected != nil {
		sb.WriteString("The traveler picked this route and asked for changes. Both routes you return must be modifications of it, applying the feedback; do not propose unrelated routes.\n")
		fmt.Fprintf(&sb, "Selected route: %s\n", routeSummary(*selected))
		fmt.Fprintf(&sb, "Feedback: %s\n\n", feedback)
	} else {
		sb.WriteString("Propose two materially different routes: different destination sets or a different order.\n\n")
	}

	fmt.Fprintf(&sb, "Hard constraints:\n- Exactly 2 routes.\n- days_in_destination of each route sums to exactly %d.\n- country_code is upper-case ISO-3166 alpha-2.\nJSON only, no markdown.", b.TotalDays)

	return sb.String()
}

func routeSummary(r db_models.Route) string {
	parts := make([]string, 0, len(r.Destinations))
	for _, d := range r.Destinations {
		parts = append(parts, fmt.Sprintf("%s (%s, %d days)", d.City, d.Country, d.DaysInDestination))
	}
	return fmt.Sprintf("%s: %s", r.TripName, strings.Join(parts, " -> "))
}

func tripGeneratorPrompt(b Brief, route db_models.Route) string {
	var sb strings.Builder

	sb.WriteString("You are a travel itinerary writer. Return JSON only, matching exactly:\n")
	sb.WriteString(`{"route_chosen":"...","route_justification":"...","trip_name":"...","total_days":N,"general_destination":"...","trip_summary":"...","destinations":[{"city":"...","country":"...","country_code":"XX","coordinates":{"lat":0,"lon":0},"days_in_destination":N,"accommodation_hint":"..."}],"inter_destination_transports":[{"origin_city":"...","destination_city":"...","transport_kind":"Plane|Train|Coach|Car|Boat|Other","justification":"...","alternatives":["Train","Coach"]}]}` + "\n\n")

	fmt.Fprintf(&sb, "Chosen route: %s\n", routeSummary(route))
	sb.WriteString(preferencesBlock(b.Preferences) + "\n\n")

	sb.WriteString("Hard constraints:\n")
	sb.WriteString("- Keep the destinations and their order exactly as in the chosen route.\n")
	fmt.Fprintf(&sb, "- Exactly %d transports: one hop between each pair of consecutive destinations, origin_city and destination_city matching the route cities verbatim.\n", maxInt(0, len(route.Destinations)-1))
	sb.WriteString("- Destinations in the same country share the same upper-case country_code.\n")
	sb.WriteString("JSON only, no markdown.")

	return sb.String()
}

func searchPlanPrompt(trip db_models.Trip, budget int) string {
	var sb strings.Builder
	sb.WriteString("You plan web research for a day-by-day itinerary. Call the web_search tool for the lookups worth doing: top sights, opening hours, seasonal events, food spots per destination.\n")
	fmt.Fprintf(&sb, "Trip: %s\n", tripSummaryLine(trip))
	fmt.Fprintf(&sb, "You may issue at most %d searches in this single turn; dispatch them all at once.", budget)
	return sb.String()
}

func dailyPlanPrompt(b Brief, trip db_models.Trip, day int, city, country string, notes []tools.SearchResult) string {
	var sb strings.Builder

	sb.WriteString("You write one day of a travel itinerary. Return JSON only, matching exactly:\n")
	sb.WriteString(`{"day_index":N,"city":"...","country":"...","title":"...","morning":[{"title":"...","description":"...","hours":"...","price":"...","booking_requirements":"...","link":"...","location":"...","recommended_transport":"..."}],"afternoon":[...],"evening":[...]}` + "\n\n")

	fmt.Fprintf(&sb, "Trip: %s\nDay %d of %d, in %s, %s.\n", tripSummaryLine(trip), day, trip.TotalDays, city, country)
	sb.WriteString(preferencesBlock(b.Preferences) + "\n")

	sb.WriteString("Rules:\n- afternoon must contain at least one activity; morning and evening may be empty.\n")
	if day == 1 {
		sb.WriteString("- This is the arrival day: keep the morning light or empty.\n")
	}
	if day == trip.TotalDays {
		sb.WriteString("- This is the departure day: keep the evening light or empty.\n")
	}

	if len(notes) > 0 {
		sb.WriteString("\nResearch notes (use what is relevant):\n")
		for _, n := range notes {
			fmt.Fprintf(&sb, "- %s: %s (%s)\n", n.Title, truncate(n.Content, 280), n.URL)
		}
	}

	sb.WriteString("\nJSON only, no markdown.")
	return sb.String()
}

func draftItineraryPrompt(b Brief, trip db_models.Trip) string {
	return fmt.Sprintf(
		"Write a complete day-by-day markdown itinerary for this trip.\n%s\n%s\nUse one '## Day N' heading per day with morning, afternoon and evening sections.",
		tripSummaryLine(trip), preferencesBlock(b.Preferences))
}

func feedbackPrompt(markdown string) string {
	return fmt.Sprintf(
		"Review the itinerary below. Reply with short, targeted change requests only; omit anything that is already good. If nothing needs changing, reply with exactly OK.\n\n%s",
		markdown)
}

func fixPrompt(markdown, feedback string) string {
	return fmt.Sprintf(
		"Apply only the requested changes to the itinerary below and re-emit it in the same markdown format, preserving all other content verbatim.\n\nRequested changes:\n%s\n\nItinerary:\n%s",
		feedback, markdown)
}

func structureDaysPrompt(trip db_models.Trip, markdown string) string {
	return fmt.Sprintf(
		"Convert this markdown itinerary into JSON only, matching exactly:\n"+
			`{"days":[{"day_index":N,"city":"...","country":"...","title":"...","morning":[...],"afternoon":[...],"evening":[...]}]}`+
			"\nEach activity: {\"title\",\"description\",\"hours\",\"price\",\"booking_requirements\",\"link\",\"location\",\"recommended_transport\"}."+
			"\nExactly %d days, day_index 1..%d. afternoon never empty.\n\n%s",
		trip.TotalDays, trip.TotalDays, markdown)
}

func tripSummaryLine(t db_models.Trip) string {
	parts := make([]string, 0, len(t.Destinations))
	for _, d := range t.Destinations {
		parts = append(parts, fmt.Sprintf("%s (%d days)", d.City, d.DaysInDestination))
	}
	return fmt.Sprintf("%s, %d days: %s", t.TripName, t.TotalDays, strings.Join(parts, " -> "))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
