package db_models

// TransportKind enumerates the allowed inter-destination transport modes.
type TransportKind string

const (
	TransportPlane TransportKind = "Plane"
	TransportTrain TransportKind = "Train"
	TransportCoach TransportKind = "Coach"
	TransportCar   TransportKind = "Car"
	TransportBoat  TransportKind = "Boat"
	TransportOther TransportKind = "Other"
)

func (k TransportKind) Valid() bool {
	switch k {
	case TransportPlane, TransportTrain, TransportCoach, TransportCar, TransportBoat, TransportOther:
		return true
	}
	return false
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Destination is one city where the traveler sleeps for one or more days.
type Destination struct {
	City              string      `json:"city"`
	Country           string      `json:"country"`
	CountryCode       string      `json:"country_code"` // ISO-3166 alpha-2, upper case
	Coordinates       Coordinates `json:"coordinates"`
	DaysInDestination int         `json:"days_in_destination"`
	AccommodationHint string      `json:"accommodation_hint,omitempty"`
	ShortDescription  string      `json:"short_description,omitempty"`
}

// Transport is a single hop between two consecutive destinations.
type Transport struct {
	OriginCity      string          `json:"origin_city"`
	DestinationCity string          `json:"destination_city"`
	TransportKind   TransportKind   `json:"transport_kind"`
	Justification   string          `json:"justification"`
	Alternatives    []TransportKind `json:"alternatives"`
}

type Activity struct {
	Title                string `json:"title"`
	Description          string `json:"description"`
	Hours                string `json:"hours,omitempty"`
	Price                string `json:"price,omitempty"`
	BookingRequirements  string `json:"booking_requirements,omitempty"`
	Link                 string `json:"link,omitempty"`
	Location             string `json:"location,omitempty"`
	RecommendedTransport string `json:"recommended_transport,omitempty"`
}

type ItineraryDay struct {
	DayIndex  int        `json:"day_index"`
	City      string     `json:"city"`
	Country   string     `json:"country"`
	Title     string     `json:"title"`
	Morning   []Activity `json:"morning"`
	Afternoon []Activity `json:"afternoon"`
	Evening   []Activity `json:"evening"`
}

// Trip is the structured artifact the generation pipeline produces. It is
// stored verbatim in the itinerary row and returned to clients unchanged.
type Trip struct {
	RouteChosen        string         `json:"route_chosen"`
	RouteJustification string         `json:"route_justification"`
	TripName           string         `json:"trip_name"`
	TotalDays          int            `json:"total_days"`
	GeneralDestination string         `json:"general_destination"`
	TripSummary        string         `json:"trip_summary"`
	Destinations       []Destination  `json:"destinations"`
	Transports         []Transport    `json:"inter_destination_transports"`
	DailyItinerary     []ItineraryDay `json:"daily_itinerary,omitempty"`
}

// Route is a candidate destination sequence proposed before full generation.
type Route struct {
	TripName           string        `json:"trip_name"`
	TotalDays          int           `json:"total_days"`
	RouteJustification string        `json:"route_justification"`
	Destinations       []Destination `json:"destinations"`
}

// DaysSum returns the total of per-destination day counts.
func (r Route) DaysSum() int {
	sum := 0
	for _, d := range r.Destinations {
		sum += d.DaysInDestination
	}
	return sum
}
