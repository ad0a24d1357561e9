package db_models

type Budget string

const (
	BudgetEconomic Budget = "económico"
	BudgetMid      Budget = "intermedio"
	BudgetComfort  Budget = "confort"
)

func (b Budget) Valid() bool {
	switch b {
	case BudgetEconomic, BudgetMid, BudgetComfort:
		return true
	}
	return false
}

type TravelPace string

const (
	PaceRelax    TravelPace = "relax"
	PaceBalanced TravelPace = "equilibrado"
	PaceActive   TravelPace = "activo"
)

func (p TravelPace) Valid() bool {
	switch p {
	case PaceRelax, PaceBalanced, PaceActive:
		return true
	}
	return false
}

type CityView string

const (
	ViewTouristy  CityView = "touristy"
	ViewLocal     CityView = "local"
	ViewOffBeaten CityView = "off_beaten"
)

func (v CityView) Valid() bool {
	switch v {
	case ViewTouristy, ViewLocal, ViewOffBeaten:
		return true
	}
	return false
}

type TravelStyle string

const (
	StyleCultural    TravelStyle = "cultural"
	StyleRelaxing    TravelStyle = "relaxing"
	StyleAdventurous TravelStyle = "adventurous"
	StyleRomantic    TravelStyle = "romantic"
	StyleAdrenaline  TravelStyle = "adrenaline"
	StyleGastronomic TravelStyle = "gastronomic"
	StyleFestive     TravelStyle = "festive"
)

func (s TravelStyle) Valid() bool {
	switch s {
	case StyleCultural, StyleRelaxing, StyleAdventurous, StyleRomantic,
		StyleAdrenaline, StyleGastronomic, StyleFestive:
		return true
	}
	return false
}

type FoodPreference string

const (
	FoodFineDining FoodPreference = "fine_dining"
	FoodStreetFood FoodPreference = "street_food"
	FoodVegetarian FoodPreference = "vegetarian"
	FoodLocal      FoodPreference = "local_cuisine"
	FoodSeafood    FoodPreference = "seafood"
)

// Preferences is the closed planning-preference schema carried by every
// traveler type and copied onto the account on test completion.
type Preferences struct {
	Budget          Budget           `json:"budget"`
	TravelPace      TravelPace       `json:"travel_pace"`
	CityView        CityView         `json:"city_view"`
	TravelStyles    []TravelStyle    `json:"travel_styles"`
	FoodPreferences []FoodPreference `json:"food_preferences"`
}

func (p Preferences) Valid() bool {
	if !p.Budget.Valid() || !p.TravelPace.Valid() || !p.CityView.Valid() {
		return false
	}
	for _, s := range p.TravelStyles {
		if !s.Valid() {
			return false
		}
	}
	return true
}

type TravelerType struct {
	BaseModel
	Name        string `gorm:"uniqueIndex"`
	Description string
	Preferences Preferences `gorm:"serializer:json"`
}
