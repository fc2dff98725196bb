package services

import (
	"fmt"
	"time"

	"hotel_concierge/src/model"
)

// Venue is one bookable outlet of the hotel.
type Venue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Route    string `json:"route"`
	Summary  string `json:"summary"`
	Bookable bool   `json:"bookable"`
}

type intentContent struct {
	route     string
	booking   string
	info      []string
	followUps []string
}

// HotelService serves the static hotel catalog used to enrich replies.
type HotelService struct {
	venues           []Venue
	byIntent         map[model.IntentName]intentContent
	routeContexts    map[string][]string
	routeSuggestions map[string][]string
}

// NewHotelService creates the service with the Braira Al Olaya catalog.
func NewHotelService() *HotelService {
	return &HotelService{
		venues: []Venue{
			{ID: "rooms", Name: "Rooms & Suites", Route: "/rooms", Summary: "179 rooms and suites", Bookable: true},
			{ID: "al_diwan", Name: "Al Diwan Restaurant", Route: "/dining", Summary: "International cuisine"},
			{ID: "majlis", Name: "Majlis Coffee Lounge", Route: "/dining", Summary: "Traditional Arabic coffee"},
			{ID: "spa", Name: "Spa & Wellness", Route: "/spa", Summary: "Treatments from SAR 280", Bookable: true},
			{ID: "ballroom", Name: "Grand Ballroom", Route: "/meetings", Summary: "Up to 300 guests"},
		},
		byIntent: map[model.IntentName]intentContent{
			model.IntentBookRoom: {
				route:   "/rooms",
				booking: "room_booking",
				info:    []string{"179 rooms and suites available", "Rates from SAR 450 per night"},
				followUps: []string{
					"What dates are you looking for?",
					"How many guests will be staying?",
					"Do you have a room type preference?",
				},
			},
			model.IntentDining: {
				route: "/dining",
				info: []string{
					"Al Diwan Restaurant - International cuisine",
					"Majlis Coffee Lounge - Traditional Arabic coffee",
					"24/7 room service available",
				},
				followUps: []string{
					"What type of cuisine interests you?",
					"Are you looking for a specific dining time?",
				},
			},
			model.IntentSpa: {
				route:   "/spa",
				booking: "spa_booking",
				info:    []string{"Full spa and wellness facilities", "Expert therapists available", "Treatments from SAR 280"},
				followUps: []string{
					"What type of treatment interests you?",
					"When would you prefer your appointment?",
				},
			},
			model.IntentMeeting: {
				route: "/meetings",
			},
		},
		routeContexts: map[string][]string{
			"/":         {"home", "overview", "general"},
			"/rooms":    {"rooms", "accommodation", "booking"},
			"/dining":   {"dining", "restaurant", "food"},
			"/spa":      {"spa", "wellness", "treatments"},
			"/meetings": {"meetings", "events", "business"},
			"/offers":   {"offers", "packages", "deals"},
			"/about":    {"about", "information", "hotel"},
			"/contact":  {"contact", "support", "help"},
		},
		routeSuggestions: map[string][]string{
			"/":       {"Show me available rooms", "What dining options do you have?", "Tell me about spa services"},
			"/rooms":  {"Book a deluxe room", "Check room availability", "Compare room prices"},
			"/dining": {"Make a dinner reservation", "Show me the menu", "What are your restaurant hours?"},
			"/spa":    {"Book a massage", "Show spa packages", "What treatments do you offer?"},
		},
	}
}

// Venues lists the catalog outlets, optionally only those under route.
func (hs *HotelService) Venues(route string) []Venue {
	if route == "" {
		return hs.venues
	}
	var results []Venue
	for _, v := range hs.venues {
		if v.Route == route {
			results = append(results, v)
		}
	}
	return results
}

// SuggestedActions returns the UI actions an intent implies. None are
// executed yet.
func (hs *HotelService) SuggestedActions(intent model.IntentName, at time.Time) []model.AgentAction {
	content, ok := hs.byIntent[intent]
	if !ok {
		return []model.AgentAction{}
	}
	actions := []model.AgentAction{{Type: model.ActionNavigate, Target: content.route, Timestamp: at}}
	if content.booking != "" {
		actions = append(actions, model.AgentAction{Type: model.ActionOpenBooking, Target: content.booking, Timestamp: at})
	}
	return actions
}

// ContextualInfo returns facts worth showing next to the reply.
func (hs *HotelService) ContextualInfo(intent model.IntentName, prefs model.UserPreferences) []string {
	info := append([]string{}, hs.byIntent[intent].info...)
	if intent == model.IntentBookRoom && prefs.RoomPreferences.Type != "" {
		info = append(info, fmt.Sprintf("You previously preferred %s rooms", prefs.RoomPreferences.Type))
	}
	return info
}

// FollowUpQuestions returns questions the widget can offer as quick replies.
func (hs *HotelService) FollowUpQuestions(intent model.IntentName) []string {
	return append([]string{}, hs.byIntent[intent].followUps...)
}

// RouteContext returns topic tags for the page the guest is on.
func (hs *HotelService) RouteContext(route string) []string {
	if tags, ok := hs.routeContexts[route]; ok {
		return tags
	}
	return []string{"general"}
}

// RouteSuggestions returns canned prompts for the page, the home page's
// when the route has none.
func (hs *HotelService) RouteSuggestions(route string) []string {
	if s, ok := hs.routeSuggestions[route]; ok {
		return append([]string{}, s...)
	}
	return append([]string{}, hs.routeSuggestions["/"]...)
}
