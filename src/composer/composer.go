// Package composer turns an intent or a booking step into the reply text:
// a localized template, an occasional greeting, an optional upsell, all
// held to the sentence limit.
package composer

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"

	"hotel_concierge/internal/policy"
	"hotel_concierge/src/booking"
	"hotel_concierge/src/i18n"
	"hotel_concierge/src/logger"
	"hotel_concierge/src/model"

	"github.com/rs/zerolog"
)

const (
	DefaultGreetingRate  = 0.3
	DefaultSentenceLimit = 2

	KeyTechnicalDifficulty = "technical_difficulty"
	KeyWelcomeBack         = "welcome_back"
)

// intentTemplates maps an intent to its base template key.
var intentTemplates = map[model.IntentName]string{
	model.IntentBookRoom:    booking.KeyStart,
	model.IntentDining:      "dining_info",
	model.IntentSpa:         "spa_info",
	model.IntentMeeting:     "meeting_info",
	model.IntentService:     "service_info",
	model.IntentInformation: "information_info",
	model.IntentComplaint:   "complaint_response",
	model.IntentGeneral:     "general_help",
}

// TemplateKey returns the base template for intent, general_help when the
// intent has none.
func TemplateKey(intent model.IntentName) string {
	if key, ok := intentTemplates[intent]; ok {
		return key
	}
	return "general_help"
}

// Upseller picks the locale key of a follow-up suggestion, "" for none.
type Upseller interface {
	Suggest(ctx context.Context, in policy.UpsellInput) (string, error)
}

// Request carries what a reply depends on besides the template itself.
type Request struct {
	Intent         model.Intent
	Preferences    model.UserPreferences
	Language       model.Language
	RoomBooked     bool
	SpaInquired    bool
	DiningInquired bool
}

// Composer renders localized replies from templates, greetings and upsells.
type Composer struct {
	catalog      *i18n.Catalog
	upsell       Upseller
	random       func() float64
	greetingRate float64
	limit        int
	log          zerolog.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithUpseller enables follow-up suggestions.
func WithUpseller(u Upseller) Option {
	return func(c *Composer) { c.upsell = u }
}

// WithRandom replaces the greeting coin, which must return values in [0,1).
func WithRandom(random func() float64) Option {
	return func(c *Composer) { c.random = random }
}

func WithGreetingRate(rate float64) Option {
	return func(c *Composer) {
		if rate >= 0 && rate <= 1 {
			c.greetingRate = rate
		}
	}
}

func WithSentenceLimit(limit int) Option {
	return func(c *Composer) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Composer) { c.log = l }
}

// New builds a composer over catalog, the embedded one when nil.
func New(catalog *i18n.Catalog, opts ...Option) *Composer {
	if catalog == nil {
		catalog = i18n.DefaultCatalog()
	}
	c := &Composer{
		catalog:      catalog,
		random:       rand.Float64,
		greetingRate: DefaultGreetingRate,
		limit:        DefaultSentenceLimit,
		log:          logger.Component("composer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Composer) Catalog() *i18n.Catalog { return c.catalog }

// Compose builds the reply for a classified utterance outside a booking.
func (c *Composer) Compose(ctx context.Context, req Request) string {
	base := c.catalog.Text(TemplateKey(req.Intent.Primary), req.Language)
	return c.assemble(base, c.greeting(req), c.suggestion(ctx, req))
}

// ComposeBooking renders a booking machine reply. Step prompts get no
// extras. A confirmed booking may carry the upsell.
func (c *Composer) ComposeBooking(ctx context.Context, reply booking.Reply, req Request) string {
	base := c.catalog.Render(reply.Key, req.Language, reply.Params)
	if reply.Key != booking.KeyConfirmed {
		return Cap(base, c.limit)
	}
	req.RoomBooked = true
	return c.assemble(base, "", c.suggestion(ctx, req))
}

// Fallback is the localized reply used when a turn fails.
func (c *Composer) Fallback(lang model.Language) string {
	return Cap(c.catalog.Text(KeyTechnicalDifficulty, lang), c.limit)
}

// Text renders any catalog key without extras or the sentence cap.
func (c *Composer) Text(key string, lang model.Language, params map[string]string) string {
	return c.catalog.Render(key, lang, params)
}

// MemorySummary answers "what do you remember". It is exempt from the cap.
func (c *Composer) MemorySummary(stats model.MemoryStats, lang model.Language) string {
	parts := []string{c.catalog.Render("memory_summary_count", lang, map[string]string{
		"count": strconv.Itoa(stats.TotalInteractions),
	})}
	if stats.Name != "" {
		parts = append(parts, c.catalog.Render("memory_summary_name", lang, map[string]string{"name": stats.Name}))
	}
	if stats.RoomType != "" {
		parts = append(parts, c.catalog.Render("memory_summary_room", lang, map[string]string{"roomType": stats.RoomType}))
	}
	if len(stats.FrequentRequests) > 0 {
		parts = append(parts, c.catalog.Render("memory_summary_requests", lang, map[string]string{
			"requests": strings.Join(stats.FrequentRequests, ", "),
		}))
	}
	if stats.LastIntent != "" {
		parts = append(parts, c.catalog.Render("memory_summary_last", lang, map[string]string{"intent": string(stats.LastIntent)}))
	}
	return strings.Join(parts, " ")
}

// greeting flips the coin and returns the personal prefix, if any.
func (c *Composer) greeting(req Request) string {
	prefs := req.Preferences
	if !prefs.PreviousStay && prefs.Name == "" {
		return ""
	}
	if c.random() >= c.greetingRate {
		return ""
	}
	if prefs.PreviousStay {
		return c.catalog.Text(KeyWelcomeBack, req.Language)
	}
	style := prefs.CommunicationStyle
	if style == "" {
		style = model.StyleFriendly
	}
	return c.catalog.Render("greeting_"+string(style), req.Language, map[string]string{"name": prefs.Name})
}

func (c *Composer) suggestion(ctx context.Context, req Request) string {
	if c.upsell == nil {
		return ""
	}
	key, err := c.upsell.Suggest(ctx, policy.UpsellInput{
		Intent:         req.Intent.Primary,
		Sentiment:      req.Intent.Sentiment,
		RoomBooked:     req.RoomBooked,
		SpaInquired:    req.SpaInquired,
		DiningInquired: req.DiningInquired,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("intent", string(req.Intent.Primary)).Msg("upsell policy failed, skipping suggestion")
		return ""
	}
	if key == "" {
		return ""
	}
	return c.catalog.Text(key, req.Language)
}

// assemble places greeting before and upsell after the base sentences.
// Extras displace trailing base sentences but never the first one, and the
// upsell outranks the greeting.
func (c *Composer) assemble(base, greeting, upsell string) string {
	sentences := Sentences(base)
	if len(sentences) == 0 {
		sentences = []string{i18n.Fallback}
	}
	for i := range sentences {
		sentences[i] = terminate(sentences[i])
	}

	room := c.limit - 1
	keepUpsell := upsell != "" && room > 0
	if keepUpsell {
		room--
	}
	keepGreeting := greeting != "" && room > 0
	if keepGreeting {
		room--
	}

	out := make([]string, 0, c.limit)
	if keepGreeting {
		out = append(out, Cap(greeting, 1))
	}
	out = append(out, sentences[:1+min(room, len(sentences)-1)]...)
	if keepUpsell {
		out = append(out, Cap(upsell, 1))
	}
	return strings.Join(out, " ")
}
