package concierge

import (
	"context"
	"fmt"
	"time"

	"hotel_concierge/internal/core"
	"hotel_concierge/internal/nodes"
	"hotel_concierge/internal/policy"
	"hotel_concierge/internal/services"
	"hotel_concierge/internal/storage"
	"hotel_concierge/src/booking"
	"hotel_concierge/src/composer"
	"hotel_concierge/src/conversation"
	"hotel_concierge/src/i18n"
	"hotel_concierge/src/model"
	"hotel_concierge/src/nlu"
)

// Deps are shared by every conversation of a process.
type Deps struct {
	Config       model.EngineConfig
	Blobs        storage.BlobStore
	Matcher      *nlu.Matcher
	Composer     *composer.Composer
	Hotel        *services.HotelService
	Sessions     *storage.SessionManager
	Conversation *conversation.Service
	Pipeline     *core.Pipeline

	now func() time.Time
}

type options struct {
	random func() float64
	now    func() time.Time
}

// Option configures NewDeps.
type Option func(*options)

// WithRandom fixes the greeting coin, for tests.
func WithRandom(random func() float64) Option {
	return func(o *options) { o.random = random }
}

// WithClock replaces time.Now for turns, bookings and memory.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewDeps loads the intent table and upsell policy named by cfg and wires
// the turn pipeline over blobs.
func NewDeps(ctx context.Context, cfg model.EngineConfig, blobs storage.BlobStore, opts ...Option) (*Deps, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if blobs == nil {
		blobs = storage.NewMemoryStore()
	}

	table := nlu.DefaultTable()
	if cfg.IntentTable != "" {
		loaded, err := nlu.LoadTable(cfg.IntentTable)
		if err != nil {
			return nil, err
		}
		table = loaded
	}

	upsell, err := policy.LoadUpsellEngine(ctx, cfg.UpsellPolicy)
	if err != nil {
		return nil, err
	}

	composerOpts := []composer.Option{
		composer.WithUpseller(upsell),
		composer.WithGreetingRate(cfg.GreetingRate),
		composer.WithSentenceLimit(cfg.SentenceLimit),
	}
	if o.random != nil {
		composerOpts = append(composerOpts, composer.WithRandom(o.random))
	}

	d := &Deps{
		Config:       cfg,
		Blobs:        blobs,
		Matcher:      nlu.NewMatcher(table),
		Composer:     composer.New(i18n.DefaultCatalog(), composerOpts...),
		Hotel:        services.NewHotelService(),
		Sessions:     storage.NewSessionManager(blobs, cfg.BookingTTL, storage.WithSessionClock(o.now)),
		Conversation: conversation.NewService(conversation.NewBlobRepository(blobs, 0, cfg.MessageLimit)),
		now:          o.now,
	}

	d.Pipeline, err = core.NewPipeline(ctx,
		nodes.NewCommandNode(d.Composer, d.Sessions, d.Conversation),
		nodes.NewNLUNode(d.Matcher, d.Sessions),
		nodes.NewBookingNode(booking.NewMachine(booking.WithClock(o.now)), d.Sessions),
		nodes.NewResponseNode(d.Composer, d.Hotel),
		nodes.NewRecordNode(d.Conversation),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build turn pipeline: %w", err)
	}
	return d, nil
}
