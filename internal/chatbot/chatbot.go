// Package chatbot sequences the chat request pipeline: campsite match,
// weather prompt, redirect short-circuits, filtered search, generated reply.
package chatbot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ecocampmy/campsite-chat-service/internal/forecast"
	"github.com/ecocampmy/campsite-chat-service/internal/intent"
	"github.com/ecocampmy/campsite-chat-service/internal/models"
	"github.com/ecocampmy/campsite-chat-service/internal/observability"
	"github.com/ecocampmy/campsite-chat-service/internal/reply"
	"github.com/ecocampmy/campsite-chat-service/internal/store"
)

// resultCap bounds the filtered search result set fed into the generated
// reply.
const resultCap = 5

// Composer is the generated-reply path. Implemented by reply.Composer.
type Composer interface {
	Generated(ctx context.Context, history []models.ChatMessage, candidates []models.CampSite, message string) string
}

// Service orchestrates one chat request. External calls run sequentially:
// the store read, then at most one forecast fetch, then at most one
// generation call. No state is shared across requests.
type Service struct {
	store    store.CampsiteStore
	forecast forecast.Client
	composer Composer
	logger   *zap.Logger
}

func New(st store.CampsiteStore, fc forecast.Client, composer Composer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, forecast: fc, composer: composer, logger: logger}
}

// Answer resolves one message to an answer string. The decision table below
// is an ordered list of guards; the first match wins:
//
//  1. message names a known campsite        -> detail (+ forecast if coords)
//  2. message contains "weather"            -> which-campsite prompt
//  3. more than one state detected          -> multi-state redirect
//  4. fee preference is "paid"              -> paid redirect
//  5. filtered search returns nothing       -> no-matches message
//  6. otherwise                             -> generated reply over results
//
// Only store errors escape as errors; the HTTP layer converts them to the
// fixed apology. Forecast and generation failures degrade inside their
// branches and never surface.
func (s *Service) Answer(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	sites, err := s.store.ListAll(ctx)
	if err != nil {
		observability.ChatIntentTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("read campsites: %w", err)
	}

	if site, ok := matchCampsite(message, sites); ok {
		observability.ChatIntentTotal.WithLabelValues("campsite_detail").Inc()
		return reply.CampsiteDetail(site, s.outlook(ctx, site)), nil
	}

	if strings.Contains(strings.ToLower(message), "weather") {
		observability.ChatIntentTotal.WithLabelValues("weather_prompt").Inc()
		return reply.WeatherPrompt, nil
	}

	ents := intent.Extract(message)

	if len(ents.States) > 1 {
		observability.ChatIntentTotal.WithLabelValues("multi_state_redirect").Inc()
		return reply.MultiStateRedirect, nil
	}

	if ents.Fee == intent.FeePaid {
		observability.ChatIntentTotal.WithLabelValues("paid_redirect").Inc()
		return reply.PaidRedirect, nil
	}

	results, err := s.store.Search(ctx, buildFilter(ents), resultCap)
	if err != nil {
		observability.ChatIntentTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("search campsites: %w", err)
	}
	if len(results) == 0 {
		observability.ChatIntentTotal.WithLabelValues("no_matches").Inc()
		return reply.NoMatches, nil
	}

	observability.ChatIntentTotal.WithLabelValues("generated").Inc()
	return s.composer.Generated(ctx, history, results, message), nil
}

// matchCampsite scans all campsites in storage order and returns the first
// whose name appears in the message (case-insensitive substring). No scoring
// or fuzzy matching: the first hit wins.
func matchCampsite(message string, sites []models.CampSite) (models.CampSite, bool) {
	lower := strings.ToLower(message)
	for _, site := range sites {
		if site.Name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(site.Name)) {
			return site, true
		}
	}
	return models.CampSite{}, false
}

// buildFilter compiles extracted entities into the store predicate. A state
// predicate applies only when exactly one state was detected; multi-state
// messages are redirected before this point. A fee predicate applies only to
// the free preference; paid is redirected.
func buildFilter(ents intent.Entities) store.Filter {
	f := store.Filter{
		Attractions: ents.Attractions,
		CombineAnd:  ents.Combinator == intent.CombinatorAnd,
		FreeOnly:    ents.Fee == intent.FeeFree,
	}
	if len(ents.States) == 1 {
		f.State = ents.States[0]
	}
	return f
}

// outlook fetches the 5-day forecast for a campsite with coordinates. Any
// failure yields nil; the detail reply simply omits the outlook.
func (s *Service) outlook(ctx context.Context, site models.CampSite) []models.DayForecast {
	if !site.HasCoordinates() {
		return nil
	}
	days, err := s.forecast.FiveDay(ctx, *site.Latitude, *site.Longitude)
	if err != nil {
		s.logger.Debug("forecast unavailable", zap.String("campsite", site.Name), zap.Error(err))
		return nil
	}
	return days
}
