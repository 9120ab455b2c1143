package positions

import (
	"context"
	"time"
)

const suggestionsScope = "positions"

type suggestionCache interface {
	Generation(ctx context.Context, scope string) (int64, error)
	BumpGeneration(ctx context.Context, scope string) (int64, error)
	SuggestionsKey(field string, generation int64) string
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Suggestions returns the distinct values of every autocomplete field. Cache
// failures degrade to reading the database.
func (s *service) Suggestions(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string, len(SuggestionFields))
	generation, cacheOK := s.suggestionGeneration(ctx)

	for _, field := range SuggestionFields {
		if cacheOK {
			var cached []string
			hit, err := s.opts.Cache.GetJSON(ctx, s.opts.Cache.SuggestionsKey(field, generation), &cached)
			if err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "field", field), "suggestions.cache_read_failed")
			}
			if hit {
				out[field] = cached
				continue
			}
		}

		values, err := s.repo.DistinctValues(ctx, field)
		if err != nil {
			return nil, err
		}
		out[field] = values

		if cacheOK {
			key := s.opts.Cache.SuggestionsKey(field, generation)
			if err := s.opts.Cache.SetJSON(ctx, key, values, s.opts.SuggestionsTTL); err != nil {
				s.logg.Warn(s.logg.WithField(ctx, "field", field), "suggestions.cache_write_failed")
			}
		}
	}
	return out, nil
}

func (s *service) suggestionGeneration(ctx context.Context) (int64, bool) {
	if s.opts.Cache == nil {
		return 0, false
	}
	generation, err := s.opts.Cache.Generation(ctx, suggestionsScope)
	if err != nil {
		s.logg.Warn(ctx, "suggestions.cache_unavailable")
		return 0, false
	}
	return generation, true
}

func (s *service) invalidateSuggestions(ctx context.Context) {
	if s.opts.Cache == nil {
		return
	}
	if _, err := s.opts.Cache.BumpGeneration(ctx, suggestionsScope); err != nil {
		s.logg.Error(ctx, "suggestions.invalidate_failed", err)
	}
}
