package bots

import (
	"context"

	"answer-bot/internal/common/cache"
	"answer-bot/internal/common/metrics"
	"answer-bot/internal/models"
	"answer-bot/internal/resolution"
)

// CachedAnswers serves repeated utterances from the answer cache. Only
// answers the backend produced are stored; fallbacks, diagnostics and echo
// replies always go through the wrapped source. A failing cache degrades to
// an uncached lookup.
type CachedAnswers struct {
	next   AnswerSource
	cache  *cache.AnswerCache
	logger Logger
}

func NewCachedAnswers(next AnswerSource, c *cache.AnswerCache, log Logger) *CachedAnswers {
	return &CachedAnswers{next: next, cache: c, logger: log}
}

func (c *CachedAnswers) Strategy() models.Strategy {
	return c.next.Strategy()
}

func (c *CachedAnswers) ResolveOutcome(ctx context.Context, utterance string, opts resolution.Options) resolution.Outcome {
	strategy := c.next.Strategy()
	if !strategy.RequiresBackend() {
		return c.next.ResolveOutcome(ctx, utterance, opts)
	}

	answer, hit, err := c.cache.Get(ctx, string(strategy), utterance)
	switch {
	case err != nil:
		metrics.AnswerCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("answer cache unavailable", map[string]interface{}{"error": err.Error()})
	case hit:
		metrics.AnswerCacheLookups.WithLabelValues("hit").Inc()
		return resolution.Outcome{Answer: answer, Found: true}
	default:
		metrics.AnswerCacheLookups.WithLabelValues("miss").Inc()
	}

	out := c.next.ResolveOutcome(ctx, utterance, opts)
	if out.Found && out.Err == nil {
		if err := c.cache.Set(ctx, string(strategy), utterance, out.Answer); err != nil {
			c.logger.Warn("failed to cache answer", map[string]interface{}{"error": err.Error()})
		}
	}
	return out
}
