package bots

import (
	"context"

	"answer-bot/internal/models"
	"answer-bot/internal/resolution"
)

// AnswerSource resolves an utterance to an answer. *resolution.Resolver is
// the production implementation.
type AnswerSource interface {
	ResolveOutcome(ctx context.Context, utterance string, opts resolution.Options) resolution.Outcome
	Strategy() models.Strategy
}

// ReplySender delivers one reply activity to the channel the incoming
// activity came from.
type ReplySender interface {
	SendReply(ctx context.Context, incoming, reply *models.Activity) error
}

// Logger is the logging surface the bot needs.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

const (
	WelcomeEcho    = "Hello and welcome to EchoBot!"
	WelcomeDefault = "Hello and welcome to QnABot!"
)

// WelcomeFor returns the welcome text of strategy unless override is set.
func WelcomeFor(strategy models.Strategy, override string) string {
	if override != "" {
		return override
	}
	if strategy == models.StrategyEcho {
		return WelcomeEcho
	}
	return WelcomeDefault
}
