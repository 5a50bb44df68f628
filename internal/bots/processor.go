package bots

import (
	"context"

	"github.com/google/uuid"

	apperrors "answer-bot/internal/common/errors"
	"answer-bot/internal/common/metrics"
	"answer-bot/internal/models"
	"answer-bot/internal/resolution"
)

// Processor turns incoming activities into replies and hands them to a
// ReplySender. A message activity produces exactly one reply.
type Processor struct {
	answers     AnswerSource
	sender      ReplySender
	welcomeText string
	logger      Logger
}

func NewProcessor(answers AnswerSource, sender ReplySender, welcomeText string, log Logger) *Processor {
	return &Processor{
		answers:     answers,
		sender:      sender,
		welcomeText: WelcomeFor(answers.Strategy(), welcomeText),
		logger:      log,
	}
}

// Process dispatches on the activity type. Types other than message and
// conversationUpdate are ignored. The returned error is a
// REPLY_SEND_FAILED error when a reply could not be delivered.
func (p *Processor) Process(ctx context.Context, activity *models.Activity) error {
	metrics.BotActivities.WithLabelValues(activity.Type).Inc()

	switch activity.Type {
	case models.ActivityTypeMessage:
		return p.onMessage(ctx, activity)
	case models.ActivityTypeConversationUpdate:
		return p.onMembersAdded(ctx, activity)
	}

	p.logger.Debug("ignoring activity", map[string]interface{}{
		"type": activity.Type,
		"id":   activity.ID,
	})
	return nil
}

func (p *Processor) onMessage(ctx context.Context, activity *models.Activity) error {
	out := p.answers.ResolveOutcome(ctx, activity.Text, resolution.Options{
		CorrelationID: activity.ID,
	})

	speak := ""
	if p.answers.Strategy() == models.StrategyEcho {
		speak = out.Answer
	}

	p.logger.Info("answering message", map[string]interface{}{
		"conversationId": activity.Conversation.ID,
		"activityId":     activity.ID,
		"found":          out.Found,
		"stage":          out.Stage,
	})

	return p.send(ctx, activity, activity.Reply(out.Answer, speak))
}

func (p *Processor) onMembersAdded(ctx context.Context, activity *models.Activity) error {
	for _, member := range activity.MembersAdded {
		if member.ID == activity.Recipient.ID {
			continue
		}
		if err := p.send(ctx, activity, activity.Reply(p.welcomeText, p.welcomeText)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) send(ctx context.Context, incoming, reply *models.Activity) error {
	reply.ID = uuid.NewString()
	if err := p.sender.SendReply(ctx, incoming, reply); err != nil {
		p.logger.Error("failed to send reply", map[string]interface{}{
			"conversationId": incoming.Conversation.ID,
			"replyToId":      incoming.ID,
			"error":          err.Error(),
		})
		if _, ok := apperrors.AsStandardError(err); ok {
			return err
		}
		return apperrors.NewReplySendFailedError(err)
	}
	return nil
}
