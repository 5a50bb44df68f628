package resolution

import (
	"answer-bot/internal/common/config"
	"answer-bot/internal/models"
)

const (
	// FallbackDirectLookup is the default answer when the knowledge base
	// has nothing usable.
	FallbackDirectLookup = "I'm not sure I found an answer to your question"
	// FallbackOrchestration is the default answer when no intent branch
	// produces a value.
	FallbackOrchestration = "No answer found."
)

// Intents names the orchestration intents the extractor dispatches on.
type Intents struct {
	KnowledgeBase string
	SlotFilling   string
	Availability  string
	Schedule      string
}

// Config is the immutable configuration of one pipeline instance.
type Config struct {
	Strategy        models.Strategy
	EndpointHost    string
	SubscriptionKey string
	ProjectName     string
	DeploymentName  string
	ConversationID  string
	ParticipantID   string
	Language        string
	CorrelationID   string
	Intents         Intents

	// Fallback overrides the strategy's default fallback text when set.
	Fallback string
}

// Options are per-call overrides. Zero values keep the configured setting.
type Options struct {
	DeploymentName string
	ConversationID string
	ParticipantID  string
	Language       string
	CorrelationID  string
	Fallback       string
}

// ConfigFrom maps the application configuration onto a pipeline Config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Strategy:        cfg.Strategy(),
		EndpointHost:    cfg.Language.EndpointHost,
		SubscriptionKey: cfg.Language.SubscriptionKey,
		ProjectName:     cfg.Language.ProjectName,
		DeploymentName:  cfg.Language.DeploymentName,
		ConversationID:  cfg.Language.ConversationID,
		ParticipantID:   cfg.Language.ParticipantID,
		Language:        cfg.Language.Language,
		CorrelationID:   cfg.Language.CorrelationID,
		Intents: Intents{
			KnowledgeBase: cfg.Orchestration.KnowledgeBaseIntent,
			SlotFilling:   cfg.Orchestration.SlotFillingIntent,
			Availability:  cfg.Orchestration.AvailabilityIntent,
			Schedule:      cfg.Orchestration.ScheduleIntent,
		},
		Fallback: cfg.Bot.Fallback,
	}
}

// DefaultIntents returns the intent names of the dentist demo project.
func DefaultIntents() Intents {
	return Intents{
		KnowledgeBase: config.DefaultKnowledgeBaseIntent,
		SlotFilling:   config.DefaultSlotFillingIntent,
		Availability:  config.DefaultAvailabilityIntent,
		Schedule:      config.DefaultScheduleIntent,
	}
}

// FallbackFor returns the fallback text used for strategy: the per-call
// override, then the configured override, then the strategy default.
func (c Config) FallbackFor(opts Options) string {
	if opts.Fallback != "" {
		return opts.Fallback
	}
	if c.Fallback != "" {
		return c.Fallback
	}
	return DefaultFallback(c.Strategy)
}

// DefaultFallback returns the strategy's own fallback literal.
func DefaultFallback(strategy models.Strategy) string {
	if strategy == models.StrategyOrchestration {
		return FallbackOrchestration
	}
	return FallbackDirectLookup
}

func (c Config) intents() Intents {
	in := c.Intents
	def := DefaultIntents()
	if in.KnowledgeBase == "" {
		in.KnowledgeBase = def.KnowledgeBase
	}
	if in.SlotFilling == "" {
		in.SlotFilling = def.SlotFilling
	}
	if in.Availability == "" {
		in.Availability = def.Availability
	}
	if in.Schedule == "" {
		in.Schedule = def.Schedule
	}
	return in
}

func pick(override, configured, def string) string {
	if override != "" {
		return override
	}
	if configured != "" {
		return configured
	}
	return def
}
