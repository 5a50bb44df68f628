package resolution

import (
	"net/url"
	"strings"

	"answer-bot/internal/common/config"
	apperrors "answer-bot/internal/common/errors"
	"answer-bot/internal/models"
)

const (
	knowledgeBaseAPIVersion = "2021-10-01"
	conversationAPIVersion  = "2024-11-15-preview"

	knowledgeBaseTop = 3

	headerSubscriptionKey = "Ocp-Apim-Subscription-Key"
	headerRequestID       = "Apim-Request-Id"
)

// Build produces the outbound request for strategy. It performs no I/O and
// fails only with a CONFIGURATION_ERROR when a mandatory setting is missing.
func Build(cfg Config, strategy models.Strategy, utterance string, opts Options) (*models.RequestSpec, error) {
	host := NormalizeHost(cfg.EndpointHost)
	switch {
	case host == "":
		return nil, apperrors.NewConfigurationError("language.endpoint_host")
	case strings.TrimSpace(cfg.SubscriptionKey) == "":
		return nil, apperrors.NewConfigurationError("language.subscription_key")
	case strings.TrimSpace(cfg.ProjectName) == "":
		return nil, apperrors.NewConfigurationError("language.project_name")
	}

	deployment := pick(opts.DeploymentName, cfg.DeploymentName, config.DefaultDeploymentName)
	headers := map[string]string{headerSubscriptionKey: cfg.SubscriptionKey}

	switch strategy {
	case models.StrategyDirectLookup:
		path := "/language/:query-knowledgebases" +
			"?projectName=" + url.QueryEscape(cfg.ProjectName) +
			"&api-version=" + knowledgeBaseAPIVersion +
			"&deploymentName=" + url.QueryEscape(deployment)

		return models.NewPostSpec(host, path, headers, models.KnowledgeBaseQuery{
			Question:                   utterance,
			Top:                        knowledgeBaseTop,
			IncludeUnstructuredSources: true,
		}), nil

	case models.StrategyOrchestration:
		headers[headerRequestID] = pick(opts.CorrelationID, cfg.CorrelationID, config.DefaultCorrelationID)
		path := "/language/:analyze-conversations?api-version=" + conversationAPIVersion

		return models.NewPostSpec(host, path, headers, models.ConversationTask{
			Kind: "Conversation",
			AnalysisInput: models.ConversationInput{
				ConversationItem: models.ConversationItem{
					ID:            pick(opts.ConversationID, cfg.ConversationID, config.DefaultConversationID),
					Text:          utterance,
					Modality:      "text",
					Language:      pick(opts.Language, cfg.Language, config.DefaultLanguage),
					ParticipantID: pick(opts.ParticipantID, cfg.ParticipantID, config.DefaultParticipantID),
				},
			},
			Parameters: models.ConversationParameters{
				ProjectName:     cfg.ProjectName,
				DeploymentName:  deployment,
				Verbose:         true,
				StringIndexType: "TextElement_V8",
			},
		}), nil
	}

	return nil, apperrors.NewUnsupportedStrategyError(string(strategy))
}

// NormalizeHost strips a scheme prefix and trailing slashes; the transport
// supplies the scheme itself.
func NormalizeHost(endpoint string) string {
	host := strings.TrimSpace(endpoint)
	for _, prefix := range []string{"https://", "http://"} {
		if len(host) >= len(prefix) && strings.EqualFold(host[:len(prefix)], prefix) {
			host = host[len(prefix):]
			break
		}
	}
	return strings.TrimRight(host, "/")
}
