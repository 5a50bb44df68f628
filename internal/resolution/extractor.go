package resolution

import (
	"encoding/json"

	"answer-bot/internal/models"
)

// Extractor selects one answer from a raw response. It is pure and never
// fails; every branch ends in an answer or the fallback text.
type Extractor struct {
	intents Intents
}

func NewExtractor(intents Intents) *Extractor {
	return &Extractor{intents: intents}
}

// Extract dispatches on strategy. Strategies without a backend response
// yield the fallback.
func (e *Extractor) Extract(raw models.RawResponse, strategy models.Strategy, fallback string) string {
	if answer, ok := e.Lookup(raw, strategy); ok {
		return answer
	}
	return fallback
}

// Lookup is Extract without the fallback: it reports whether the response
// carried a usable answer.
func (e *Extractor) Lookup(raw models.RawResponse, strategy models.Strategy) (string, bool) {
	switch strategy {
	case models.StrategyDirectLookup:
		return extractKnowledgeBase(raw)
	case models.StrategyOrchestration:
		return e.extractOrchestration(raw)
	}
	return "", false
}

// knowledgeBaseEnvelope decodes both answer locations independently so a
// malformed one does not hide the other.
type knowledgeBaseEnvelope struct {
	Answers json.RawMessage `json:"answers"`
	Result  json.RawMessage `json:"result"`
}

func extractKnowledgeBase(raw models.RawResponse) (string, bool) {
	var env knowledgeBaseEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", false
	}

	var answers []json.RawMessage
	if err := json.Unmarshal(env.Answers, &answers); err == nil {
		if answer, ok := models.FirstAnswer(answers); ok {
			return answer, true
		}
	}

	var nested models.KnowledgeBaseResult
	if err := json.Unmarshal(env.Result, &nested); err == nil {
		return models.FirstAnswer(nested.Answers)
	}
	return "", false
}

// extractOrchestration is a two-level dispatch: the outer topIntent picks
// the payload schema, the inner topIntent picks the response template.
func (e *Extractor) extractOrchestration(raw models.RawResponse) (string, bool) {
	var resp models.OrchestrationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", false
	}
	if resp.Result == nil || resp.Result.Prediction == nil {
		return "", false
	}

	prediction := resp.Result.Prediction
	if prediction.TopIntent == nil || prediction.Intents == nil {
		return "", false
	}

	topIntent := *prediction.TopIntent
	payload, ok := prediction.Intents[topIntent]
	if !ok {
		return "", false
	}

	switch topIntent {
	case e.intents.KnowledgeBase:
		return knowledgeBaseIntentAnswer(payload)
	case e.intents.SlotFilling:
		return e.slotFillingAnswer(payload)
	default:
		return "", false
	}
}

func knowledgeBaseIntentAnswer(payload json.RawMessage) (string, bool) {
	var intent models.KnowledgeBaseIntent
	if err := json.Unmarshal(payload, &intent); err != nil || intent.Result == nil {
		return "", false
	}
	return models.FirstAnswer(intent.Result.Answers)
}

func (e *Extractor) slotFillingAnswer(payload json.RawMessage) (string, bool) {
	var intent models.SlotFillingIntent
	if err := json.Unmarshal(payload, &intent); err != nil {
		return "", false
	}
	if intent.Result == nil || intent.Result.Prediction == nil {
		return "", false
	}

	inner := intent.Result.Prediction
	if inner.TopIntent == nil {
		return "", false
	}

	value, ok := models.FirstResolutionValue(inner.Entities)
	if !ok {
		return "", false
	}

	switch *inner.TopIntent {
	case e.intents.Availability:
		return value + " is available.", true
	case e.intents.Schedule:
		return "Appointment for " + value + " is confirmed!", true
	default:
		return "", false
	}
}
