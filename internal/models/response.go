package models

import (
	"bytes"
	"encoding/json"
)

// RawResponse is the undecoded JSON body returned by the language service.
// Its shape depends on the strategy that produced it.
type RawResponse json.RawMessage

// The decode types below declare only the fields the extractor reads. Lists
// stay raw so only the element actually used is decoded; a malformed
// sibling or an unexpected type in an unread field never hides an answer.

// ==========================
// Knowledge-base answers
// ==========================

// KnowledgeBaseAnswer is one ranked answer.
type KnowledgeBaseAnswer struct {
	Answer *string `json:"answer,omitempty"`
}

// Text returns the answer text and whether it is present and non-empty.
func (a KnowledgeBaseAnswer) Text() (string, bool) {
	if a.Answer == nil || *a.Answer == "" {
		return "", false
	}
	return *a.Answer, true
}

// FirstAnswer decodes answers[0] only.
func FirstAnswer(answers []json.RawMessage) (string, bool) {
	var a KnowledgeBaseAnswer
	if !decodeFirst(answers, &a) {
		return "", false
	}
	return a.Text()
}

// KnowledgeBaseResult wraps an answer list, as found under "result".
type KnowledgeBaseResult struct {
	Answers []json.RawMessage `json:"answers,omitempty"`
}

// ==========================
// Orchestration prediction
// ==========================

// OrchestrationResponse is the analyze-conversations envelope.
type OrchestrationResponse struct {
	Result *OrchestrationResult `json:"result,omitempty"`
}

type OrchestrationResult struct {
	Prediction *OrchestrationPrediction `json:"prediction,omitempty"`
}

// OrchestrationPrediction keeps each intent payload raw because its schema
// depends on which intent fired.
type OrchestrationPrediction struct {
	TopIntent *string                    `json:"topIntent,omitempty"`
	Intents   map[string]json.RawMessage `json:"intents,omitempty"`
}

// KnowledgeBaseIntent is the payload of an intent routed to a question
// answering project.
type KnowledgeBaseIntent struct {
	Result *KnowledgeBaseResult `json:"result,omitempty"`
}

// SlotFillingIntent is the payload of an intent routed to a conversational
// language understanding project.
type SlotFillingIntent struct {
	Result *SlotFillingResult `json:"result,omitempty"`
}

type SlotFillingResult struct {
	Prediction *SlotPrediction `json:"prediction,omitempty"`
}

type SlotPrediction struct {
	TopIntent *string           `json:"topIntent,omitempty"`
	Entities  []json.RawMessage `json:"entities,omitempty"`
}

type Entity struct {
	Resolutions []json.RawMessage `json:"resolutions,omitempty"`
}

// Resolution holds a normalized entity value. Value may be a string or a
// number depending on the resolution kind.
type Resolution struct {
	Value json.RawMessage `json:"value,omitempty"`
}

// FirstResolutionValue returns entities[0].resolutions[0].value as text.
func FirstResolutionValue(entities []json.RawMessage) (string, bool) {
	var entity Entity
	if !decodeFirst(entities, &entity) {
		return "", false
	}

	var res Resolution
	if !decodeFirst(entity.Resolutions, &res) {
		return "", false
	}
	return res.ValueText()
}

// ValueText renders the resolution value as text. Null, missing and empty
// values report false.
func (r Resolution) ValueText() (string, bool) {
	raw := bytes.TrimSpace(r.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	}

	// numbers and booleans keep their literal form; objects and arrays are
	// not a usable value
	if raw[0] == '{' || raw[0] == '[' {
		return "", false
	}
	return string(raw), true
}

func decodeFirst(list []json.RawMessage, v interface{}) bool {
	if len(list) == 0 {
		return false
	}
	return json.Unmarshal(list[0], v) == nil
}
