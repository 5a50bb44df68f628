// internal/models/strategy.go
package models

import (
	"fmt"
	"strings"
)

// Strategy selects how a pipeline instance resolves an utterance.
type Strategy string

const (
	StrategyEcho          Strategy = "echo"
	StrategyDirectLookup  Strategy = "direct_lookup"
	StrategyOrchestration Strategy = "orchestration"
)

// ParseStrategy accepts the configured spelling of a strategy. Dashes, spaces
// and case are ignored so "Direct-Lookup" and "direct_lookup" are the same.
func ParseStrategy(s string) (Strategy, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)

	switch norm {
	case "echo":
		return StrategyEcho, nil
	case "direct_lookup", "directlookup", "qna", "knowledge_base":
		return StrategyDirectLookup, nil
	case "orchestration", "orchestrator":
		return StrategyOrchestration, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// RequiresBackend reports whether the strategy performs a network round trip.
func (s Strategy) RequiresBackend() bool {
	return s == StrategyDirectLookup || s == StrategyOrchestration
}

func (s Strategy) String() string {
	return string(s)
}
