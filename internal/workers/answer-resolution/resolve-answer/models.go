// internal/workers/answer-resolution/resolve-answer/models.go
package resolveanswer

type Input struct {
	Utterance      string `json:"utterance"`
	Fallback       string `json:"fallback,omitempty"`
	DeploymentName string `json:"deploymentName,omitempty"`
	Language       string `json:"language,omitempty"`
	CorrelationID  string `json:"correlationId,omitempty"`
}

type Output struct {
	Answer        string `json:"answer"`
	Found         bool   `json:"found"`
	Strategy      string `json:"strategy"`
	CorrelationID string `json:"correlationId"`
}
