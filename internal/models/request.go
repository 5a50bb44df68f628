package models

import "net/http"

// RequestSpec describes one outbound call to the language service. It is
// built fresh for every resolution and treated as read-only afterwards.
type RequestSpec struct {
	Host    string            `json:"host"`
	Path    string            `json:"path"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    interface{}       `json:"body"`
}

// NewPostSpec returns a POST RequestSpec with a JSON content type.
func NewPostSpec(host, path string, headers map[string]string, body interface{}) *RequestSpec {
	h := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		h[k] = v
	}
	h["Content-Type"] = "application/json"

	return &RequestSpec{
		Host:    host,
		Path:    path,
		Method:  http.MethodPost,
		Headers: h,
		Body:    body,
	}
}

// KnowledgeBaseQuery is the body of a :query-knowledgebases call.
type KnowledgeBaseQuery struct {
	Question                   string `json:"question"`
	Top                        int    `json:"top"`
	IncludeUnstructuredSources bool   `json:"includeUnstructuredSources"`
}

// ConversationTask is the body of an :analyze-conversations call.
type ConversationTask struct {
	Kind          string                 `json:"kind"`
	AnalysisInput ConversationInput      `json:"analysisInput"`
	Parameters    ConversationParameters `json:"parameters"`
}

type ConversationInput struct {
	ConversationItem ConversationItem `json:"conversationItem"`
}

type ConversationItem struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	Modality      string `json:"modality"`
	Language      string `json:"language"`
	ParticipantID string `json:"participantId"`
}

type ConversationParameters struct {
	ProjectName     string `json:"projectName"`
	DeploymentName  string `json:"deploymentName"`
	Verbose         bool   `json:"verbose"`
	StringIndexType string `json:"stringIndexType"`
}
