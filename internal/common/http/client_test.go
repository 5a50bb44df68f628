package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "answer-bot/internal/common/errors"
	"answer-bot/internal/models"
)

func hostOf(server *httptest.Server) string {
	return strings.TrimPrefix(server.URL, "http://")
}

func testSpec(host string) *models.RequestSpec {
	return models.NewPostSpec(host, "/language/:query-knowledgebases?projectName=faq", map[string]string{
		"Ocp-Apim-Subscription-Key": "key-123",
	}, models.KnowledgeBaseQuery{Question: "hours?", Top: 3, IncludeUnstructuredSources: true})
}

func TestClient_Send_Success(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/language/:query-knowledgebases", r.URL.Path)
		assert.Equal(t, "faq", r.URL.Query().Get("projectName"))
		assert.Equal(t, "key-123", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answers":[{"answer":"9 to 5"}]}`))
	}))
	defer server.Close()

	client := NewClient(WithScheme("http"))
	raw, err := client.Send(context.Background(), testSpec(hostOf(server)))

	require.NoError(t, err)
	assert.JSONEq(t, `{"answers":[{"answer":"9 to 5"}]}`, string(raw))
	assert.Equal(t, "hours?", gotBody["question"])
	assert.Equal(t, float64(3), gotBody["top"])
	assert.Equal(t, true, gotBody["includeUnstructuredSources"])
}

func TestClient_Send_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"answers": [`))
	}))
	defer server.Close()

	_, err := NewClient(WithScheme("http")).Send(context.Background(), testSpec(hostOf(server)))

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeParse))
	assert.Contains(t, err.Error(), "unexpected end of JSON input")
}

func TestClient_Send_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := NewClient(WithScheme("http")).Send(context.Background(), testSpec(hostOf(server)))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeParse))
}

func TestClient_Send_UpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"401","message":"Access denied"}}`))
	}))
	defer server.Close()

	_, err := NewClient(WithScheme("http")).Send(context.Background(), testSpec(hostOf(server)))

	require.Error(t, err)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUpstreamStatus, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "Access denied")
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := hostOf(server)
	server.Close()

	_, err := NewClient(WithScheme("http")).Send(context.Background(), testSpec(host))

	require.Error(t, err)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeTransport, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.NotEmpty(t, stdErr.Details)
}

func TestClient_Send_CancellationAbandonsRequest(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewClient(WithScheme("http")).Send(ctx, testSpec(hostOf(server)))

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeTransport))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClient_URL(t *testing.T) {
	spec := &models.RequestSpec{Host: "contoso.cognitiveservices.azure.com", Path: "/language/:analyze-conversations?api-version=2024-11-15-preview"}

	assert.Equal(t, "https://contoso.cognitiveservices.azure.com/language/:analyze-conversations?api-version=2024-11-15-preview", NewClient().URL(spec))
	assert.Equal(t, "http://contoso.cognitiveservices.azure.com/language/:analyze-conversations?api-version=2024-11-15-preview", NewClient(WithScheme("http://")).URL(spec))
}
