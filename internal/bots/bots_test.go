package bots

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"answer-bot/internal/common/cache"
	apperrors "answer-bot/internal/common/errors"
	"answer-bot/internal/common/logger"
	"answer-bot/internal/models"
	"answer-bot/internal/resolution"
)

// recordingSender implements ReplySender for testing.
type recordingSender struct {
	mu      sync.Mutex
	replies []*models.Activity
	err     error
}

func (s *recordingSender) SendReply(_ context.Context, _, reply *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.replies = append(s.replies, reply)
	return nil
}

func (s *recordingSender) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.replies))
	for i, r := range s.replies {
		out[i] = r.Text
	}
	return out
}

// stubAnswers implements AnswerSource for testing.
type stubAnswers struct {
	strategy models.Strategy
	outcome  resolution.Outcome
	calls    int
	lastOpts resolution.Options
}

func (s *stubAnswers) Strategy() models.Strategy { return s.strategy }

func (s *stubAnswers) ResolveOutcome(_ context.Context, _ string, opts resolution.Options) resolution.Outcome {
	s.calls++
	s.lastOpts = opts
	return s.outcome
}

func messageActivity(text string) *models.Activity {
	return &models.Activity{
		Type:         models.ActivityTypeMessage,
		ID:           "act-1",
		ServiceURL:   "https://smba.example.com/",
		ChannelID:    "msteams",
		From:         models.ChannelAccount{ID: "user-1", Name: "Pat"},
		Recipient:    models.ChannelAccount{ID: "bot-1", Name: "Answer Bot"},
		Conversation: models.ConversationAccount{ID: "conv-1"},
		Text:         text,
	}
}

func newEchoResolver(t *testing.T) *resolution.Resolver {
	return resolution.NewResolver(resolution.Config{Strategy: models.StrategyEcho}, nil, logger.NewTestLogger(t))
}

// --- Processor tests ---

func TestProcessor_EchoMessage(t *testing.T) {
	sender := &recordingSender{}
	p := NewProcessor(newEchoResolver(t), sender, "", logger.NewTestLogger(t))

	require.NoError(t, p.Process(context.Background(), messageActivity("hello")))

	require.Len(t, sender.replies, 1)
	reply := sender.replies[0]
	assert.Equal(t, "Echo: hello", reply.Text)
	assert.Equal(t, "Echo: hello", reply.Speak)
	assert.Equal(t, models.ActivityTypeMessage, reply.Type)
	assert.Equal(t, "act-1", reply.ReplyToID)
	assert.Equal(t, "bot-1", reply.From.ID)
	assert.Equal(t, "user-1", reply.Recipient.ID)
	assert.Equal(t, "conv-1", reply.Conversation.ID)
	assert.NotEmpty(t, reply.ID)
}

func TestProcessor_AnswerMessage(t *testing.T) {
	answers := &stubAnswers{
		strategy: models.StrategyDirectLookup,
		outcome:  resolution.Outcome{Answer: "We open at 9.", Found: true},
	}
	sender := &recordingSender{}
	p := NewProcessor(answers, sender, "", logger.NewTestLogger(t))

	require.NoError(t, p.Process(context.Background(), messageActivity("When do you open?")))

	assert.Equal(t, []string{"We open at 9."}, sender.texts())
	assert.Empty(t, sender.replies[0].Speak)
	assert.Equal(t, "act-1", answers.lastOpts.CorrelationID)
}

func TestProcessor_DiagnosticIsStillOneReply(t *testing.T) {
	answers := &stubAnswers{
		strategy: models.StrategyOrchestration,
		outcome: resolution.Outcome{
			Answer: apperrors.DiagnosticAnswer("transport", "hi"),
			Stage:  "transport",
			Err:    apperrors.NewTransportError(errors.New("refused")),
		},
	}
	sender := &recordingSender{}
	p := NewProcessor(answers, sender, "", logger.NewTestLogger(t))

	require.NoError(t, p.Process(context.Background(), messageActivity("hi")))
	assert.Equal(t, []string{`Error querying the language service (transport stage failed) for message "hi".`}, sender.texts())
}

func TestProcessor_WelcomesNewMembers(t *testing.T) {
	tests := []struct {
		name     string
		strategy models.Strategy
		override string
		expected string
	}{
		{"echo", models.StrategyEcho, "", WelcomeEcho},
		{"direct lookup", models.StrategyDirectLookup, "", WelcomeDefault},
		{"orchestration", models.StrategyOrchestration, "", WelcomeDefault},
		{"override", models.StrategyDirectLookup, "Welcome to the clinic!", "Welcome to the clinic!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			p := NewProcessor(&stubAnswers{strategy: tt.strategy}, sender, tt.override, logger.NewTestLogger(t))

			activity := messageActivity("")
			activity.Type = models.ActivityTypeConversationUpdate
			activity.MembersAdded = []models.ChannelAccount{{ID: "user-1"}, {ID: "bot-1"}, {ID: "user-2"}}

			require.NoError(t, p.Process(context.Background(), activity))
			assert.Equal(t, []string{tt.expected, tt.expected}, sender.texts())
			assert.Equal(t, tt.expected, sender.replies[0].Speak)
			assert.NotEqual(t, sender.replies[0].ID, sender.replies[1].ID)
		})
	}
}

func TestProcessor_IgnoresOtherActivities(t *testing.T) {
	answers := &stubAnswers{strategy: models.StrategyDirectLookup}
	sender := &recordingSender{}
	p := NewProcessor(answers, sender, "", logger.NewTestLogger(t))

	activity := messageActivity("")
	activity.Type = "typing"

	require.NoError(t, p.Process(context.Background(), activity))
	assert.Empty(t, sender.replies)
	assert.Zero(t, answers.calls)
}

func TestProcessor_SendFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("connector down")}
	p := NewProcessor(newEchoResolver(t), sender, "", logger.NewTestLogger(t))

	err := p.Process(context.Background(), messageActivity("hello"))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeReplySendFailed))
}

// --- Cache tests ---

func newTestCache(t *testing.T) (*miniredis.Miniredis, *cache.AnswerCache) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, cache.NewAnswerCache(client, time.Minute, "answer")
}

func TestCachedAnswers_StoresFoundAnswers(t *testing.T) {
	_, c := newTestCache(t)
	answers := &stubAnswers{
		strategy: models.StrategyDirectLookup,
		outcome:  resolution.Outcome{Answer: "9am", Found: true},
	}
	cached := NewCachedAnswers(answers, c, logger.NewTestLogger(t))

	first := cached.ResolveOutcome(context.Background(), "open?", resolution.Options{})
	second := cached.ResolveOutcome(context.Background(), "open?", resolution.Options{})

	assert.Equal(t, "9am", first.Answer)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, answers.calls)
	assert.Equal(t, models.StrategyDirectLookup, cached.Strategy())
}

func TestCachedAnswers_SkipsFallbacksAndDiagnostics(t *testing.T) {
	outcomes := []resolution.Outcome{
		{Answer: resolution.FallbackDirectLookup},
		{Answer: apperrors.DiagnosticAnswer("parse", "q"), Stage: "parse", Err: apperrors.NewParseError(errors.New("bad"))},
	}

	for _, outcome := range outcomes {
		mr, c := newTestCache(t)
		answers := &stubAnswers{strategy: models.StrategyDirectLookup, outcome: outcome}
		cached := NewCachedAnswers(answers, c, logger.NewTestLogger(t))

		cached.ResolveOutcome(context.Background(), "q", resolution.Options{})
		cached.ResolveOutcome(context.Background(), "q", resolution.Options{})

		assert.Equal(t, 2, answers.calls)
		assert.Empty(t, mr.Keys())
	}
}

func TestCachedAnswers_BypassesEcho(t *testing.T) {
	mr, c := newTestCache(t)
	answers := &stubAnswers{
		strategy: models.StrategyEcho,
		outcome:  resolution.Outcome{Answer: "Echo: hi", Found: true},
	}
	cached := NewCachedAnswers(answers, c, logger.NewTestLogger(t))

	cached.ResolveOutcome(context.Background(), "hi", resolution.Options{})
	assert.Empty(t, mr.Keys())
}

func TestCachedAnswers_DegradesWhenRedisIsDown(t *testing.T) {
	mr, c := newTestCache(t)
	mr.Close()

	answers := &stubAnswers{
		strategy: models.StrategyOrchestration,
		outcome:  resolution.Outcome{Answer: "3pm is available.", Found: true},
	}
	cached := NewCachedAnswers(answers, c, logger.NewTestLogger(t))

	out := cached.ResolveOutcome(context.Background(), "3pm?", resolution.Options{})
	assert.Equal(t, "3pm is available.", out.Answer)
	assert.Equal(t, 1, answers.calls)
}

// --- Connector tests ---

func TestReplyURL(t *testing.T) {
	u, err := ReplyURL(messageActivity("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://smba.example.com/v3/conversations/conv-1/activities/act-1", u)

	activity := messageActivity("x")
	activity.ID = ""
	activity.Conversation.ID = "a:b/c"
	u, err = ReplyURL(activity)
	require.NoError(t, err)
	assert.Equal(t, "https://smba.example.com/v3/conversations/a:b%2Fc/activities", u)

	activity.ServiceURL = ""
	_, err = ReplyURL(activity)
	assert.Error(t, err)
}

func TestConnectorClient_SendReply(t *testing.T) {
	var gotPath, gotAuth string
	var got models.Activity
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	incoming := messageActivity("hello")
	incoming.ServiceURL = server.URL

	client := NewConnectorClient(server.Client(), "secret")
	require.NoError(t, client.SendReply(context.Background(), incoming, incoming.Reply("Echo: hello", "Echo: hello")))

	assert.Equal(t, "/v3/conversations/conv-1/activities/act-1", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "Echo: hello", got.Text)
	assert.Equal(t, "act-1", got.ReplyToID)
}

func TestConnectorClient_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	incoming := messageActivity("hello")
	incoming.ServiceURL = server.URL
	client := NewConnectorClient(nil, "")

	err := client.SendReply(context.Background(), incoming, incoming.Reply("x", ""))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeReplySendFailed))
	assert.Contains(t, err.Error(), "403")

	server.Close()
	err = client.SendReply(context.Background(), incoming, incoming.Reply("x", ""))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeReplySendFailed))
}

// --- HTTP handler tests ---

func newTestRouter(t *testing.T, answers AnswerSource, sender ReplySender) http.Handler {
	log := logger.NewTestLogger(t)
	r := chi.NewRouter()
	RegisterRoutes(r, NewActivityHandler(NewProcessor(answers, sender, "", log), log), http.NotFoundHandler())
	return r
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestActivityHandler_Message(t *testing.T) {
	sender := &recordingSender{}
	h := newTestRouter(t, newEchoResolver(t), sender)

	rec := post(t, h, `{"type":"message","id":"a1","text":"ping","from":{"id":"u"},"recipient":{"id":"b"},"conversation":{"id":"c"},"serviceUrl":"https://x"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Echo: ping"}, sender.texts())
}

func TestActivityHandler_RejectsInvalidActivities(t *testing.T) {
	bodies := []string{
		`not json`,
		`{"text":"no type"}`,
		`{"type":"message","text":"no conversation"}`,
	}

	for _, body := range bodies {
		sender := &recordingSender{}
		rec := post(t, newTestRouter(t, newEchoResolver(t), sender), body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_ACTIVITY", resp["errorCode"])
		assert.Empty(t, sender.replies)
	}
}

func TestActivityHandler_SendFailureIsBadGateway(t *testing.T) {
	sender := &recordingSender{err: errors.New("down")}
	rec := post(t, newTestRouter(t, newEchoResolver(t), sender), `{"type":"message","text":"x","conversation":{"id":"c"}}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "REPLY_SEND_FAILED")
}

func TestHealthRoute(t *testing.T) {
	h := newTestRouter(t, newEchoResolver(t), &recordingSender{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
