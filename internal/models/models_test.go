package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	tests := map[string]Strategy{
		"echo":          StrategyEcho,
		" Echo ":        StrategyEcho,
		"direct_lookup": StrategyDirectLookup,
		"Direct-Lookup": StrategyDirectLookup,
		"DirectLookup":  StrategyDirectLookup,
		"qna":           StrategyDirectLookup,
		"orchestration": StrategyOrchestration,
		"orchestrator":  StrategyOrchestration,
	}
	for in, want := range tests {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStrategy("llm")
	assert.EqualError(t, err, `unknown strategy "llm"`)

	assert.False(t, StrategyEcho.RequiresBackend())
	assert.True(t, StrategyDirectLookup.RequiresBackend())
	assert.True(t, StrategyOrchestration.RequiresBackend())
}

func TestKnowledgeBaseAnswer_Text(t *testing.T) {
	var answers []KnowledgeBaseAnswer
	require.NoError(t, json.Unmarshal([]byte(`[{"answer":"X"},{"answer":""},{"answer":null},{"id":1}]`), &answers))

	text, ok := answers[0].Text()
	assert.True(t, ok)
	assert.Equal(t, "X", text)

	for _, a := range answers[1:] {
		_, ok := a.Text()
		assert.False(t, ok)
	}
}

func TestFirstAnswer_DecodesOnlyFirstElement(t *testing.T) {
	var answers []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`[{"answer":"X","source":123,"id":"kb-1"},{"confidenceScore":"high"}]`), &answers))

	text, ok := FirstAnswer(answers)
	assert.True(t, ok)
	assert.Equal(t, "X", text)

	_, ok = FirstAnswer(nil)
	assert.False(t, ok)
}

func TestFirstResolutionValue(t *testing.T) {
	var entities []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`[{"category":7,"text":3,"resolutions":[{"resolutionKind":1,"value":"3pm"},"junk"]},"junk"]`), &entities))

	value, ok := FirstResolutionValue(entities)
	assert.True(t, ok)
	assert.Equal(t, "3pm", value)

	_, ok = FirstResolutionValue([]json.RawMessage{json.RawMessage(`{"resolutions":[]}`)})
	assert.False(t, ok)
}

func TestResolution_ValueText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{`"3pm"`, "3pm", true},
		{`"  "`, "  ", true},
		{`""`, "", false},
		{`15`, "15", true},
		{`1.5`, "1.5", true},
		{`true`, "true", true},
		{`null`, "", false},
		{``, "", false},
		{`{"hour":3}`, "", false},
		{`["3pm"]`, "", false},
	}

	for _, tt := range tests {
		got, ok := Resolution{Value: json.RawMessage(tt.raw)}.ValueText()
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestActivity_Reply(t *testing.T) {
	in := &Activity{
		Type:         ActivityTypeMessage,
		ID:           "a1",
		ServiceURL:   "https://smba.example.com",
		ChannelID:    "webchat",
		From:         ChannelAccount{ID: "user"},
		Recipient:    ChannelAccount{ID: "bot"},
		Conversation: ConversationAccount{ID: "c1"},
		Locale:       "en-US",
		Text:         "hi",
	}

	reply := in.Reply("hello", "hello")
	assert.Equal(t, ActivityTypeMessage, reply.Type)
	assert.Equal(t, "bot", reply.From.ID)
	assert.Equal(t, "user", reply.Recipient.ID)
	assert.Equal(t, "c1", reply.Conversation.ID)
	assert.Equal(t, "a1", reply.ReplyToID)
	assert.Equal(t, "hello", reply.Speak)
	assert.Equal(t, "acceptingInput", reply.InputHint)
	assert.Empty(t, reply.ID)
}
