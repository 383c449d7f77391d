package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"chartchat/internal/chart"
	"chartchat/internal/config"
	"chartchat/internal/dataset"
)

type mockLLM struct {
	responses []openai.ChatCompletionResponse
	err       error
	requests  []openai.ChatCompletionRequest
}

func (m *mockLLM) CreateChatCompletion(ctx context.Context, r openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.requests = append(m.requests, r)
	if m.err != nil {
		return openai.ChatCompletionResponse{}, m.err
	}
	if len(m.responses) == 0 {
		panic("mockLLM: no more responses configured")
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
	}
}

func newTestOrchestrator(m *mockLLM) *Orchestrator {
	return New(m, config.LLMConfig{Model: "gpt-3.5-turbo", Temperature: 0.3, MaxTokens: 2000})
}

func TestGenerateOrAdjust_FreshBarChart(t *testing.T) {
	content := `{"charts":[{"type":"bar","title":"Sales by product","data":[{"name":"Product A","value":1200},{"name":"Product B","value":1900}]}],"isAdjustment":false}`
	m := &mockLLM{responses: []openai.ChatCompletionResponse{textResponse(content)}}
	o := newTestOrchestrator(m)

	res, err := o.GenerateOrAdjust(context.Background(), Request{
		UserMessage: "bar chart with Product A (1200) and Product B (1900)",
	})
	require.NoError(t, err)
	require.False(t, res.IsAdjustment)
	require.Len(t, res.Charts, 1)
	require.Equal(t, chart.TypeBar, res.Charts[0].Type)
	require.Len(t, res.Charts[0].Data, 2)
	require.Equal(t, float64(1200), res.Charts[0].Data[0].Value)
	require.Equal(t, float64(1900), res.Charts[0].Data[1].Value)

	require.Len(t, m.requests, 1)
	req := m.requests[0]
	require.Equal(t, float32(0.3), req.Temperature)
	require.Equal(t, 2000, req.MaxTokens)
	require.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	last := req.Messages[len(req.Messages)-1]
	require.Equal(t, openai.ChatMessageRoleUser, last.Role)
	require.Equal(t, "bar chart with Product A (1200) and Product B (1900)", last.Content)
}

func TestGenerateOrAdjust_AdjustmentTurn(t *testing.T) {
	current := []chart.Spec{{Type: chart.TypeBar, Title: "Sales", Data: []chart.DataPoint{{Name: "A", Value: 1}}}}
	content := `{"charts":[{"type":"bar","title":"Sales","data":[{"name":"A","value":1}],"colors":["#3b82f6"]}],"isAdjustment":true,"explanation":"recolored"}`
	m := &mockLLM{responses: []openai.ChatCompletionResponse{textResponse(content)}}
	o := newTestOrchestrator(m)

	res, err := o.GenerateOrAdjust(context.Background(), Request{
		UserMessage:   "make it blue",
		CurrentCharts: current,
	})
	require.NoError(t, err)
	require.True(t, res.IsAdjustment)
	require.Equal(t, "recolored", res.Explanation)

	// The active chart set must be embedded in the system instruction.
	require.Contains(t, m.requests[0].Messages[0].Content, "Active chart set")
	require.Contains(t, m.requests[0].Messages[0].Content, "Sales")
}

func TestGenerateOrAdjust_SalvagesWrappedJSON(t *testing.T) {
	content := `Here is the result: {"charts": [], "isAdjustment": false}`
	m := &mockLLM{responses: []openai.ChatCompletionResponse{textResponse(content)}}
	o := newTestOrchestrator(m)

	res, err := o.GenerateOrAdjust(context.Background(), Request{UserMessage: "hi"})
	require.NoError(t, err)
	require.Empty(t, res.Charts)
	require.False(t, res.IsAdjustment)
}

func TestGenerateOrAdjust_EmptyContent(t *testing.T) {
	for name, resp := range map[string]openai.ChatCompletionResponse{
		"blank content": textResponse("   "),
		"no choices":    {},
	} {
		m := &mockLLM{responses: []openai.ChatCompletionResponse{resp}}
		o := newTestOrchestrator(m)
		_, err := o.GenerateOrAdjust(context.Background(), Request{UserMessage: "hi"})
		var failure *Failure
		require.ErrorAs(t, err, &failure, name)
		require.Equal(t, ReasonEmptyResponse, failure.Reason, name)
	}
}

func TestGenerateOrAdjust_UnparsableContent(t *testing.T) {
	m := &mockLLM{responses: []openai.ChatCompletionResponse{textResponse("I cannot produce JSON today.")}}
	o := newTestOrchestrator(m)
	_, err := o.GenerateOrAdjust(context.Background(), Request{UserMessage: "hi"})
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, ReasonUnparsableResponse, failure.Reason)
}

func TestGenerateOrAdjust_TransportFailure(t *testing.T) {
	cause := errors.New("connection reset")
	m := &mockLLM{err: cause}
	o := newTestOrchestrator(m)
	_, err := o.GenerateOrAdjust(context.Background(), Request{UserMessage: "hi"})
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, ReasonTransportFailure, failure.Reason)
	require.ErrorIs(t, err, cause)
}

func TestGenerateOrAdjust_HistoryWindow(t *testing.T) {
	var history []chart.ConversationMessage
	for i := 0; i < 7; i++ {
		role := chart.RoleUser
		if i%2 == 1 {
			role = chart.RoleAssistant
		}
		history = append(history, chart.ConversationMessage{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}
	m := &mockLLM{responses: []openai.ChatCompletionResponse{textResponse(`{"charts":[]}`)}}
	o := newTestOrchestrator(m)

	_, err := o.GenerateOrAdjust(context.Background(), Request{UserMessage: "now", History: history})
	require.NoError(t, err)

	msgs := m.requests[0].Messages
	require.Len(t, msgs, 1+5+1, "system + last five turns + current message")
	require.Equal(t, "turn 2", msgs[1].Content)
	require.Equal(t, openai.ChatMessageRoleAssistant, msgs[2].Role)
	require.Equal(t, "turn 6", msgs[5].Content)
	require.Equal(t, "now", msgs[6].Content)
}

func TestGenerateOrAdjust_DatasetSummaryIsBounded(t *testing.T) {
	tab := &dataset.Tabular{Filename: "big.csv", Columns: []string{"n"}}
	for i := 0; i < 20; i++ {
		tab.Records = append(tab.Records, dataset.Record{"n": float64(i)})
	}
	m := &mockLLM{responses: []openai.ChatCompletionResponse{textResponse(`{"charts":[]}`)}}
	o := newTestOrchestrator(m)

	_, err := o.GenerateOrAdjust(context.Background(), Request{UserMessage: "plot n", Dataset: tab})
	require.NoError(t, err)

	system := m.requests[0].Messages[0].Content
	require.Contains(t, system, "big.csv")
	require.Contains(t, system, "+5 more rows")
	require.NotContains(t, system, `{"n": 15}`, "rows past the cap must not be embedded")
}

func TestDecodeResult_Defaults(t *testing.T) {
	res, ok := decodeResult(`{"explanation":"nothing to chart"}`)
	require.True(t, ok)
	require.NotNil(t, res.Charts)
	require.Empty(t, res.Charts)
	require.False(t, res.IsAdjustment)
	require.Equal(t, "nothing to chart", res.Explanation)
}

func TestDecodeResult_ModelErrorPassesThrough(t *testing.T) {
	res, ok := decodeResult(`{"charts": [], "error": "request was not a chart"}`)
	require.True(t, ok)
	require.Equal(t, "request was not a chart", res.ErrorMessage)
}

func TestBalancedObject_BracesInsideStrings(t *testing.T) {
	frag, ok := balancedObject(`noise {"a": "curly } brace", "b": {"c": 1}} trailing`)
	require.True(t, ok)
	require.Equal(t, `{"a": "curly } brace", "b": {"c": 1}}`, string(frag))
}
