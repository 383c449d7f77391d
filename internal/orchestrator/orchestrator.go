// Package orchestrator assembles the bounded conversation, invokes the
// completion service and decodes its output into a typed result. It is the
// only component with a suspension point (the outbound call) and it never
// mutates history.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/qmuntal/stateless"
	"github.com/sashabaranov/go-openai"

	"chartchat/internal/chart"
	"chartchat/internal/config"
	"chartchat/internal/dataset"
	"chartchat/internal/llm"
	"chartchat/internal/logger"
	"chartchat/internal/prompt"
)

const (
	// summaryRowCap bounds the dataset rendering embedded in the prompt.
	summaryRowCap = 15
	// historyWindow bounds how many prior conversation turns are sent.
	historyWindow = 5
)

// Reason classifies completion failures.
type Reason string

const (
	ReasonEmptyResponse      Reason = "empty_response"
	ReasonUnparsableResponse Reason = "unparsable_response"
	ReasonTransportFailure   Reason = "transport_failure"
)

// Failure is the typed error returned for any completion fault. Raw transport
// errors never escape this package.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	switch f.Reason {
	case ReasonEmptyResponse:
		return "completion service returned empty content"
	case ReasonUnparsableResponse:
		return "completion content could not be decoded as a chart response"
	case ReasonTransportFailure:
		return fmt.Sprintf("completion call failed: %v", f.Err)
	}
	return string(f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

// Request carries one generation turn.
type Request struct {
	UserMessage   string
	History       []chart.ConversationMessage
	CurrentCharts []chart.Spec
	Dataset       *dataset.Tabular
}

// Result is a successfully decoded model response. ErrorMessage passes the
// model's own refusal through; the decode itself still succeeded.
type Result struct {
	Charts       []chart.Spec
	IsAdjustment bool
	Explanation  string
	ErrorMessage string
}

// Orchestrator drives generate-or-adjust turns against one completion client.
type Orchestrator struct {
	client llm.Client
	cfg    config.LLMConfig
}

// New creates an orchestrator. Zero sampling settings fall back to the fixed
// low-temperature defaults.
func New(client llm.Client, cfg config.LLMConfig) *Orchestrator {
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	return &Orchestrator{client: client, cfg: cfg}
}

// Flow states
type flowState stateless.State

var (
	stateReadyToCallLLM   flowState = "ReadyToCallLLM"
	stateDecodingResponse flowState = "DecodingResponse"
	stateDone             flowState = "Done"
	stateFailed           flowState = "Failed"
)

// Flow triggers
type flowTrigger stateless.Trigger

var (
	triggerProcessInput       flowTrigger = "ProcessInput"
	triggerCompletionReceived flowTrigger = "CompletionReceived"
	triggerDecodeSucceeded    flowTrigger = "DecodeSucceeded"
	triggerFailureOccurred    flowTrigger = "FailureOccurred"
)

// GenerateOrAdjust runs one turn: summarize the dataset (if any), build the
// system instruction, call the completion service and decode the content.
// On failure the returned error is always a *Failure.
func (o *Orchestrator) GenerateOrAdjust(ctx context.Context, req Request) (*Result, error) {
	summary := ""
	if req.Dataset != nil {
		summary = dataset.Summarize(req.Dataset, summaryRowCap)
	}
	system := prompt.Build(req.Dataset != nil, summary, req.CurrentCharts)
	messages := assembleMessages(system, req.History, req.UserMessage)

	type flowContext struct {
		content string
		result  *Result
		failure *Failure
	}
	fc := &flowContext{}

	fsm := stateless.NewStateMachine(stateReadyToCallLLM)

	fsm.Configure(stateReadyToCallLLM).
		PermitReentry(triggerProcessInput).
		OnEntry(func(ctx context.Context, _ ...any) error {
			resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model:       o.cfg.Model,
				Messages:    messages,
				Temperature: o.cfg.Temperature,
				MaxTokens:   o.cfg.MaxTokens,
			})
			if err != nil {
				logger.L.Error("completion call failed", "error", err)
				fc.failure = &Failure{Reason: ReasonTransportFailure, Err: err}
				return fsm.FireCtx(ctx, triggerFailureOccurred)
			}
			if len(resp.Choices) > 0 {
				fc.content = resp.Choices[0].Message.Content
			}
			return fsm.FireCtx(ctx, triggerCompletionReceived)
		}).
		Permit(triggerCompletionReceived, stateDecodingResponse).
		Permit(triggerFailureOccurred, stateFailed)

	fsm.Configure(stateDecodingResponse).
		OnEntry(func(ctx context.Context, _ ...any) error {
			if strings.TrimSpace(fc.content) == "" {
				fc.failure = &Failure{Reason: ReasonEmptyResponse}
				return fsm.FireCtx(ctx, triggerFailureOccurred)
			}
			result, ok := decodeResult(fc.content)
			if !ok {
				logger.L.Warn("undecodable completion content", "content", fc.content)
				fc.failure = &Failure{Reason: ReasonUnparsableResponse}
				return fsm.FireCtx(ctx, triggerFailureOccurred)
			}
			fc.result = result
			return fsm.FireCtx(ctx, triggerDecodeSucceeded)
		}).
		Permit(triggerDecodeSucceeded, stateDone).
		Permit(triggerFailureOccurred, stateFailed)

	fsm.Configure(stateDone)
	fsm.Configure(stateFailed)

	if err := fsm.FireCtx(ctx, triggerProcessInput); err != nil {
		if fc.failure != nil {
			return nil, fc.failure
		}
		return nil, fmt.Errorf("generation flow error: %w", err)
	}

	state, err := fsm.State(ctx)
	if err != nil {
		return nil, fmt.Errorf("generation flow internal error: %w", err)
	}
	switch state {
	case stateDone:
		return fc.result, nil
	case stateFailed:
		if fc.failure == nil {
			fc.failure = &Failure{Reason: ReasonUnparsableResponse}
		}
		return nil, fc.failure
	}
	return nil, fmt.Errorf("generation flow ended in unexpected state: %v", state)
}

// assembleMessages orders the outbound sequence: system instruction, the most
// recent history entries in chronological order, then the current message.
func assembleMessages(system string, history []chart.ConversationMessage, userMessage string) []openai.ChatCompletionMessage {
	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(recent)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range recent {
		role := openai.ChatMessageRoleUser
		if m.Role == chart.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})
	return messages
}
