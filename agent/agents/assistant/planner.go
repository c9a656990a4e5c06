package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/contract"
	llmx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/llm"
)

var _ contractx.Planner = (*Planner)(nil)

// Planner adapts an eino tool-calling chat model to contract.Planner.
type Planner struct {
	model  einomodel.ToolCallingChatModel
	runner compose.Runnable[contractx.PlannerRequest, *schema.Message]
}

func NewPlanner(ctx context.Context, chatModel einomodel.ToolCallingChatModel) (*Planner, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}

	p := &Planner{model: chatModel}
	runner, err := compilePlanGraph(ctx, toEinoInput, p.generate)
	if err != nil {
		return nil, fmt.Errorf("%w: compile planner graph: %v", contractx.ErrModelInvoke, err)
	}
	p.runner = runner
	return p, nil
}

// NewPlannerFromConfig builds the OpenRouter chat model for the assistant.
func NewPlannerFromConfig(ctx context.Context, cfg llmx.Config) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	orCfg := cfg.OpenRouterFor(contractx.AgentTypeAssistant)
	chatModel, err := orCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return NewPlanner(ctx, chatModel)
}

func (p *Planner) Plan(ctx context.Context, req contractx.PlannerRequest) (contractx.PlannerResponse, error) {
	if len(req.History) == 0 {
		return contractx.PlannerResponse{}, fmt.Errorf("%w: history is required", contractx.ErrValidation)
	}

	msg, err := p.runner.Invoke(ctx, req)
	if err != nil {
		if errors.Is(err, contractx.ErrModelInvoke) || errors.Is(err, contractx.ErrValidation) {
			return contractx.PlannerResponse{}, err
		}
		return contractx.PlannerResponse{}, fmt.Errorf("%w: planner invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.PlannerResponse{}, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
	}
	return parseReply(msg)
}

func (p *Planner) generate(ctx context.Context, in *planInput) (*schema.Message, error) {
	chatModel := p.model
	if len(in.Tools) > 0 {
		bound, err := p.model.WithTools(in.Tools)
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
		}
		chatModel = bound
	}

	msg, err := chatModel.Generate(ctx, in.Messages)
	if err != nil {
		return nil, fmt.Errorf("%w: generate: %v", contractx.ErrModelInvoke, err)
	}
	if msg != nil && msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		log.Debug().
			Int("prompt_tokens", msg.ResponseMeta.Usage.PromptTokens).
			Int("completion_tokens", msg.ResponseMeta.Usage.CompletionTokens).
			Str("finish_reason", msg.ResponseMeta.FinishReason).
			Msg("planner model usage")
	}
	return msg, nil
}

func toEinoInput(req contractx.PlannerRequest) (*planInput, error) {
	msgs := make([]*schema.Message, 0, len(req.History)+1)
	if system := strings.TrimSpace(req.System); system != "" {
		msgs = append(msgs, schema.SystemMessage(system))
	}

	for i, m := range req.History {
		switch m.Role {
		case contractx.RoleUser:
			if len(m.ToolResults) > 0 {
				for _, r := range m.ToolResults {
					msgs = append(msgs, schema.ToolMessage(r.Content, r.CallID))
				}
				continue
			}
			msgs = append(msgs, schema.UserMessage(m.Content))
		case contractx.RoleAssistant:
			calls, err := toEinoToolCalls(m.ToolCalls)
			if err != nil {
				return nil, err
			}
			msgs = append(msgs, schema.AssistantMessage(m.Content, calls))
		default:
			return nil, fmt.Errorf("%w: history[%d] has unknown role %q", contractx.ErrValidation, i, m.Role)
		}
	}

	return &planInput{Messages: msgs, Tools: req.Tools}, nil
}

func toEinoToolCalls(calls []contractx.ToolCall) ([]schema.ToolCall, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	out := make([]schema.ToolCall, 0, len(calls))
	for _, c := range calls {
		args := c.Args
		if args == nil {
			args = map[string]any{}
		}
		raw, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal args for tool=%s: %v", contractx.ErrValidation, c.Name, err)
		}
		out = append(out, schema.ToolCall{
			ID:   c.ID,
			Type: "function",
			Function: schema.FunctionCall{
				Name:      c.Name,
				Arguments: string(raw),
			},
		})
	}
	return out, nil
}

func parseReply(msg *schema.Message) (contractx.PlannerResponse, error) {
	calls, err := fromEinoToolCalls(msg.ToolCalls)
	if err != nil {
		return contractx.PlannerResponse{}, err
	}

	resp := contractx.PlannerResponse{
		Content:   msg.Content,
		ToolCalls: calls,
	}
	if msg.ResponseMeta != nil {
		resp.StopReason = msg.ResponseMeta.FinishReason
	}
	return resp, nil
}

func fromEinoToolCalls(calls []schema.ToolCall) ([]contractx.ToolCall, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	out := make([]contractx.ToolCall, 0, len(calls))
	for _, call := range calls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
			}
			if args == nil {
				args = map[string]any{}
			}
		}

		id := strings.TrimSpace(call.ID)
		if id == "" {
			id = "call_" + uuid.NewString()
		}

		out = append(out, contractx.ToolCall{ID: id, Name: name, Args: args})
	}
	return out, nil
}
