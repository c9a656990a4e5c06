package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/contract"
	logx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/logger"
)

type LoopConfig struct {
	System        string
	Tools         []*schema.ToolInfo
	MaxIterations int
}

// PlanActObserve drives the planner until it stops asking for tools.
// Every tool call of a round runs sequentially in emitted order; the
// assistant turn is appended verbatim, followed by one observation turn
// holding all results. A round that still wants tools after MaxIterations
// rounds fails with ErrIterationLimit and its calls are not executed.
func PlanActObserve(
	ctx context.Context,
	in *GraphState,
	planner contractx.Planner,
	tools contractx.ToolGateway,
	cfg LoopConfig,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if len(in.History) == 0 {
		in.History = []contractx.Message{contractx.UserText(in.Text)}
	}
	maxIterations := resolveMaxIterations(cfg.MaxIterations)
	logger := logx.FromContext(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		in.Rounds++
		resp, err := planner.Plan(ctx, contractx.PlannerRequest{
			System:  cfg.System,
			History: in.History,
			Tools:   cfg.Tools,
		})
		if err != nil {
			if errors.Is(err, contractx.ErrModelInvoke) || errors.Is(err, contractx.ErrSchemaViolation) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: round %d: %v", contractx.ErrModelInvoke, in.Rounds, err)
		}

		if !resp.WantsTools() {
			in.Answer = resp.Content
			logger.Debug().
				Str("owner_id", in.OwnerID).
				Int("iteration", in.Rounds).
				Str("stop_reason", resp.StopReason).
				Msg("planner finished")
			return in, nil
		}

		if in.Rounds >= maxIterations {
			return nil, fmt.Errorf("%w: planner still requested %d tool call(s) after %d rounds",
				contractx.ErrIterationLimit, len(resp.ToolCalls), in.Rounds)
		}

		results := make([]contractx.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			result := tools.Execute(ctx, in.OwnerID, call)
			results = append(results, result)
			logger.Debug().
				Str("owner_id", in.OwnerID).
				Int("iteration", in.Rounds).
				Str("tool", call.Name).
				Str("call_id", call.ID).
				Bool("is_error", result.IsError).
				Msg("tool call observed")
		}
		in.ToolCalls += len(results)

		in.History = append(in.History,
			contractx.Message{
				Role:      contractx.RoleAssistant,
				Content:   resp.Content,
				ToolCalls: resp.ToolCalls,
			},
			contractx.Observation(results),
		)
	}
}
