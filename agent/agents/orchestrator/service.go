package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/contract"
	nodex "github.com/tanpawarit/Freight-Shipment-Assistant/agent/nodes/orchestrator"
	promptx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/prompt"
	toolx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/tool"
	logx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/logger"
	metricsx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/metrics"
)

var (
	ErrUnauthorized   = contractx.ErrUnauthorized
	ErrInvalidMessage = contractx.ErrInvalidMessage
	ErrIterationLimit = contractx.ErrIterationLimit
)

type Config struct {
	// MaxIterations caps planner rounds per request. Zero means the default.
	MaxIterations int
	// SystemPrompt overrides the embedded assistant prompt.
	SystemPrompt string
	// Tools overrides the shipment tool catalog.
	Tools []*schema.ToolInfo
}

// Orchestrator answers one chat message by looping planner and tools.
type Orchestrator struct {
	planner contractx.Planner
	tools   contractx.ToolGateway
	loop    nodex.LoopConfig

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(planner contractx.Planner, tools contractx.ToolGateway, cfg Config) (*Orchestrator, error) {
	if planner == nil {
		return nil, errors.New("planner is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}

	system := strings.TrimSpace(cfg.SystemPrompt)
	if system == "" {
		prompts := promptx.LoadPromptSet()
		if err := prompts.Validate(); err != nil {
			return nil, err
		}
		system = prompts.Assistant
	}
	catalog := cfg.Tools
	if len(catalog) == 0 {
		catalog = toolx.Catalog()
	}
	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = nodex.DefaultMaxIterations
	}

	o := &Orchestrator{
		planner: planner,
		tools:   tools,
		loop: nodex.LoopConfig{
			System:        system,
			Tools:         catalog,
			MaxIterations: maxIterations,
		},
		now: time.Now,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

func (o *Orchestrator) HandleMessage(ctx context.Context, ownerID string, text string) (string, error) {
	start := time.Now()
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		OwnerID: ownerID,
		Text:    text,
	})
	if err != nil {
		metricsx.RecordChatTurn(outcome(err), 0)
		logx.FromContext(ctx).Warn().
			Err(err).
			Str("owner_id", ownerID).
			Msg("chat turn failed")
		return "", err
	}

	metricsx.RecordChatTurn("ok", out.Rounds)
	logx.FromContext(ctx).Info().
		Str("owner_id", ownerID).
		Int("rounds", out.Rounds).
		Int("tool_calls", out.ToolCalls).
		Dur("took", time.Since(start)).
		Msg("chat turn completed")
	return out.Reply, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, contractx.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, contractx.ErrInvalidMessage):
		return "invalid"
	case errors.Is(err, contractx.ErrIterationLimit):
		return "iteration_limit"
	case errors.Is(err, contractx.ErrSchemaViolation):
		return "schema_violation"
	default:
		return "error"
	}
}
