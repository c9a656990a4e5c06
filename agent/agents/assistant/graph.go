package assistant

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/contract"
)

type planInput struct {
	Messages []*schema.Message
	Tools    []*schema.ToolInfo
}

func compilePlanGraph(
	ctx context.Context,
	build func(contractx.PlannerRequest) (*planInput, error),
	generate func(context.Context, *planInput) (*schema.Message, error),
) (compose.Runnable[contractx.PlannerRequest, *schema.Message], error) {
	graph := compose.NewGraph[contractx.PlannerRequest, *schema.Message]()

	if err := graph.AddLambdaNode("build_messages",
		compose.InvokableLambda(func(ctx context.Context, req contractx.PlannerRequest) (*planInput, error) {
			return build(req)
		}),
	); err != nil {
		return nil, fmt.Errorf("add plan build node: %w", err)
	}
	if err := graph.AddLambdaNode("generate", compose.InvokableLambda(generate)); err != nil {
		return nil, fmt.Errorf("add plan generate node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "build_messages"); err != nil {
		return nil, fmt.Errorf("add plan edge start->build: %w", err)
	}
	if err := graph.AddEdge("build_messages", "generate"); err != nil {
		return nil, fmt.Errorf("add plan edge build->generate: %w", err)
	}
	if err := graph.AddEdge("generate", compose.END); err != nil {
		return nil, fmt.Errorf("add plan edge generate->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("assistant.plan_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile assistant plan graph: %w", err)
	}
	return runner, nil
}
