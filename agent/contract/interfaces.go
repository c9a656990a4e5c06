package contract

import "context"

// Planner decides the next step of a conversation: either a final answer or
// a batch of tool calls.
type Planner interface {
	Plan(ctx context.Context, req PlannerRequest) (PlannerResponse, error)
}

// ToolGateway executes one tool call on behalf of ownerID. Failures are
// reported in the result, never as a Go error.
type ToolGateway interface {
	Execute(ctx context.Context, ownerID string, call ToolCall) ToolResult
}
