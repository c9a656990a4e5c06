package contract

import (
	"github.com/cloudwego/eino/schema"
)

type AgentType string

const (
	AgentTypeAssistant AgentType = "assistant"
	AgentTypeExtractor AgentType = "extractor"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the per-request history. An assistant turn may carry
// ToolCalls; the user turn that follows it carries their ToolResults as a
// single combined observation.
type Message struct {
	Role        Role         `json:"role"`
	Content     string       `json:"content,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

func UserText(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// Observation builds the combined observation turn for one planner round.
func Observation(results []ToolResult) Message {
	return Message{Role: RoleUser, ToolResults: results}
}

type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	CallID  string `json:"call_id"`
	Tool    string `json:"tool"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

type PlannerRequest struct {
	System  string             `json:"system"`
	History []Message          `json:"history"`
	Tools   []*schema.ToolInfo `json:"-"`
}

type PlannerResponse struct {
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	StopReason string     `json:"stop_reason,omitempty"`
}

// WantsTools reports whether the planner asked for at least one tool call.
func (r PlannerResponse) WantsTools() bool {
	return len(r.ToolCalls) > 0
}
