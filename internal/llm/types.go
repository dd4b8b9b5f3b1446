// Package llm provides the model client used by the chat orchestrator.
package llm

// Message roles. These follow the OpenAI chat convention, which every
// supported endpoint speaks.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a chat message exchanged with the model.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // For tool responses
}

// ToolCall represents a tool call requested by the model. Arguments is
// the raw JSON object string as it appears on the wire.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Reply is the unified response from a completion request: either final
// assistant text, or one or more tool-call requests, carried in Message.
type Reply struct {
	Message Message

	// Token usage, when the endpoint reports it.
	InputTokens  int
	OutputTokens int
}

// HasToolCalls reports whether the model requested tool invocations
// instead of (or alongside) a final answer.
func (r *Reply) HasToolCalls() bool {
	return len(r.Message.ToolCalls) > 0
}
