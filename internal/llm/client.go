package llm

import (
	"context"
	"fmt"
)

// Client is the interface the orchestrator uses to talk to a model.
type Client interface {
	// Complete sends the conversation and the available tool schemas and
	// returns the model's reply: final text or tool-call requests.
	// tools uses the OpenAI function-tool JSON shape and may be empty.
	Complete(ctx context.Context, messages []Message, tools []map[string]any) (*Reply, error)
}

// ModelError reports a failed model request (network error, invalid
// key, provider-side failure). It is recoverable: the session loop
// reports it and keeps running.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model request failed: %v", e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}
