package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/facuros/agentes/internal/llm"
	"github.com/facuros/agentes/internal/prompts"
	"github.com/facuros/agentes/internal/session"
	"github.com/facuros/agentes/internal/tools"
)

// DefaultMaxToolRounds caps executor round-trips for a single query.
const DefaultMaxToolRounds = 10

// toolRoundsExhausted is appended to the execution result when the
// model keeps requesting tools past the round cap.
const toolRoundsExhausted = "(se alcanzó el límite de invocaciones de herramientas sin una respuesta final)"

// ToolCallRecorder archives tool invocations made while answering a
// query. *session.Archive satisfies it; nil disables recording.
type ToolCallRecorder interface {
	RecordToolCall(sessionID, toolName, arguments, result, errMsg string, duration time.Duration) error
}

// Options configures an Orchestrator.
type Options struct {
	Model    llm.Client
	Registry *tools.Registry
	Sessions *session.Manager

	// Catalog is the per-server tool listing rendered into the
	// consultant prompt. Order is preserved.
	Catalog []prompts.ServerTools

	// MaxToolRounds caps executor round-trips per query. Zero means
	// DefaultMaxToolRounds.
	MaxToolRounds int

	// Recorder mirrors tool invocations to the archive. May be nil.
	Recorder ToolCallRecorder

	Logger *slog.Logger
}

// Orchestrator coordinates the two model roles. The consultant sees
// the conversation and decides whether a query needs tools, emitting a
// plan when it does; the executor carries plans out through the tool
// registry. Queries run one at a time.
type Orchestrator struct {
	model         llm.Client
	registry      *tools.Registry
	sessions      *session.Manager
	recorder      ToolCallRecorder
	logger        *slog.Logger
	maxToolRounds int

	consultantSystem string
	executorSystem   string
}

// New creates an orchestrator. The tool catalog is rendered into the
// system prompts once, at construction.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxRounds := opts.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}

	var toolInfos []prompts.ToolInfo
	for _, t := range opts.Registry.All() {
		toolInfos = append(toolInfos, prompts.ToolInfo{Name: t.Name, Description: t.Description})
	}

	return &Orchestrator{
		model:            opts.Model,
		registry:         opts.Registry,
		sessions:         opts.Sessions,
		recorder:         opts.Recorder,
		logger:           logger.With("component", "agent"),
		maxToolRounds:    maxRounds,
		consultantSystem: prompts.ConsultantSystem(opts.Catalog),
		executorSystem:   prompts.ExecutorSystem(toolInfos),
	}
}

// Process answers one user query within a session. The user turn is
// recorded first; if the model fails the error comes back with the
// user turn kept and no assistant turn, so the session stays usable.
func (o *Orchestrator) Process(ctx context.Context, sessionID, input string) (string, error) {
	if err := o.sessions.Append(sessionID, llm.RoleUser, input); err != nil {
		return "", err
	}

	consultantReply, err := o.consult(ctx, sessionID)
	if err != nil {
		return "", err
	}
	consultantResponse := consultantReply.Message.Content

	plan := ExtractPlan(consultantResponse)
	if plan == nil || o.registry.Len() == 0 {
		if err := o.sessions.Append(sessionID, llm.RoleAssistant, consultantResponse); err != nil {
			return "", err
		}
		return consultantResponse, nil
	}

	o.logger.Info("execution plan detected",
		"session_id", sessionID,
		"task", plan.TaskDescription,
		"required_tools", plan.RequiredTools,
		"steps", len(plan.ExecutionSteps),
	)

	executionResult, err := o.execute(ctx, sessionID, plan)
	if err != nil {
		return "", err
	}

	final := fmt.Sprintf("**Análisis de la solicitud:**\n%s\n\n**Resultado de la ejecución:**\n%s",
		consultantResponse, executionResult)

	if err := o.sessions.Append(sessionID, llm.RoleAssistant, final); err != nil {
		return "", err
	}
	return final, nil
}

// consult runs the consultant pass over the full session history. The
// consultant never gets tool bindings; it plans, the executor acts.
func (o *Orchestrator) consult(ctx context.Context, sessionID string) (*llm.Reply, error) {
	turns := o.sessions.Turns(sessionID)

	messages := make([]llm.Message, 0, len(turns)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: o.consultantSystem})
	for _, t := range turns {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}

	return o.model.Complete(ctx, messages, nil)
}

// execute runs the executor loop: the model gets the plan and the tool
// bindings, and each round of requested tool calls is dispatched
// through the registry until the model answers in text or the round
// cap is hit.
func (o *Orchestrator) execute(ctx context.Context, sessionID string, plan *TaskPlan) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: o.executorSystem},
		{Role: llm.RoleUser, Content: prompts.ExecutionTask(plan.TaskDescription, plan.StepLines(), plan.ExpectedOutcome)},
	}
	toolSchemas := o.registry.List()

	for round := 0; round < o.maxToolRounds; round++ {
		reply, err := o.model.Complete(ctx, messages, toolSchemas)
		if err != nil {
			return "", err
		}

		if !reply.HasToolCalls() {
			return reply.Message.Content, nil
		}

		messages = append(messages, reply.Message)
		for _, tc := range reply.Message.ToolCalls {
			messages = append(messages, o.dispatch(ctx, sessionID, tc))
		}
	}

	o.logger.Warn("tool round cap reached", "session_id", sessionID, "max_rounds", o.maxToolRounds)
	return toolRoundsExhausted, nil
}

// dispatch runs one requested tool call and wraps the outcome as a
// tool-role message. Tool failures become message content rather than
// errors so the model can react to them.
func (o *Orchestrator) dispatch(ctx context.Context, sessionID string, tc llm.ToolCall) llm.Message {
	o.logger.Debug("executing tool", "session_id", sessionID, "tool", tc.Name)

	start := time.Now()
	result, err := o.registry.Execute(ctx, tc.Name, tc.Arguments)
	elapsed := time.Since(start)

	content := result
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
		content = fmt.Sprintf("Error: %v", err)
		o.logger.Warn("tool execution failed", "tool", tc.Name, "error", err)
	}

	if o.recorder != nil {
		if recErr := o.recorder.RecordToolCall(sessionID, tc.Name, tc.Arguments, result, errMsg, elapsed); recErr != nil {
			o.logger.Warn("tool call not archived", "tool", tc.Name, "error", recErr)
		}
	}

	return llm.Message{Role: llm.RoleTool, Content: content, ToolCallID: tc.ID}
}
