// Package agent implements the consultant/executor orchestration that
// turns a user query into an answer, calling MCP tools when a plan
// requires them.
package agent

import (
	"encoding/json"
	"strings"
)

// PlanStep is one step of an execution plan.
type PlanStep struct {
	Step        int            `json:"step"`
	Action      string         `json:"action"`
	Parameters  map[string]any `json:"parameters"`
	Description string         `json:"description"`
}

// TaskPlan is the structured plan the consultant emits when a request
// needs tools.
type TaskPlan struct {
	TaskDescription string     `json:"task_description"`
	RequiredTools   []string   `json:"required_tools"`
	ExecutionSteps  []PlanStep `json:"execution_steps"`
	ExpectedOutcome string     `json:"expected_outcome"`
}

// StepLines returns one human-readable line per step, preferring the
// description and falling back to the action name.
func (p *TaskPlan) StepLines() []string {
	lines := make([]string, 0, len(p.ExecutionSteps))
	for _, step := range p.ExecutionSteps {
		line := step.Description
		if line == "" {
			line = step.Action
		}
		lines = append(lines, line)
	}
	return lines
}

// ExtractPlan pulls an execution plan out of a consultant response.
// The plan travels in the first fenced json block; a response without
// one, or with malformed JSON inside it, yields nil — the response is
// then treated as a direct answer.
func ExtractPlan(response string) *TaskPlan {
	var jsonLines []string
	inBlock := false

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case !inBlock && strings.HasPrefix(trimmed, "```json"):
			inBlock = true
		case inBlock && trimmed == "```":
			return parsePlan(strings.Join(jsonLines, "\n"))
		case inBlock:
			jsonLines = append(jsonLines, line)
		}
	}

	return nil
}

func parsePlan(raw string) *TaskPlan {
	var plan TaskPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil
	}
	return &plan
}
