// Package prompts contains the LLM prompt templates used by agentes.
//
// Prompt text is Go code rather than config files because it is program
// logic: templates use fmt.Sprintf interpolation, benefit from
// compile-time embedding, and can be validated by tests. Each agent
// role gets its own file (consultant.go, executor.go) with exported
// functions that accept the dynamic parts and return the fully
// interpolated prompt string.
//
// The prompts are written in Spanish, matching the language the
// assistant speaks to its users.
package prompts
