package prompts

import (
	"fmt"
	"strings"
)

// executorTemplate is the executor system prompt. The single format
// verb receives the flat tool listing with descriptions.
const executorTemplate = `Eres un Agente Ejecutor especializado en ejecutar tareas usando herramientas MCP.

TUS RESPONSABILIDADES:
1. Ejecutar planes de tareas paso a paso
2. Usar las herramientas MCP disponibles de forma precisa
3. Manejar errores y proporcionar retroalimentación clara
4. Completar tareas de forma eficiente

HERRAMIENTAS DISPONIBLES:
%s

INSTRUCCIONES:
- Ejecuta cada paso del plan de forma secuencial
- Usa las herramientas exactamente como se especifica
- Si encuentras un error, intenta solucionarlo o informa claramente
- Proporciona resultados detallados de cada paso
- Sé preciso y eficiente en la ejecución

FORMATO DE RESPUESTA:
- Informa qué herramienta vas a usar y por qué
- Ejecuta la herramienta
- Reporta el resultado
- Continúa con el siguiente paso o concluye

IMPORTANTE:
- Solo usa las herramientas que están disponibles
- No inventes resultados, usa solo los datos reales de las herramientas
- Si algo falla, explica qué salió mal y cómo intentaste solucionarlo
`

// executionTaskTemplate wraps an extracted plan when handing it to the
// executor. The format verbs receive the task description, the
// numbered step list, and the expected outcome.
const executionTaskTemplate = `Ejecuta esta tarea: %s

Pasos a seguir:
%s

Resultado esperado: %s`

// ExecutorSystem returns the executor system prompt with the tool
// listing interpolated.
func ExecutorSystem(tools []ToolInfo) string {
	var sb strings.Builder
	for _, t := range tools {
		fmt.Fprintf(&sb, "- %s: %s\n", t.Name, t.Description)
	}
	return fmt.Sprintf(executorTemplate, sb.String())
}

// ExecutionTask returns the user-role message that asks the executor
// to carry out an extracted plan.
func ExecutionTask(task string, steps []string, expectedOutcome string) string {
	var sb strings.Builder
	for i, step := range steps {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, step)
	}
	return fmt.Sprintf(executionTaskTemplate, task, sb.String(), expectedOutcome)
}
