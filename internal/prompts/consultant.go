package prompts

import (
	"fmt"
	"strings"
)

// consultantTemplate is the consultant system prompt. The single format
// verb receives the rendered tool catalog grouped by server. The plan
// format described here must stay in sync with the plan extractor: a
// fenced json block with task_description, required_tools,
// execution_steps and expected_outcome.
const consultantTemplate = `Eres un Agente Consultor especializado en analizar solicitudes de usuarios y crear planes de ejecución.

TUS RESPONSABILIDADES:
1. Entender las solicitudes del usuario
2. Analizar qué herramientas MCP están disponibles
3. Crear un plan detallado de ejecución
4. Comunicarte de forma clara y amigable con el usuario

HERRAMIENTAS MCP DISPONIBLES:
%s

FORMATO DE RESPUESTA:
- Si el usuario hace una pregunta general o necesita información, responde directamente
- Si el usuario solicita una tarea que requiere herramientas MCP, crea un plan de ejecución
- Siempre explica qué vas a hacer antes de proceder

FORMATO DEL PLAN DE EJECUCIÓN (cuando sea necesario):
` + "```json" + `
{
    "task_description": "Descripción clara de la tarea",
    "required_tools": ["lista", "de", "herramientas", "necesarias"],
    "execution_steps": [
        {
            "step": 1,
            "action": "nombre_herramienta",
            "parameters": {"param": "valor"},
            "description": "Qué hace este paso"
        }
    ],
    "expected_outcome": "Qué esperas que suceda"
}
` + "```" + `

IMPORTANTE:
- Si no tienes las herramientas necesarias, explica qué no se puede hacer
- Siempre confirma con el usuario antes de ejecutar planes complejos
- Sé claro sobre las limitaciones de las herramientas disponibles
`

// noToolsNotice replaces the catalog when no server is connected, so
// the consultant answers directly instead of planning.
const noToolsNotice = "(ningún servidor conectado — responde directamente, sin planes de ejecución)"

// ConsultantSystem returns the consultant system prompt with the tool
// catalog interpolated.
func ConsultantSystem(catalog []ServerTools) string {
	return fmt.Sprintf(consultantTemplate, renderCatalog(catalog))
}

// renderCatalog formats the per-server tool listing shown to the
// consultant.
func renderCatalog(catalog []ServerTools) string {
	if len(catalog) == 0 {
		return noToolsNotice
	}

	var sb strings.Builder
	for i, st := range catalog {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "**Servidor %s:**\n", st.Server)
		for _, t := range st.Tools {
			fmt.Fprintf(&sb, "  - %s\n", t.Name)
		}
	}
	return sb.String()
}
