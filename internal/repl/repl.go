package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/facuros/agentes/internal/prompts"
	"github.com/facuros/agentes/internal/session"
)

const banner = `
🚀 Sistema de agentes iniciado
💬 Escribe 'quit', 'exit' o 'salir' para terminar
📋 Escribe 'help' para ver comandos disponibles
`

const helpText = `
🆘 Comandos disponibles:

📝 Comandos del sistema:
   • help          - Mostrar esta ayuda
   • tools         - Mostrar herramientas MCP disponibles
   • new           - Crear nueva sesión de conversación
   • sessions      - Mostrar sesiones activas
   • quit/exit     - Salir de la aplicación

💬 Uso normal:
   • Escribe cualquier solicitud en lenguaje natural
   • El sistema analizará tu solicitud y ejecutará las herramientas necesarias
   • Las conversaciones se mantienen en la sesión actual
`

const farewell = "👋 ¡Hasta luego!"

// Processor answers one query within a session. *agent.Orchestrator
// satisfies it.
type Processor interface {
	Process(ctx context.Context, sessionID, input string) (string, error)
}

// App owns the interactive loop's state: the sessions, the tool
// catalog shown by `tools`, and the processor that answers queries.
type App struct {
	Sessions  *session.Manager
	Processor Processor

	// Catalog is the per-server tool listing, in connection order.
	Catalog []prompts.ServerTools

	In  io.Reader
	Out io.Writer

	Logger *slog.Logger
}

// Run drives the loop until quit, EOF, or context cancellation.
// Recoverable failures (model or tool errors) are printed with a
// leading ❌ and the loop keeps going.
func (a *App) Run(ctx context.Context) error {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fmt.Fprint(a.Out, banner)

	scanner := bufio.NewScanner(a.In)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(a.Out, "\n%s\n", farewell)
			return err
		}

		a.prompt()
		if !scanner.Scan() {
			// EOF behaves like quit.
			fmt.Fprintf(a.Out, "\n%s\n", farewell)
			return scanner.Err()
		}

		cmd := ParseCommand(scanner.Text())
		switch cmd.Kind {
		case CommandEmpty:
			continue
		case CommandHelp:
			fmt.Fprint(a.Out, helpText)
		case CommandTools:
			a.showTools()
		case CommandNew:
			a.newSession()
		case CommandSessions:
			a.showSessions()
		case CommandQuit:
			fmt.Fprintf(a.Out, "%s\n", farewell)
			return nil
		case CommandQuery:
			a.query(ctx, cmd.Query, logger)
		}
	}
}

// prompt is printed only when reading from a terminal, so piped input
// produces clean output.
func (a *App) prompt() {
	f, ok := a.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return
	}
	fmt.Fprint(a.Out, "\n👤 Tú: ")
}

func (a *App) showTools() {
	if len(a.Catalog) == 0 {
		fmt.Fprintln(a.Out, "❌ No hay herramientas disponibles")
		return
	}

	fmt.Fprintln(a.Out, "\n🛠️  Herramientas MCP disponibles:")
	for _, st := range a.Catalog {
		if st.Description != "" {
			fmt.Fprintf(a.Out, "\n📦 Servidor: %s (%s)\n", st.Server, st.Description)
		} else {
			fmt.Fprintf(a.Out, "\n📦 Servidor: %s\n", st.Server)
		}
		for _, t := range st.Tools {
			if t.Description != "" {
				fmt.Fprintf(a.Out, "   • %s - %s\n", t.Name, t.Description)
			} else {
				fmt.Fprintf(a.Out, "   • %s\n", t.Name)
			}
		}
	}
}

func (a *App) newSession() {
	s, err := a.Sessions.New()
	if err != nil {
		fmt.Fprintf(a.Out, "❌ Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.Out, "🆕 Nueva sesión creada: %s\n", s.ID)
}

func (a *App) showSessions() {
	sessions := a.Sessions.List()
	active := a.Sessions.ActiveID()

	fmt.Fprintf(a.Out, "\n💬 Sesiones activas: (%d)\n", len(sessions))
	for _, s := range sessions {
		marker := "⚪"
		if s.ID == active {
			marker = "🟢 ACTUAL"
		}
		fmt.Fprintf(a.Out, "%s %s... - %d turnos\n", marker, s.ShortID(), len(s.Turns))
	}
}

func (a *App) query(ctx context.Context, input string, logger *slog.Logger) {
	response, err := a.Processor.Process(ctx, a.Sessions.ActiveID(), input)
	if err != nil {
		logger.Warn("query failed", "error", err)
		fmt.Fprintf(a.Out, "❌ Error: %v\n", err)
		return
	}
	fmt.Fprintf(a.Out, "\n🤖 Respuesta:\n%s\n", response)
}
