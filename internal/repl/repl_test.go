package repl

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/facuros/agentes/internal/prompts"
	"github.com/facuros/agentes/internal/session"
)

// scriptedProcessor returns canned responses and records the inputs it
// received.
type scriptedProcessor struct {
	response string
	err      error

	sessionIDs []string
	inputs     []string
}

func (p *scriptedProcessor) Process(_ context.Context, sessionID, input string) (string, error) {
	p.sessionIDs = append(p.sessionIDs, sessionID)
	p.inputs = append(p.inputs, input)
	return p.response, p.err
}

func newTestApp(t *testing.T, input string, proc Processor) (*App, *bytes.Buffer) {
	t.Helper()

	sessions := session.NewManager(nil)
	if _, err := sessions.New(); err != nil {
		t.Fatalf("New() error: %v", err)
	}

	out := &bytes.Buffer{}
	app := &App{
		Sessions:  sessions,
		Processor: proc,
		In:        strings.NewReader(input),
		Out:       out,
	}
	return app, out
}

func TestRun_QuitTokens(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"quit", "exit", "salir"} {
		app, out := newTestApp(t, token+"\n", &scriptedProcessor{})
		if err := app.Run(context.Background()); err != nil {
			t.Fatalf("Run() with %q error: %v", token, err)
		}
		if !strings.Contains(out.String(), "¡Hasta luego!") {
			t.Errorf("no farewell after %q", token)
		}
	}
}

func TestRun_EOFBehavesLikeQuit(t *testing.T) {
	t.Parallel()

	app, out := newTestApp(t, "", &scriptedProcessor{})
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(out.String(), "¡Hasta luego!") {
		t.Error("no farewell on EOF")
	}
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	app, out := newTestApp(t, "help\nquit\n", &scriptedProcessor{})
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for _, want := range []string{"help", "tools", "new", "sessions", "quit/exit"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestRun_ToolsWithCatalog(t *testing.T) {
	t.Parallel()

	app, out := newTestApp(t, "tools\nquit\n", &scriptedProcessor{})
	app.Catalog = []prompts.ServerTools{
		{Server: "brave-search", Description: "búsqueda web", Tools: []prompts.ToolInfo{
			{Name: "mcp_brave_search_web", Description: "busca en la web"},
		}},
	}

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Servidor: brave-search (búsqueda web)") {
		t.Error("tools output missing server heading")
	}
	if !strings.Contains(got, "mcp_brave_search_web - busca en la web") {
		t.Error("tools output missing tool line")
	}
}

func TestRun_ToolsEmptyCatalog(t *testing.T) {
	t.Parallel()

	app, out := newTestApp(t, "tools\nquit\n", &scriptedProcessor{})
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(out.String(), "No hay herramientas disponibles") {
		t.Error("empty catalog message missing")
	}
}

func TestRun_NewSwitchesActiveSession(t *testing.T) {
	t.Parallel()

	proc := &scriptedProcessor{response: "ok"}
	app, out := newTestApp(t, "new\nhola\nquit\n", proc)
	first := app.Sessions.ActiveID()

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !strings.Contains(out.String(), "Nueva sesión creada:") {
		t.Error("new session confirmation missing")
	}

	// The query after `new` must land on the new session.
	if len(proc.sessionIDs) != 1 {
		t.Fatalf("processor saw %d queries, want 1", len(proc.sessionIDs))
	}
	if proc.sessionIDs[0] == first {
		t.Error("query went to the old session")
	}
	if proc.sessionIDs[0] != app.Sessions.ActiveID() {
		t.Error("query did not go to the active session")
	}
}

func TestRun_SessionsListing(t *testing.T) {
	t.Parallel()

	app, out := newTestApp(t, "new\nsessions\nquit\n", &scriptedProcessor{})
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Sesiones activas: (2)") {
		t.Errorf("session count missing:\n%s", got)
	}
	if strings.Count(got, "🟢 ACTUAL") != 1 {
		t.Error("exactly one session should be marked active")
	}
}

func TestRun_QueryRoundTrip(t *testing.T) {
	t.Parallel()

	proc := &scriptedProcessor{response: "La capital es París."}
	app, out := newTestApp(t, "¿capital de Francia?\nquit\n", proc)

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(proc.inputs) != 1 || proc.inputs[0] != "¿capital de Francia?" {
		t.Errorf("processor inputs = %v", proc.inputs)
	}
	if !strings.Contains(out.String(), "La capital es París.") {
		t.Error("response not printed")
	}
}

func TestRun_QueryErrorKeepsLoopAlive(t *testing.T) {
	t.Parallel()

	proc := &scriptedProcessor{err: errors.New("model request failed: connection refused")}
	app, out := newTestApp(t, "hola\nquit\n", proc)

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "❌ Error: model request failed: connection refused") {
		t.Errorf("error line missing:\n%s", got)
	}
	if !strings.Contains(got, "¡Hasta luego!") {
		t.Error("loop did not continue to quit after the error")
	}
}

func TestRun_BlankLinesIgnored(t *testing.T) {
	t.Parallel()

	proc := &scriptedProcessor{response: "ok"}
	app, _ := newTestApp(t, "\n   \nquit\n", proc)

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(proc.inputs) != 0 {
		t.Errorf("blank lines reached the processor: %v", proc.inputs)
	}
}
