// Agentes is an interactive chat assistant that answers through an
// OpenAI-compatible model and can act on the world through MCP tool
// servers launched as local subprocesses.
//
// Configuration is loaded from a single YAML file discovered
// automatically (see [config.DefaultSearchPaths]).
//
// Usage:
//
//	agentes                  Start the interactive chat
//	agentes -config FILE     Use an explicit config file
//	agentes version          Print version and build information
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/facuros/agentes/internal/agent"
	"github.com/facuros/agentes/internal/buildinfo"
	"github.com/facuros/agentes/internal/config"
	"github.com/facuros/agentes/internal/llm"
	"github.com/facuros/agentes/internal/mcp"
	"github.com/facuros/agentes/internal/prompts"
	"github.com/facuros/agentes/internal/repl"
	"github.com/facuros/agentes/internal/session"
	"github.com/facuros/agentes/internal/tools"
)

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run]. This keeps
// os.Exit, os.Stdin, and os.Args out of the application logic so that
// the full startup-to-shutdown lifecycle can be driven from tests.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point for the agentes command. All OS-level
// dependencies are injected as parameters:
//
//   - ctx controls the lifetime of the process. Cancelling it (or a
//     SIGINT/SIGTERM) triggers graceful shutdown of the MCP subprocesses.
//   - stdin feeds the chat loop; stdout receives chat output; stderr
//     receives structured logs and fatal error messages.
//   - args is os.Args[1:]. We parse these manually rather than using the
//     flag package to avoid global state that interferes with parallel
//     tests.
//
// run returns nil on clean shutdown and a non-nil error for any failure.
// The caller (main) is responsible for printing the error and exiting.
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) error {
	var configPath string
	var command string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++ // skip the value
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	switch command {
	case "":
		return runChat(ctx, stdin, stdout, stderr, configPath)
	case "version":
		fmt.Fprintln(stdout, buildinfo.String())
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) error {
	fmt.Fprint(w, `agentes - asistente de chat con herramientas MCP

Uso:
  agentes                  Iniciar el chat interactivo
  agentes -config FILE     Usar un archivo de configuración explícito
  agentes version          Mostrar versión y datos de compilación

Dentro del chat, escribe 'help' para ver los comandos disponibles.
`)
	return nil
}

// openArchive creates the data directory and opens the session archive
// inside it.
func openArchive(dataDir string) (*session.Archive, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	archive, err := session.NewArchive(filepath.Join(dataDir, "agentes.db"))
	if err != nil {
		return nil, fmt.Errorf("open session archive: %w", err)
	}
	return archive, nil
}

// runChat wires the whole application together and blocks until the
// chat loop ends. Startup order: config, logging, archive, sessions,
// MCP connections (degrading per server), tool bridging, model client,
// orchestrator, loop. Everything is torn down on the way out.
func runChat(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, configPath string) error {
	path, err := config.FindConfig(configPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
	slog.SetDefault(logger)

	logger.Info("starting agentes",
		"version", buildinfo.Version,
		"config", path,
		"servers", len(cfg.MCPServers),
	)

	// SIGINT/SIGTERM cancel the context, which ends the loop and runs
	// the deferred teardown.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Session archive is optional: without data_dir the sessions live
	// in memory only. An archive that cannot be opened is reported and
	// the chat still starts, memory-only.
	var recorder session.Recorder
	var archiveRecorder agent.ToolCallRecorder
	if cfg.DataDir != "" {
		archive, err := openArchive(cfg.DataDir)
		if err != nil {
			logger.Warn("session archive unavailable, continuing in memory", "error", err)
			fmt.Fprintf(stdout, "❌ %v\n", err)
		} else {
			defer archive.Close()
			recorder = archive
			archiveRecorder = archive
		}
	}

	sessions := session.NewManager(recorder)
	initial, err := sessions.New()
	if err != nil {
		return err
	}

	// Connect MCP servers in name order so startup output and the tool
	// catalog are stable across runs.
	names := make([]string, 0, len(cfg.MCPServers))
	for name := range cfg.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]mcp.ServerConfig, 0, len(names))
	for _, name := range names {
		spec := cfg.MCPServers[name]
		specs = append(specs, mcp.ServerConfig{
			Name:        name,
			Command:     spec.Command,
			Args:        spec.Args,
			Env:         spec.Env,
			Description: spec.Description,
		})
	}

	manager := mcp.NewManager(logger)
	defer func() {
		if err := manager.CloseAll(); err != nil {
			logger.Warn("error closing MCP connections", "error", err)
		}
	}()

	for _, connErr := range manager.ConnectAll(ctx, specs) {
		fmt.Fprintf(stdout, "❌ %v\n", connErr)
	}

	registry := tools.NewRegistry()
	var catalog []prompts.ServerTools
	for _, conn := range manager.Connections() {
		mcp.BridgeTools(conn, registry, logger)

		st := prompts.ServerTools{
			Server:      conn.Config.Name,
			Description: conn.Config.Description,
		}
		for _, td := range conn.Tools {
			st.Tools = append(st.Tools, prompts.ToolInfo{
				Name:        mcp.ToolName(conn.Config.Name, td.Name),
				Description: td.Description,
			})
		}
		catalog = append(catalog, st)
	}

	model := llm.NewOpenAIClient(llm.OpenAIOptions{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		Logger:      logger,
	})

	orchestrator := agent.New(agent.Options{
		Model:         model,
		Registry:      registry,
		Sessions:      sessions,
		Catalog:       catalog,
		MaxToolRounds: cfg.MaxToolRounds,
		Recorder:      archiveRecorder,
		Logger:        logger,
	})

	fmt.Fprintln(stdout, "✅ Aplicación inicializada correctamente")
	fmt.Fprintf(stdout, "🆔 Sesión actual: %s\n", initial.ID)

	app := &repl.App{
		Sessions:  sessions,
		Processor: orchestrator,
		Catalog:   catalog,
		In:        stdin,
		Out:       stdout,
		Logger:    logger,
	}

	err = app.Run(ctx)
	if errors.Is(err, context.Canceled) {
		// Ctrl-C is a normal way to leave.
		return nil
	}
	return err
}
