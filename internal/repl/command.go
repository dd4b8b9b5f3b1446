// Package repl implements the interactive chat loop.
package repl

import "strings"

// CommandKind discriminates what a line of input asks for.
type CommandKind int

const (
	// CommandEmpty is a blank line; the loop reprompts.
	CommandEmpty CommandKind = iota
	// CommandHelp shows the command listing.
	CommandHelp
	// CommandTools shows the tool catalog grouped by server.
	CommandTools
	// CommandNew creates and activates a fresh session.
	CommandNew
	// CommandSessions lists every session.
	CommandSessions
	// CommandQuit ends the loop.
	CommandQuit
	// CommandQuery is anything else: a request for the model.
	CommandQuery
)

// Command is one parsed line of input. Query carries the text only for
// CommandQuery.
type Command struct {
	Kind  CommandKind
	Query string
}

// ParseCommand classifies a raw input line. Command tokens match
// exactly and case-sensitively; any other non-blank line is a query,
// sent to the model verbatim (leading and trailing space trimmed).
func ParseCommand(line string) Command {
	trimmed := strings.TrimSpace(line)

	switch trimmed {
	case "":
		return Command{Kind: CommandEmpty}
	case "help":
		return Command{Kind: CommandHelp}
	case "tools":
		return Command{Kind: CommandTools}
	case "new":
		return Command{Kind: CommandNew}
	case "sessions":
		return Command{Kind: CommandSessions}
	case "quit", "exit", "salir":
		return Command{Kind: CommandQuit}
	default:
		return Command{Kind: CommandQuery, Query: trimmed}
	}
}
