package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/gitdraft/internal/config"
	"github.com/hpungsan/gitdraft/internal/gitrepo"
	"github.com/hpungsan/gitdraft/internal/mcp"
	"github.com/hpungsan/gitdraft/internal/ops"
	"github.com/hpungsan/gitdraft/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"propose": true, "approve": true, "reject": true,
	"current": true, "pending": true, "show": true,
	"prompt": true, "web": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// baseDir returns the gitdraft state directory, honoring GITDRAFT_DIR.
func baseDir() (string, error) {
	if dir := os.Getenv("GITDRAFT_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".gitdraft"), nil
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
       _ _      _            __ _
   __ _(_) |_ __| |_ _ __ _ / _| |_
  / _' | |  _/ _' | '_/ _' |  _|  _|
  \__, |_|\__\__,_|_| \__,_|_|  \__|
  |___/

  Propose, review, approve git file changes

  Usage: gitdraft <command> [options]
         gitdraft --help

  MCP server mode requires piped input.`)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before any state init
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	base, err := baseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	st, err := store.New(filepath.Join(base, "pending"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize change store: %v\n", err)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadWithRepo(base, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	gateway := gitrepo.New(gitrepo.Signature{
		Name:  cfg.AuthorName,
		Email: cfg.AuthorEmail,
	})
	workflow := ops.NewWorkflow(st, gateway, cfg)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(workflow)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'gitdraft --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(workflow, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
