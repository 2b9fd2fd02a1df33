package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/gitdraft/internal/errors"
	"github.com/hpungsan/gitdraft/internal/ops"
	"github.com/hpungsan/gitdraft/internal/web"
)

// defaultSession is the pointer scope used when --session is not given.
// CLI invocations from one shell behave like a single conversation.
const defaultSession = "cli"

// newCLIApp creates the CLI application with all commands.
func newCLIApp(workflow *ops.Workflow) *cli.App {
	app := &cli.App{
		Name:    "gitdraft",
		Usage:   "Propose, review, approve git file changes",
		Version: Version,
		Commands: []*cli.Command{
			proposeCmd(workflow),
			approveCmd(workflow),
			rejectCmd(workflow),
			currentCmd(workflow),
			pendingCmd(workflow),
			showCmd(workflow),
			promptCmd(workflow),
			webCmd(workflow),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// sessionFlag is shared by every command that touches the current pointer.
func sessionFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "session", Aliases: []string{"s"}, Value: defaultSession, Usage: "Session scoping the current-change pointer"}
}

// proposeCmd creates the propose command.
func proposeCmd(workflow *ops.Workflow) *cli.Command {
	return &cli.Command{
		Name:      "propose",
		Usage:     "Propose a whole-file write (reads content from stdin)",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Short summary; used as the commit message"},
			sessionFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path argument is required"))
			}
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("file content must be piped via stdin"))
			}

			content, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			output, err := workflow.Propose(ops.ProposeInput{
				Path:        c.Args().First(),
				Content:     content,
				Description: c.String("description"),
				SessionID:   c.String("session"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// approveCmd creates the approve command.
func approveCmd(workflow *ops.Workflow) *cli.Command {
	return &cli.Command{
		Name:      "approve",
		Usage:     "Apply a pending change: write, stage, and commit unless prompting is on",
		ArgsUsage: "[change-id]",
		Flags:     []cli.Flag{sessionFlag()},
		Action: func(c *cli.Context) error {
			output, err := workflow.Approve(ops.ApproveInput{
				ChangeID:  c.Args().First(),
				SessionID: c.String("session"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// rejectCmd creates the reject command.
func rejectCmd(workflow *ops.Workflow) *cli.Command {
	return &cli.Command{
		Name:      "reject",
		Usage:     "Discard a pending change without touching the file",
		ArgsUsage: "[change-id]",
		Flags:     []cli.Flag{sessionFlag()},
		Action: func(c *cli.Context) error {
			output, err := workflow.Reject(ops.RejectInput{
				ChangeID:  c.Args().First(),
				SessionID: c.String("session"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// currentCmd creates the current command.
func currentCmd(workflow *ops.Workflow) *cli.Command {
	return &cli.Command{
		Name:  "current",
		Usage: "Report the session's current pending change",
		Flags: []cli.Flag{
			sessionFlag(),
			&cli.BoolFlag{Name: "clear", Usage: "Clear the pointer without discarding the record"},
		},
		Action: func(c *cli.Context) error {
			output, err := workflow.Current(ops.CurrentInput{
				SessionID: c.String("session"),
				Clear:     c.Bool("clear"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// pendingCmd creates the pending command.
func pendingCmd(workflow *ops.Workflow) *cli.Command {
	return &cli.Command{
		Name:  "pending",
		Usage: "List all pending changes across sessions, newest first",
		Action: func(c *cli.Context) error {
			output, err := workflow.Pending()
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(workflow *ops.Workflow) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one pending change with its diff against the current file",
		ArgsUsage: "<change-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("change-id argument is required"))
			}

			output, err := workflow.Show(ops.ShowInput{ChangeID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// promptCmd creates the prompt command.
func promptCmd(workflow *ops.Workflow) *cli.Command {
	return &cli.Command{
		Name:      "prompt",
		Usage:     "Show or set the commit-prompt toggle",
		ArgsUsage: "[on|off]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputJSON(map[string]bool{"enabled": workflow.CommitPromptEnabled()})
			}

			switch strings.ToLower(c.Args().First()) {
			case "on":
				return outputJSON(workflow.SetCommitPrompt(true))
			case "off":
				return outputJSON(workflow.SetCommitPrompt(false))
			default:
				return outputError(errors.NewInvalidRequest("argument must be on or off"))
			}
		},
	}
}

// webCmd creates the web command.
func webCmd(workflow *ops.Workflow) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the read-only review UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8612, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(workflow, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if dErr, ok := err.(*errors.DraftError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", dErr.Code, dErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
