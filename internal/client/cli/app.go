// Package cli implements the notekeeper command-line client on top of cobra.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/notekeeper/internal/client/api"
	"github.com/dmitrijs2005/notekeeper/internal/client/config"
	"github.com/spf13/cobra"
)

// App carries the state shared by every subcommand: resolved config, the
// API client and the terminal streams.
type App struct {
	cfg    *config.Config
	client *api.Client
	in     *bufio.Reader
	out    io.Writer
}

type rootFlags struct {
	configPath  string
	serverURL   string
	sessionFile string
}

// NewRootCommand builds the command tree. in and out replace the terminal in tests.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	app := &App{in: bufio.NewReader(in), out: out}
	var flags rootFlags

	root := &cobra.Command{
		Use:           "notekeeper",
		Short:         "Sign in by email code and manage your notes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(flags)
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to JSON config file")
	pf.StringVar(&flags.serverURL, "server", "", "API base URL (overrides config)")
	pf.StringVar(&flags.sessionFile, "session-file", "", "session file path (overrides config)")

	root.AddCommand(
		app.signUpCommand(),
		app.loginCommand(),
		app.logoutCommand(),
		app.whoamiCommand(),
		app.notesCommand(),
	)
	return root
}

func (a *App) init(f rootFlags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.serverURL != "" {
		cfg.ServerURL = f.serverURL
	}
	if f.sessionFile != "" {
		cfg.SessionFile = f.sessionFile
	}

	client, err := api.New(cfg.ServerURL, cfg.CookieName, cfg.RequestTimeout)
	if err != nil {
		return err
	}
	token, err := api.LoadSession(cfg.SessionFile)
	if err != nil {
		return err
	}
	client.SetSession(token)

	a.cfg = cfg
	a.client = client
	return nil
}

func (a *App) saveSession() error {
	return api.SaveSession(a.cfg.SessionFile, a.client.Session())
}

// valueOrPrompt returns v, or asks for it when empty.
func (a *App) valueOrPrompt(v, prompt string) (string, error) {
	if v != "" {
		return v, nil
	}
	return GetSimpleText(a.in, prompt, a.out)
}

// Execute runs the CLI against the process's stdin/stdout.
func Execute(ctx context.Context, in io.Reader, out io.Writer, args []string) error {
	root := NewRootCommand(in, out)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(out, "Error:", err)
		return err
	}
	return nil
}
