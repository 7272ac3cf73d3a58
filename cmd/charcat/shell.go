package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/charcat/internal/console"
	"pkt.systems/charcat/internal/format"
	"pkt.systems/pslog"
)

var isTerminal = console.IsTerminal

func newShellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive catalog session (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}
}

func runShell(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx, opts)
	if err != nil {
		return err
	}
	stdout := cmd.OutOrStdout()
	reader := newLineReader(cmd.InOrStdin(), stdout, a.cfg.Console.HistoryFile)
	defer func() {
		if err := reader.Close(); err != nil {
			pslog.Ctx(ctx).Warn("console close failed", "err", err)
		}
	}()

	out := format.NewConsoleRenderer(stdout, useColor(a.cfg.Console.Color, stdout))
	dispatcher, err := a.dispatcher(out, reader)
	if err != nil {
		return err
	}
	session, err := console.NewSession(console.SessionConfig{
		Reader:     reader,
		Dispatcher: dispatcher,
		Out:        out,
		Logger:     pslog.Ctx(ctx),
	})
	if err != nil {
		return err
	}
	return session.Run(ctx)
}

// newLineReader picks line editing for terminals and a plain reader for pipes.
func newLineReader(in io.Reader, out io.Writer, historyFile string) console.LineReader {
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return console.NewLinerReader(historyFile)
	}
	return console.NewPlainReader(in, out)
}
