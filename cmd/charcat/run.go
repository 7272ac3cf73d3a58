package main

import (
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/charcat/internal/command"
	"pkt.systems/charcat/internal/console"
	"pkt.systems/charcat/internal/format"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <command> [args...]",
		Short: "Run one catalog command and exit",
		Long: "Run one catalog command non-interactively. Prompts read answers from stdin.\n\n" +
			command.Usage(),
		Example: "  charcat run list\n  charcat run show 3\n  echo 10 | charcat run import",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			out := format.NewConsoleRenderer(stdout, useColor(a.cfg.Console.Color, stdout))
			dispatcher, err := a.dispatcher(out, console.NewPlainReader(cmd.InOrStdin(), stdout))
			if err != nil {
				return err
			}
			_, err = dispatcher.Execute(cmd.Context(), strings.Join(args, " "))
			return err
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}
