package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/catcare/pkg/adapters/lifecycle"
	"github.com/aretw0/catcare/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Print slot changes as they happen",
	Long:  `Watch reports writes and removals of slots matching a glob pattern (default "*") until interrupted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := "*"
		if len(args) == 1 {
			pattern = args[0]
		}

		svc, err := openService()
		if err != nil {
			return err
		}
		defer closeService(svc)

		watchable, ok := svc.Store().(core.Watchable)
		if !ok {
			return fmt.Errorf("adapter %s does not support watching", cfg.Adapter)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		src := lifecycle.NewSource(watchable, pattern)
		if err := src.Start(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl+C to stop)\n", pattern)

		for e := range src.Events() {
			ev, ok := e.(core.Event)
			if !ok {
				continue
			}
			kind := color.GreenString(string(ev.Type))
			if ev.Type == core.EventRemove {
				kind = color.RedString(string(ev.Type))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-6s %s\n", time.Unix(ev.Timestamp, 0).Format(time.TimeOnly), kind, ev.Key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
