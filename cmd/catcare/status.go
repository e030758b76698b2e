package main

import (
	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"
)

type statusReport struct {
	Service any `json:"service"`
	Store   any `json:"store,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of the service and its store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer closeService(svc)

		report := statusReport{Service: svc.State()}
		if in, ok := svc.Store().(introspection.Introspectable); ok {
			report.Store = in.State()
		}
		return writeJSON(cmd, report)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
