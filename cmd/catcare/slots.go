package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/catcare/pkg/core"
)

var (
	setRaw  bool
	getJSON bool
)

var getCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the raw value of a slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer closeService(svc)

		raw, ok, err := svc.Store().Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("slot %s is not set", args[0])
		}
		if getJSON {
			return printIndented(cmd.OutOrStdout(), raw)
		}
		fmt.Fprintln(cmd.OutOrStdout(), raw)
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Write a slot",
	Long: `Set writes value to the slot. The value must be JSON unless --raw is given
(the avatar slot, for instance, holds a plain path).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if !setRaw {
			if _, err := core.ParseValue(value); err != nil {
				return fmt.Errorf("value for %s: %w (use --raw for plain strings)", key, err)
			}
		}

		svc, err := openService()
		if err != nil {
			return err
		}
		defer closeService(svc)
		return svc.Store().Set(context.Background(), key, value)
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm [key]",
	Aliases: []string{"remove"},
	Short:   "Remove a slot",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer closeService(svc)
		return svc.Store().Remove(context.Background(), args[0])
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List stored slots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer closeService(svc)

		keys, err := svc.Store().Keys(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(keys, "\n"))
		return nil
	},
}

func printIndented(w io.Writer, raw string) error {
	v, err := core.DecodeJSON([]byte(raw))
	if err != nil {
		fmt.Fprintln(w, raw)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(getCmd, setCmd, rmCmd, keysCmd)
	getCmd.Flags().BoolVar(&getJSON, "json", false, "Pretty-print JSON values")
	setCmd.Flags().BoolVar(&setRaw, "raw", false, "Store the value without JSON validation")
}
