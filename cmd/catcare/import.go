package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/catcare/pkg/backup"
)

var (
	importMode   string
	importStrict bool
	importDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import [file.json]",
	Short: "Validate and apply a JSON backup",
	Long: `Import checks that the file is a .json backup containing app data and,
in strict mode, that it belongs to the current user. It then prints a preview
and applies the backup in merge mode (records merged by id, incoming wins) or
replace mode (slots overwritten). Use "-" to read the backup from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := backup.ParseMode(importMode)
		if err != nil {
			return err
		}

		svc, err := openService()
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer closeService(svc)

		var (
			r        io.Reader
			filename = args[0]
		)
		if filename == "-" {
			r, filename = cmd.InOrStdin(), "stdin.json"
		} else {
			f, err := os.Open(filename)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", filename, err)
			}
			defer f.Close()
			r, filename = f, filepath.Base(filename)
		}

		ctx := context.Background()
		sess := svc.NewSession()
		if cmd.Flags().Changed("strict") {
			sess.SetStrict(importStrict)
		}
		tok := sess.Open()
		defer sess.Close()

		preview, err := sess.Choose(ctx, tok, filename, r)
		if err != nil {
			return err
		}
		printPreview(cmd.OutOrStdout(), *preview)

		if importDryRun {
			fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("dry run: nothing written"))
			return nil
		}

		report, err := sess.Apply(ctx, mode)
		printReport(cmd.OutOrStdout(), report)
		return err
	},
}

func printPreview(w io.Writer, p backup.ImportPreview) {
	bold := color.New(color.Bold).SprintFunc()
	owner := p.OwnerID
	if owner == "" {
		owner = "(none)"
	}
	fmt.Fprintf(w, "%s\n", bold("Backup preview"))
	fmt.Fprintf(w, "  owner:         %s\n", owner)
	fmt.Fprintf(w, "  pets:          %d\n", p.Pets)
	fmt.Fprintf(w, "  tasks:         %d\n", p.Tasks)
	fmt.Fprintf(w, "  settings:      %s\n", yesNo(p.Settings))
	fmt.Fprintf(w, "  notifications: %s\n", yesNo(p.Notifications))
}

func printReport(w io.Writer, r backup.ApplyReport) {
	for _, key := range r.Applied {
		fmt.Fprintf(w, "%s %s (%s)\n", color.GreenString("applied"), key, r.Mode)
	}
	keys := make([]string, 0, len(r.Failed))
	for key := range r.Failed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "%s %s: %s\n", color.RedString("failed"), key, r.Failed[key])
	}
}

func yesNo(b bool) string {
	if b {
		return color.GreenString("yes")
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importMode, "mode", "m", string(backup.ModeMerge), "Import mode: merge or replace")
	importCmd.Flags().BoolVar(&importStrict, "strict", true, "Reject backups owned by another user")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate and preview without writing")
}
