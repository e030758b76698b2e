package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportStdout bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a JSON backup of the current state",
	Long: `Export reads the exportable slots and writes them as an indented JSON
document named <prefix>_backup_<date>.json. Inline avatar images are not
included in the backup.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer closeService(svc)

		dialog := svc.NewExportDialog()
		defer dialog.Close()

		if _, err := dialog.Open(context.Background()); err != nil {
			return err
		}

		if exportStdout {
			_, err := dialog.Download(cmd.OutOrStdout())
			return err
		}

		dir := "."
		if exportOutput != "" {
			dir = filepath.Dir(exportOutput)
			dialog.SetFilename(filepath.Base(exportOutput))
		}

		var buf bytes.Buffer
		name, err := dialog.Download(&buf)
		if err != nil {
			return err
		}
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d bytes)\n", color.GreenString("exported"), target, buf.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default <prefix>_backup_<date>.json)")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write the backup to stdout")
}
