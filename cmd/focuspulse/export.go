package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var exportOut string

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all sessions, planned blocks and settings as JSON",
		Args:  cobra.NoArgs,
		RunE:  withDeps(runExportCmd),
	}
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string, rt *deps) error {
	data, err := rt.svc.Export(cmd.Context(), rt.cfg.User)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	encoded = append(encoded, '\n')

	if exportOut == "" {
		if _, err := cmd.OutOrStdout().Write(encoded); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(exportOut), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	if err := os.WriteFile(exportOut, encoded, 0o600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return printf(cmd, "Exported %d sessions and %d blocks to %s\n", len(data.Sessions), len(data.PlannedBlocks), exportOut)
}
