package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Write the cash reconciliation workbook to a file",
		Example: `  consistency export --from 2024-01-01 --to 2024-01-31 --out caixa.xlsx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			out, _ := cmd.Flags().GetString("out")

			rng, err := parseRange(from, to)
			if err != nil {
				return err
			}
			reports, _, err := a.services()
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := reports.ExportCash(cmd.Context(), rng, f); err != nil {
				_ = f.Close()
				_ = os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.log.Info("cash workbook written", zap.String("path", out))
			return nil
		},
	}
	cmd.Flags().String("from", "", "first day included (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "last day included (YYYY-MM-DD)")
	cmd.Flags().String("out", "caixa.xlsx", "output file")
	return cmd
}
