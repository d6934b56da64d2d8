package main

import (
	"github.com/erp/consistency/internal/application/consistency"
	"github.com/spf13/cobra"
)

func newDetectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run a detector and print its report as JSON",
		Long: `Run one detector, or every detector when --tipo is omitted.

Without --tipo the overview is printed: one headline per detector with its
finding count and the amount at stake.`,
		Example: `  consistency detect
  consistency detect --tipo caixa --from 2024-01-01 --to 2024-03-31
  consistency detect --tipo pedidos_sem_ar`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tipo, _ := cmd.Flags().GetString("tipo")
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")

			rng, err := parseRange(from, to)
			if err != nil {
				return err
			}
			reports, _, err := a.services()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if tipo == "" {
				overview, err := reports.Overview(ctx, rng)
				if err != nil {
					return err
				}
				return a.printJSON(overview)
			}
			selector, err := consistency.ParseSelector(tipo)
			if err != nil {
				return err
			}
			report, err := reports.Report(ctx, selector, rng)
			if err != nil {
				return err
			}
			return a.printJSON(report)
		},
	}
	cmd.Flags().String("tipo", "", "detector selector, e.g. ar_pedidos, caixa, pedidos_sem_ar")
	cmd.Flags().String("from", "", "first day included (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "last day included (YYYY-MM-DD)")
	return cmd
}
