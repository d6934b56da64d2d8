package main

import (
	"fmt"

	"github.com/erp/consistency/internal/application/consistency"
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Flag name to the request field it fills
var correctionIDFlags = []struct {
	flag  string
	usage string
	field func(*consistency.CorrectionRequest) **uuid.UUID
}{
	{"transaction-id", "cash transaction (caixa_reverter, caixa_excluir)", func(r *consistency.CorrectionRequest) **uuid.UUID { return &r.TransactionID }},
	{"movement-id", "stock movement (estoque_excluir_duplicata)", func(r *consistency.CorrectionRequest) **uuid.UUID { return &r.MovementID }},
	{"from-order", "source order (transferir_ar)", func(r *consistency.CorrectionRequest) **uuid.UUID { return &r.FromOrderID }},
	{"to-order", "target order (transferir_ar)", func(r *consistency.CorrectionRequest) **uuid.UUID { return &r.ToOrderID }},
	{"order", "sales order (pedidos_sem_ar, estornar_cancelamento, reverter_estoque_vendas_canceladas)", func(r *consistency.CorrectionRequest) **uuid.UUID { return &r.SalesOrderID }},
	{"receivable", "account receivable (ar_cancelar)", func(r *consistency.CorrectionRequest) **uuid.UUID { return &r.ReceivableID }},
	{"actor", "user recorded as author of compensating rows", func(r *consistency.CorrectionRequest) **uuid.UUID { return &r.ActorID }},
}

// DryRun is printed instead of applying a correction
type DryRun struct {
	DryRun   bool                 `json:"dryRun"`
	Action   consistency.Action   `json:"acao"`
	Selector consistency.Selector `json:"tipo"`
	Findings any                  `json:"findings"`
}

func newCorrectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Preview or apply a correction",
		Long: `Apply a compensating correction.

Without --confirm nothing is written: the findings of the detector the
action corrects are printed so the operator can pick targets. Repeating an
applied correction reports ALREADY_APPLIED.`,
		Example: `  consistency correct --acao caixa_reverter --transaction-id 5f0c...
  consistency correct --acao caixa_reverter --transaction-id 5f0c... --confirm
  consistency correct --acao transferir_ar --from-order a1.. --to-order b2.. --confirm`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetString("acao")
			confirm, _ := cmd.Flags().GetBool("confirm")

			action, err := consistency.ParseAction(raw)
			if err != nil {
				return err
			}
			req := consistency.CorrectionRequest{Action: action}
			for _, f := range correctionIDFlags {
				value, _ := cmd.Flags().GetString(f.flag)
				if value == "" {
					continue
				}
				id, err := uuid.Parse(value)
				if err != nil {
					return fmt.Errorf("--%s: %w", f.flag, err)
				}
				*f.field(&req) = &id
			}

			reports, corrections, err := a.services()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if !confirm {
				findings, err := reports.Report(ctx, action.Selector(), shared.DateRange{})
				if err != nil {
					return err
				}
				return a.printJSON(DryRun{DryRun: true, Action: action, Selector: action.Selector(), Findings: findings})
			}

			result, err := corrections.Execute(ctx, req)
			if err != nil {
				return err
			}
			return a.printJSON(result)
		},
	}
	cmd.Flags().String("acao", "", "correction action, e.g. caixa_reverter, transferir_ar")
	cmd.Flags().Bool("confirm", false, "apply the correction instead of previewing it")
	for _, f := range correctionIDFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
	_ = cmd.MarkFlagRequired("acao")
	return cmd
}
