// Package consistency implements the detection and correction services of
// the financial consistency engine.
package consistency

import (
	"github.com/erp/consistency/internal/domain/shared"
)

// Selector identifies a detection report
type Selector string

// Detection selectors
const (
	SelectorMisplacedReceivables    Selector = "ar_pedidos"
	SelectorCash                    Selector = "caixa"
	SelectorOrdersWithoutReceivable Selector = "pedidos_sem_ar"
	SelectorCanceledWithReceivables Selector = "pedidos_cancelados_com_ar"
	SelectorStaleSaleExits          Selector = "estoque_vendas_canceladas"
	SelectorDuplicateStockExits     Selector = "estoque_saidas_duplicadas"
	SelectorCanceledOrders          Selector = "pedidos_cancelados"
	SelectorBalanceDrift            Selector = "estoque_saldos"
)

// AllSelectors lists every detection selector in report order
var AllSelectors = []Selector{
	SelectorMisplacedReceivables,
	SelectorCash,
	SelectorOrdersWithoutReceivable,
	SelectorCanceledWithReceivables,
	SelectorStaleSaleExits,
	SelectorDuplicateStockExits,
	SelectorCanceledOrders,
	SelectorBalanceDrift,
}

// IsValid checks if the selector is known
func (s Selector) IsValid() bool {
	for _, known := range AllSelectors {
		if s == known {
			return true
		}
	}
	return false
}

// ParseSelector validates a raw selector value
func ParseSelector(raw string) (Selector, error) {
	s := Selector(raw)
	if raw == "" {
		return "", shared.NewValidationError("tipo is required")
	}
	if !s.IsValid() {
		return "", shared.NewValidationError("unknown tipo %q", raw)
	}
	return s, nil
}

// Action identifies a correction
type Action string

// Correction actions
const (
	ActionCancelMisplacedReceivables Action = "ar_pedidos"
	ActionCancelReceivable           Action = "ar_cancelar"
	ActionReverseCash                Action = "caixa_reverter"
	ActionDeleteCash                 Action = "caixa_excluir"
	ActionDeleteDuplicateExit        Action = "estoque_excluir_duplicata"
	ActionReverseStaleExits          Action = "reverter_estoque_vendas_canceladas"
	ActionTransferReceivables        Action = "transferir_ar"
	ActionBackfillReceivables        Action = "pedidos_sem_ar"
	ActionRevertCancellation         Action = "estornar_cancelamento"
)

// AllActions lists every correction action
var AllActions = []Action{
	ActionCancelMisplacedReceivables,
	ActionCancelReceivable,
	ActionReverseCash,
	ActionDeleteCash,
	ActionDeleteDuplicateExit,
	ActionReverseStaleExits,
	ActionTransferReceivables,
	ActionBackfillReceivables,
	ActionRevertCancellation,
}

// IsValid checks if the action is known
func (a Action) IsValid() bool {
	for _, known := range AllActions {
		if a == known {
			return true
		}
	}
	return false
}

// ParseAction validates a raw action value
func ParseAction(raw string) (Action, error) {
	if raw == "" {
		return "", shared.NewValidationError("acao is required")
	}
	a := Action(raw)
	if !a.IsValid() {
		return "", shared.NewValidationError("unknown acao %q", raw)
	}
	return a, nil
}

// Selector names the detector whose findings the action corrects
func (a Action) Selector() Selector {
	switch a {
	case ActionCancelMisplacedReceivables, ActionCancelReceivable:
		return SelectorMisplacedReceivables
	case ActionReverseCash, ActionDeleteCash:
		return SelectorCash
	case ActionDeleteDuplicateExit:
		return SelectorDuplicateStockExits
	case ActionReverseStaleExits:
		return SelectorStaleSaleExits
	case ActionTransferReceivables:
		return SelectorCanceledWithReceivables
	case ActionBackfillReceivables:
		return SelectorOrdersWithoutReceivable
	case ActionRevertCancellation:
		return SelectorCanceledOrders
	}
	return ""
}

// Outcome distinguishes a real state change from a no-op
type Outcome string

// Correction outcomes
const (
	OutcomeApplied        Outcome = "APPLIED"
	OutcomeAlreadyApplied Outcome = "ALREADY_APPLIED"
)
