package workflow

import (
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	domainwf "github.com/Ultronjnr/oversightglobal-sub000/internal/domain/workflow"
)

var (
	hodGate     = domainwf.RoleGuard(entity.RoleHOD, entity.RoleAdmin)
	financeGate = domainwf.RoleGuard(entity.RoleFinance, entity.RoleAdmin)
)

// BuildRequisitionStateMachine creates a state machine configured for the requisition approval workflow
func BuildRequisitionStateMachine(initialState domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	// HOD gate; approval goes straight to the finance queue
	builder.Configure(domainwf.StatePendingHODApproval).
		PermitIf(domainwf.TriggerApprove, domainwf.StatePendingFinanceApproval, hodGate).
		PermitIf(domainwf.TriggerDecline, domainwf.StateHODDeclined, hodGate).
		PermitIf(domainwf.TriggerSplit, domainwf.StateSplit, hodGate)

	builder.Configure(domainwf.StatePendingFinanceApproval).
		PermitIf(domainwf.TriggerApprove, domainwf.StateFinanceApproved, financeGate).
		PermitIf(domainwf.TriggerDecline, domainwf.StateFinanceDeclined, financeGate).
		PermitIf(domainwf.TriggerSplit, domainwf.StateSplit, financeGate)

	// HOD_APPROVED is a legal stored value with no outgoing edges; the rest are terminal

	return builder.Build(initialState)
}
