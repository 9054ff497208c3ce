package entity

// Requisition statuses
const (
	RequisitionStatusPendingHOD      = "PENDING_HOD_APPROVAL"
	RequisitionStatusHODApproved     = "HOD_APPROVED"
	RequisitionStatusHODDeclined     = "HOD_DECLINED"
	RequisitionStatusPendingFinance  = "PENDING_FINANCE_APPROVAL"
	RequisitionStatusFinanceApproved = "FINANCE_APPROVED"
	RequisitionStatusFinanceDeclined = "FINANCE_DECLINED"
	RequisitionStatusSplit           = "SPLIT"
)

// HOD gate mirror values
const (
	HODStatusPending       = "Pending"
	HODStatusApproved      = "Approved"
	HODStatusDeclined      = "Declined"
	HODStatusNotApplicable = "N/A"
)

// Finance gate mirror values
const (
	FinanceStatusNotStarted = "Not Started"
	FinanceStatusPending    = "Pending"
	FinanceStatusApproved   = "Approved"
	FinanceStatusDeclined   = "Declined"
	FinanceStatusSplit      = "Split"
)

// Urgency levels
const (
	UrgencyLow    = "LOW"
	UrgencyNormal = "NORMAL"
	UrgencyHigh   = "HIGH"
	UrgencyUrgent = "URGENT"
)

// Quote request statuses
const (
	QuoteRequestStatusPending  = "PENDING"
	QuoteRequestStatusAccepted = "ACCEPTED"
	QuoteRequestStatusDeclined = "DECLINED"
)

// Quote statuses
const (
	QuoteStatusSubmitted = "SUBMITTED"
	QuoteStatusAccepted  = "ACCEPTED"
	QuoteStatusRejected  = "REJECTED"
	QuoteStatusExpired   = "EXPIRED"
)

// Invoice statuses
const (
	InvoiceStatusUploaded        = "UPLOADED"
	InvoiceStatusAwaitingPayment = "AWAITING_PAYMENT"
	InvoiceStatusPaid            = "PAID"
)

// History actions
const (
	ActionPRCreated       = "PR_CREATED"
	ActionHODApproved     = "HOD_APPROVED"
	ActionHODDeclined     = "HOD_DECLINED"
	ActionFinanceApproved = "FINANCE_APPROVED"
	ActionFinanceDeclined = "FINANCE_DECLINED"
	ActionPRSplit         = "PR_SPLIT"
	ActionPRSplitCreated  = "PR_SPLIT_CREATED"
)

// DefaultCurrency is applied when a submission does not name one
const DefaultCurrency = "ZAR"
