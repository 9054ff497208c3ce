package event

// Type identifies the type of domain event
type Type string

const (
	TypeRequisitionSubmitted  Type = "requisition.submitted"
	TypeRequisitionDecided    Type = "requisition.decided"
	TypeRequisitionSplit      Type = "requisition.split"
	TypeQuoteRequested        Type = "quote_request.created"
	TypeQuoteRequestResponded Type = "quote_request.responded"
	TypeQuoteSubmitted        Type = "quote.submitted"
	TypeQuoteResolved         Type = "quote.resolved"
	TypeQuoteExpired          Type = "quote.expired"
	TypeInvoiceRecorded       Type = "invoice.recorded"
	TypeInvoicesPaid          Type = "invoice.paid"
)

var validTypes = map[Type]bool{
	TypeRequisitionSubmitted:  true,
	TypeRequisitionDecided:    true,
	TypeRequisitionSplit:      true,
	TypeQuoteRequested:        true,
	TypeQuoteRequestResponded: true,
	TypeQuoteSubmitted:        true,
	TypeQuoteResolved:         true,
	TypeQuoteExpired:          true,
	TypeInvoiceRecorded:       true,
	TypeInvoicesPaid:          true,
}

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	return validTypes[t]
}

// All returns every defined event type
func All() []Type {
	return []Type{
		TypeRequisitionSubmitted,
		TypeRequisitionDecided,
		TypeRequisitionSplit,
		TypeQuoteRequested,
		TypeQuoteRequestResponded,
		TypeQuoteSubmitted,
		TypeQuoteResolved,
		TypeQuoteExpired,
		TypeInvoiceRecorded,
		TypeInvoicesPaid,
	}
}
