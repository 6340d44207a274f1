package integration

import "strings"

// ---------------------------------------------------------------------------
// InternalStatus is the unified order lifecycle vocabulary
// ---------------------------------------------------------------------------

// InternalStatus is the platform-neutral order status shown to operators.
// Values are stored verbatim in the orders table.
type InternalStatus string

const (
	// StatusNew is the default for orders whose vendor state is unknown
	StatusNew InternalStatus = "Нова"
	// StatusAwaitingPayment indicates the order waits for payment
	StatusAwaitingPayment InternalStatus = "Очаква плащане"
	// StatusConfirmed indicates payment or confirmation was received
	StatusConfirmed InternalStatus = "Потвърдена"
	// StatusProcessing indicates the order is being prepared
	StatusProcessing InternalStatus = "В обработка"
	// StatusShipped indicates the order was handed to a courier
	StatusShipped InternalStatus = "Изпратена"
	// StatusDelivered indicates the order reached the customer
	StatusDelivered InternalStatus = "Доставена"
	// StatusCancelled indicates the order was cancelled
	StatusCancelled InternalStatus = "Отказана"
	// StatusReturned indicates the order came back
	StatusReturned InternalStatus = "Върната"
	// StatusRefunded indicates the payment was returned
	StatusRefunded InternalStatus = "Възстановена"
)

// AllStatuses lists every internal status in lifecycle order
func AllStatuses() []InternalStatus {
	return []InternalStatus{
		StatusNew,
		StatusAwaitingPayment,
		StatusConfirmed,
		StatusProcessing,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
		StatusReturned,
		StatusRefunded,
	}
}

// IsValid returns true if the status is part of the vocabulary
func (s InternalStatus) IsValid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// String returns the string representation of InternalStatus
func (s InternalStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// StatusTable
// ---------------------------------------------------------------------------

// StatusTable translates between one platform's status vocabulary and InternalStatus.
// A table is immutable once built; lookups are safe for concurrent use.
type StatusTable struct {
	inbound  map[string]InternalStatus
	outbound map[InternalStatus]string
	fallback InternalStatus
}

// NewStatusTable builds a table from literal maps. The inputs are copied.
// Inbound keys are matched case-insensitively.
func NewStatusTable(fallback InternalStatus, inbound map[string]InternalStatus, outbound map[InternalStatus]string) StatusTable {
	t := StatusTable{
		inbound:  make(map[string]InternalStatus, len(inbound)),
		outbound: make(map[InternalStatus]string, len(outbound)),
		fallback: fallback,
	}
	for k, v := range inbound {
		t.inbound[normalizeVendorStatus(k)] = v
	}
	for k, v := range outbound {
		t.outbound[k] = v
	}
	return t
}

// Inbound maps a vendor status to the internal vocabulary, falling back to the default
func (t StatusTable) Inbound(vendorStatus string) InternalStatus {
	if s, ok := t.inbound[normalizeVendorStatus(vendorStatus)]; ok {
		return s
	}
	return t.fallback
}

// Outbound maps an internal status to the vendor vocabulary.
// The boolean is false when the platform has no equivalent and no push should happen.
func (t StatusTable) Outbound(status InternalStatus) (string, bool) {
	v, ok := t.outbound[status]
	return v, ok
}

// Default returns the fallback status for unknown vendor states
func (t StatusTable) Default() InternalStatus {
	return t.fallback
}

func normalizeVendorStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
