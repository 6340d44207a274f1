package ecommerce

import (
	"strings"

	"github.com/orderhub/backend/internal/domain/integration"
)

// Status tables are built once and never mutated; lookups need no locking.
var statusTables = map[integration.PlatformCode]integration.StatusTable{
	integration.PlatformPrestaShop: integration.NewStatusTable(integration.StatusNew,
		map[string]integration.InternalStatus{
			"1":  integration.StatusAwaitingPayment, // awaiting check payment
			"2":  integration.StatusConfirmed,       // payment accepted
			"3":  integration.StatusProcessing,      // processing in progress
			"4":  integration.StatusShipped,
			"5":  integration.StatusDelivered,
			"6":  integration.StatusCancelled,
			"7":  integration.StatusRefunded,
			"8":  integration.StatusAwaitingPayment, // payment error
			"9":  integration.StatusProcessing,      // on backorder (paid)
			"10": integration.StatusAwaitingPayment, // awaiting bank wire
			"11": integration.StatusConfirmed,       // remote payment accepted
			"12": integration.StatusAwaitingPayment, // on backorder (not paid)
		},
		map[integration.InternalStatus]string{
			integration.StatusAwaitingPayment: "10",
			integration.StatusConfirmed:       "2",
			integration.StatusProcessing:      "3",
			integration.StatusShipped:         "4",
			integration.StatusDelivered:       "5",
			integration.StatusCancelled:       "6",
			integration.StatusRefunded:        "7",
		},
	),

	integration.PlatformShopify: integration.NewStatusTable(integration.StatusNew,
		map[string]integration.InternalStatus{
			"fulfilled":          integration.StatusShipped,
			"partial":            integration.StatusProcessing,
			"pending":            integration.StatusAwaitingPayment,
			"authorized":         integration.StatusConfirmed,
			"partially_paid":     integration.StatusAwaitingPayment,
			"paid":               integration.StatusConfirmed,
			"partially_refunded": integration.StatusReturned,
			"refunded":           integration.StatusRefunded,
			"voided":             integration.StatusCancelled,
		},
		map[integration.InternalStatus]string{
			integration.StatusShipped:   shopifyFulfilled,
			integration.StatusDelivered: shopifyFulfilled,
			integration.StatusCancelled: shopifyCancelled,
		},
	),

	integration.PlatformOpenCart: integration.NewStatusTable(integration.StatusNew,
		map[string]integration.InternalStatus{
			"pending":           integration.StatusNew,
			"1":                 integration.StatusNew,
			"processing":        integration.StatusProcessing,
			"2":                 integration.StatusProcessing,
			"processed":         integration.StatusProcessing,
			"15":                integration.StatusProcessing,
			"shipped":           integration.StatusShipped,
			"3":                 integration.StatusShipped,
			"complete":          integration.StatusDelivered,
			"5":                 integration.StatusDelivered,
			"canceled":          integration.StatusCancelled,
			"7":                 integration.StatusCancelled,
			"denied":            integration.StatusCancelled,
			"8":                 integration.StatusCancelled,
			"failed":            integration.StatusCancelled,
			"10":                integration.StatusCancelled,
			"expired":           integration.StatusCancelled,
			"14":                integration.StatusCancelled,
			"voided":            integration.StatusCancelled,
			"16":                integration.StatusCancelled,
			"canceled reversal": integration.StatusConfirmed,
			"9":                 integration.StatusConfirmed,
			"refunded":          integration.StatusRefunded,
			"11":                integration.StatusRefunded,
			"reversed":          integration.StatusRefunded,
			"12":                integration.StatusRefunded,
			"chargeback":        integration.StatusRefunded,
			"13":                integration.StatusRefunded,
		},
		map[integration.InternalStatus]string{
			integration.StatusProcessing: "2",
			integration.StatusShipped:    "3",
			integration.StatusDelivered:  "5",
			integration.StatusCancelled:  "7",
			integration.StatusRefunded:   "11",
		},
	),

	integration.PlatformMagento: integration.NewStatusTable(integration.StatusNew,
		map[string]integration.InternalStatus{
			"pending":         integration.StatusNew,
			"pending_payment": integration.StatusAwaitingPayment,
			"payment_review":  integration.StatusAwaitingPayment,
			"processing":      integration.StatusProcessing,
			"holded":          integration.StatusProcessing,
			"complete":        integration.StatusDelivered,
			"canceled":        integration.StatusCancelled,
			"fraud":           integration.StatusCancelled,
			"closed":          integration.StatusRefunded,
		},
		map[integration.InternalStatus]string{
			integration.StatusNew:             "pending",
			integration.StatusAwaitingPayment: "pending_payment",
			integration.StatusConfirmed:       "processing",
			integration.StatusProcessing:      "processing",
			integration.StatusShipped:         "complete",
			integration.StatusDelivered:       "complete",
			integration.StatusCancelled:       "canceled",
			integration.StatusRefunded:        "closed",
		},
	),

	integration.PlatformWooCommerce: integration.NewStatusTable(integration.StatusNew,
		map[string]integration.InternalStatus{
			"pending":        integration.StatusAwaitingPayment,
			"on-hold":        integration.StatusAwaitingPayment,
			"processing":     integration.StatusProcessing,
			"completed":      integration.StatusDelivered,
			"cancelled":      integration.StatusCancelled,
			"failed":         integration.StatusCancelled,
			"refunded":       integration.StatusRefunded,
			"checkout-draft": integration.StatusNew,
		},
		map[integration.InternalStatus]string{
			integration.StatusAwaitingPayment: "pending",
			integration.StatusConfirmed:       "processing",
			integration.StatusProcessing:      "processing",
			integration.StatusShipped:         "completed",
			integration.StatusDelivered:       "completed",
			integration.StatusCancelled:       "cancelled",
			integration.StatusRefunded:        "refunded",
		},
	),
}

// MapInbound translates a vendor status into the internal vocabulary.
// It never fails: unknown platforms and unknown states map to StatusNew or the table default.
func MapInbound(platform integration.PlatformCode, vendorStatus string) integration.InternalStatus {
	table, ok := statusTables[platform]
	if !ok {
		return integration.StatusNew
	}
	return table.Inbound(vendorStatus)
}

// MapOutbound translates an internal status into the platform's vocabulary.
// The boolean is false when there is nothing to push.
func MapOutbound(platform integration.PlatformCode, status integration.InternalStatus) (string, bool) {
	table, ok := statusTables[platform]
	if !ok {
		return "", false
	}
	return table.Outbound(status)
}

// ShopifyVendorStatus collapses Shopify's two status fields into the single key used for mapping.
// Fulfillment wins over payment: "fulfilled", then "partial", then the financial status.
func ShopifyVendorStatus(financialStatus, fulfillmentStatus string) string {
	switch strings.ToLower(strings.TrimSpace(fulfillmentStatus)) {
	case shopifyFulfilled:
		return shopifyFulfilled
	case shopifyPartial:
		return shopifyPartial
	}
	return strings.ToLower(strings.TrimSpace(financialStatus))
}
