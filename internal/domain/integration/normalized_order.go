package integration

import (
	"github.com/shopspring/decimal"
)

// Sentinel values used in place of missing customer data. Downstream search and
// display assume these fields are never empty.
const (
	NoPhone       = "Няма"
	NoProduct     = "Without product"
	NoName        = "No name"
	ListSeparator = ", "
)

// NormalizedOrder is the platform-neutral record produced from a webhook payload
type NormalizedOrder struct {
	// ExternalCode is "<prefix>-<platform order id>", the idempotency key
	ExternalCode string
	// ExternalID is the platform's own order identifier
	ExternalID string
	// CustomerName is the full customer name, or NoName
	CustomerName string
	// CustomerEmail may be empty
	CustomerEmail string
	// Phone is the contact phone, or NoPhone
	Phone string
	// DeliveryAddress is the flattened address, comma-joined
	DeliveryAddress string
	// ProductNames lists line item names, comma-joined, or NoProduct
	ProductNames string
	// CatalogNumbers lists SKUs/references, comma-joined
	CatalogNumbers string
	// Quantity is the sum of line item quantities
	Quantity int
	// TotalPrice is the platform-reported grand total
	TotalPrice decimal.Decimal
	// Status is the mapped internal status
	Status InternalStatus
	// VendorStatus is the raw platform status used for mapping
	VendorStatus string
	// Source identifies the originating platform
	Source PlatformCode
	// IsCorrect marks the order as validated; always true for webhook orders
	IsCorrect bool
}

// Validate checks the invariants every normalizer must uphold
func (o *NormalizedOrder) Validate() error {
	if !o.Source.IsValid() {
		return ErrPlatformUnsupported
	}
	platform, id, err := ParseExternalCode(o.ExternalCode)
	if err != nil {
		return err
	}
	if platform != o.Source || id != o.ExternalID {
		return ErrExternalCodeInvalid
	}
	if !o.Status.IsValid() {
		return ErrPayloadMalformed
	}
	return nil
}
