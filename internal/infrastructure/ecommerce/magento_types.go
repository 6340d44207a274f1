package ecommerce

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/orderhub/backend/internal/domain/integration"
)

// MagentoOrderPayload is the sales order entity posted by the Magento webhook module.
// Field names follow the REST salesOrderRepositoryV1 representation.
type MagentoOrderPayload struct {
	EntityID            FlexString          `json:"entity_id"`
	IncrementID         FlexString          `json:"increment_id"`
	Status              string              `json:"status"`
	State               string              `json:"state"`
	GrandTotal          FlexDecimal         `json:"grand_total"`
	CustomerFirstName   string              `json:"customer_firstname"`
	CustomerLastName    string              `json:"customer_lastname"`
	CustomerEmail       string              `json:"customer_email"`
	BillingAddress      *MagentoAddress     `json:"billing_address"`
	ShippingAddress     *MagentoAddress     `json:"shipping_address"`
	Items               []MagentoItem       `json:"items"`
	ExtensionAttributes MagentoOrderExtAttr `json:"extension_attributes"`
}

// MagentoOrderExtAttr carries the shipping assignments of an order
type MagentoOrderExtAttr struct {
	ShippingAssignments []struct {
		Shipping struct {
			Address *MagentoAddress `json:"address"`
		} `json:"shipping"`
	} `json:"shipping_assignments"`
}

// MagentoAddress is a billing or shipping address
type MagentoAddress struct {
	FirstName string        `json:"firstname"`
	LastName  string        `json:"lastname"`
	Company   string        `json:"company"`
	Street    MagentoStreet `json:"street"`
	City      string        `json:"city"`
	Region    string        `json:"region"`
	Postcode  FlexString    `json:"postcode"`
	CountryID string        `json:"country_id"`
	Telephone FlexString    `json:"telephone"`
}

// MagentoStreet accepts street lines as an array or a newline separated string
type MagentoStreet []string

// UnmarshalJSON implements json.Unmarshaler
func (s *MagentoStreet) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var lines []string
		if err := json.Unmarshal(b, &lines); err != nil {
			return err
		}
		*s = lines
		return nil
	}
	var v FlexString
	if err := v.UnmarshalJSON(b); err != nil {
		return err
	}
	*s = strings.Split(string(v), "\n")
	return nil
}

// MagentoItem is one order item. Configurable products appear as a parent with a
// child simple item; only parents are counted.
type MagentoItem struct {
	Name         string      `json:"name"`
	SKU          FlexString  `json:"sku"`
	QtyOrdered   FlexDecimal `json:"qty_ordered"`
	ParentItemID FlexString  `json:"parent_item_id"`
}

func (a *MagentoAddress) joined() string {
	if a == nil {
		return ""
	}
	parts := append([]string{}, a.Street...)
	parts = append(parts, a.City, a.Region, a.Postcode.String(), a.CountryID)
	return JoinAddress(parts...)
}

func (a *MagentoAddress) fullName() string {
	if a == nil {
		return ""
	}
	return fullName(a.FirstName, a.LastName)
}

func (a *MagentoAddress) phone() string {
	if a == nil {
		return ""
	}
	return a.Telephone.String()
}

// shippingAddress prefers the top-level shipping address, then the first shipping assignment
func (p *MagentoOrderPayload) shippingAddress() *MagentoAddress {
	if p.ShippingAddress != nil {
		return p.ShippingAddress
	}
	for _, sa := range p.ExtensionAttributes.ShippingAssignments {
		if sa.Shipping.Address != nil {
			return sa.Shipping.Address
		}
	}
	return nil
}

// DecodeMagento decodes a raw Magento webhook body, bare or wrapped in an event envelope
func DecodeMagento(body []byte) (*MagentoOrderPayload, error) {
	var p MagentoOrderPayload
	if err := decodeOrder(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// NormalizeMagento maps a Magento order to a NormalizedOrder.
// The external id is entity_id, the id the REST API addresses orders by.
func NormalizeMagento(p *MagentoOrderPayload) (*integration.NormalizedOrder, error) {
	n, err := newNormalizedOrder(integration.PlatformMagento, p.EntityID.String())
	if err != nil {
		return nil, err
	}

	shipping := p.shippingAddress()
	n.CustomerName = orDefault(
		firstNonEmpty(
			fullName(p.CustomerFirstName, p.CustomerLastName),
			shipping.fullName(),
			p.BillingAddress.fullName(),
		),
		integration.NoName,
	)
	n.CustomerEmail = cleanText(p.CustomerEmail)
	n.Phone = orDefault(firstNonEmpty(shipping.phone(), p.BillingAddress.phone()), integration.NoPhone)
	n.DeliveryAddress = firstNonEmpty(shipping.joined(), p.BillingAddress.joined())

	items := make([]lineItem, 0, len(p.Items))
	for _, it := range p.Items {
		if it.ParentItemID.String() != "" {
			continue
		}
		qty, err := it.QtyOrdered.Quantity()
		if err != nil {
			return nil, err
		}
		items = append(items, lineItem{
			name:     it.Name,
			sku:      it.SKU.String(),
			quantity: qty,
		})
	}
	lines, err := summarizeLines(items)
	if err != nil {
		return nil, err
	}
	n.ProductNames = lines.productNames
	n.CatalogNumbers = lines.catalogNumbers
	n.Quantity = lines.quantity

	n.TotalPrice = p.GrandTotal.Decimal
	n.VendorStatus = strings.TrimSpace(p.Status)
	n.Status = MapInbound(integration.PlatformMagento, n.VendorStatus)
	return n, nil
}

// magentoCommentRequest is the body of POST /V1/orders/{id}/comments
type magentoCommentRequest struct {
	StatusHistory magentoStatusHistory `json:"statusHistory"`
}

type magentoStatusHistory struct {
	Comment            string `json:"comment"`
	Status             string `json:"status"`
	IsCustomerNotified int    `json:"is_customer_notified"`
	IsVisibleOnFront   int    `json:"is_visible_on_front"`
}
