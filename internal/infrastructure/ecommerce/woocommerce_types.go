package ecommerce

import (
	"github.com/orderhub/backend/internal/domain/integration"
)

// WooCommerceOrderPayload is the order object WooCommerce posts for order.* topics
type WooCommerceOrderPayload struct {
	ID        FlexString            `json:"id"`
	Number    FlexString            `json:"number"`
	Status    string                `json:"status"`
	Total     FlexDecimal           `json:"total"`
	Billing   WooCommerceAddress    `json:"billing"`
	Shipping  WooCommerceAddress    `json:"shipping"`
	LineItems []WooCommerceLineItem `json:"line_items"`
}

// WooCommerceAddress is a billing or shipping address
type WooCommerceAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// WooCommerceLineItem is one order line
type WooCommerceLineItem struct {
	Name     string     `json:"name"`
	SKU      FlexString `json:"sku"`
	Quantity FlexInt    `json:"quantity"`
}

func (a WooCommerceAddress) joined() string {
	return JoinAddress(a.Address1, a.Address2, a.City, a.State, a.Postcode, a.Country)
}

// DecodeWooCommerce decodes a raw WooCommerce webhook body
func DecodeWooCommerce(body []byte) (*WooCommerceOrderPayload, error) {
	var p WooCommerceOrderPayload
	if err := decodeJSON(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// NormalizeWooCommerce maps a WooCommerce order to a NormalizedOrder
func NormalizeWooCommerce(p *WooCommerceOrderPayload) (*integration.NormalizedOrder, error) {
	n, err := newNormalizedOrder(integration.PlatformWooCommerce, p.ID.String())
	if err != nil {
		return nil, err
	}

	n.CustomerName = orDefault(
		firstNonEmpty(fullName(p.Billing.FirstName, p.Billing.LastName), fullName(p.Shipping.FirstName, p.Shipping.LastName)),
		integration.NoName,
	)
	n.CustomerEmail = cleanText(p.Billing.Email)
	n.Phone = orDefault(firstNonEmpty(cleanText(p.Billing.Phone), cleanText(p.Shipping.Phone)), integration.NoPhone)
	n.DeliveryAddress = firstNonEmpty(p.Shipping.joined(), p.Billing.joined())

	items := make([]lineItem, 0, len(p.LineItems))
	for _, li := range p.LineItems {
		items = append(items, lineItem{name: li.Name, sku: li.SKU.String(), quantity: li.Quantity.Int()})
	}
	lines, err := summarizeLines(items)
	if err != nil {
		return nil, err
	}
	n.ProductNames = lines.productNames
	n.CatalogNumbers = lines.catalogNumbers
	n.Quantity = lines.quantity

	n.TotalPrice = p.Total.Decimal
	n.VendorStatus = p.Status
	n.Status = MapInbound(integration.PlatformWooCommerce, p.Status)
	return n, nil
}
