package ecommerce

import (
	"encoding/json"

	"github.com/orderhub/backend/internal/domain/integration"
)

// Shopify status keys
const (
	shopifyFulfilled = "fulfilled"
	shopifyPartial   = "partial"
	shopifyCancelled = "cancelled"
)

// ShopifyOrderPayload is the order resource Shopify posts for orders/* topics
type ShopifyOrderPayload struct {
	ID                FlexString        `json:"id"`
	Name              string            `json:"name"`
	Email             string            `json:"email"`
	Phone             string            `json:"phone"`
	TotalPrice        FlexDecimal       `json:"total_price"`
	Currency          string            `json:"currency"`
	FinancialStatus   string            `json:"financial_status"`
	FulfillmentStatus string            `json:"fulfillment_status"`
	CancelledAt       string            `json:"cancelled_at"`
	Customer          *ShopifyCustomer  `json:"customer"`
	ShippingAddress   *ShopifyAddress   `json:"shipping_address"`
	BillingAddress    *ShopifyAddress   `json:"billing_address"`
	LineItems         []ShopifyLineItem `json:"line_items"`
}

// ShopifyCustomer is the customer embedded in an order
type ShopifyCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// ShopifyAddress is a shipping or billing address
type ShopifyAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
	Company   string `json:"company"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// ShopifyLineItem is one order line
type ShopifyLineItem struct {
	Title    string     `json:"title"`
	Name     string     `json:"name"`
	SKU      FlexString `json:"sku"`
	Quantity FlexInt    `json:"quantity"`
}

func (a *ShopifyAddress) joined() string {
	if a == nil {
		return ""
	}
	return JoinAddress(a.Address1, a.Address2, a.City, a.Province, a.Zip, a.Country)
}

func (a *ShopifyAddress) fullName() string {
	if a == nil {
		return ""
	}
	return firstNonEmpty(fullName(a.FirstName, a.LastName), cleanText(a.Name))
}

func (a *ShopifyAddress) phone() string {
	if a == nil {
		return ""
	}
	return cleanText(a.Phone)
}

// DecodeShopify decodes a raw Shopify webhook body
func DecodeShopify(body []byte) (*ShopifyOrderPayload, error) {
	var p ShopifyOrderPayload
	if err := decodeJSON(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// NormalizeShopify maps a Shopify order to a NormalizedOrder
func NormalizeShopify(p *ShopifyOrderPayload) (*integration.NormalizedOrder, error) {
	n, err := newNormalizedOrder(integration.PlatformShopify, p.ID.String())
	if err != nil {
		return nil, err
	}

	var customerName, customerEmail, customerPhone string
	if p.Customer != nil {
		customerName = fullName(p.Customer.FirstName, p.Customer.LastName)
		customerEmail = cleanText(p.Customer.Email)
		customerPhone = cleanText(p.Customer.Phone)
	}
	n.CustomerName = orDefault(
		firstNonEmpty(customerName, p.ShippingAddress.fullName(), p.BillingAddress.fullName()),
		integration.NoName,
	)
	n.CustomerEmail = firstNonEmpty(cleanText(p.Email), customerEmail)
	n.Phone = orDefault(
		firstNonEmpty(cleanText(p.Phone), p.ShippingAddress.phone(), p.BillingAddress.phone(), customerPhone),
		integration.NoPhone,
	)
	n.DeliveryAddress = firstNonEmpty(p.ShippingAddress.joined(), p.BillingAddress.joined())

	items := make([]lineItem, 0, len(p.LineItems))
	for _, li := range p.LineItems {
		items = append(items, lineItem{
			name:     firstNonEmpty(cleanText(li.Title), cleanText(li.Name)),
			sku:      li.SKU.String(),
			quantity: li.Quantity.Int(),
		})
	}
	lines, err := summarizeLines(items)
	if err != nil {
		return nil, err
	}
	n.ProductNames = lines.productNames
	n.CatalogNumbers = lines.catalogNumbers
	n.Quantity = lines.quantity

	n.TotalPrice = p.TotalPrice.Decimal
	n.VendorStatus = ShopifyVendorStatus(p.FinancialStatus, p.FulfillmentStatus)
	n.Status = MapInbound(integration.PlatformShopify, n.VendorStatus)
	return n, nil
}

// shopifyFulfillmentOrders is the response of GET orders/{id}/fulfillment_orders.json
type shopifyFulfillmentOrders struct {
	FulfillmentOrders []struct {
		ID     FlexString `json:"id"`
		Status string     `json:"status"`
	} `json:"fulfillment_orders"`
}

type shopifyFulfillmentRequest struct {
	Fulfillment shopifyFulfillment `json:"fulfillment"`
}

type shopifyFulfillment struct {
	LineItemsByFulfillmentOrder []shopifyFulfillmentOrderRef `json:"line_items_by_fulfillment_order"`
	NotifyCustomer              bool                         `json:"notify_customer"`
}

type shopifyFulfillmentOrderRef struct {
	FulfillmentOrderID json.Number `json:"fulfillment_order_id"`
}
