package ecommerce

import (
	"encoding/xml"

	"github.com/orderhub/backend/internal/domain/integration"
)

// PrestaShopOrderPayload is the order object posted by the PrestaShop webhook module.
// Field names follow the PrestaShop webservice order resource.
type PrestaShopOrderPayload struct {
	ID              FlexString             `json:"id"`
	IDOrder         FlexString             `json:"id_order"`
	Reference       string                 `json:"reference"`
	CurrentState    FlexString             `json:"current_state"`
	TotalPaid       FlexDecimal            `json:"total_paid"`
	Customer        *PrestaShopCustomer    `json:"customer"`
	AddressDelivery *PrestaShopAddress     `json:"address_delivery"`
	AddressInvoice  *PrestaShopAddress     `json:"address_invoice"`
	Products        []PrestaShopOrderRow   `json:"products"`
	Associations    PrestaShopAssociations `json:"associations"`
}

// PrestaShopCustomer is the order customer
type PrestaShopCustomer struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
}

// PrestaShopAddress is a delivery or invoice address
type PrestaShopAddress struct {
	FirstName   string     `json:"firstname"`
	LastName    string     `json:"lastname"`
	Company     string     `json:"company"`
	Address1    string     `json:"address1"`
	Address2    string     `json:"address2"`
	Postcode    FlexString `json:"postcode"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	Country     string     `json:"country"`
	Phone       string     `json:"phone"`
	PhoneMobile string     `json:"phone_mobile"`
}

// PrestaShopAssociations holds the nested order rows of a webservice order
type PrestaShopAssociations struct {
	OrderRows []PrestaShopOrderRow `json:"order_rows"`
}

// PrestaShopOrderRow is one order line
type PrestaShopOrderRow struct {
	ProductName      string     `json:"product_name"`
	ProductReference FlexString `json:"product_reference"`
	ProductQuantity  FlexInt    `json:"product_quantity"`
}

func (a *PrestaShopAddress) joined() string {
	if a == nil {
		return ""
	}
	return JoinAddress(a.Address1, a.Address2, a.Postcode.String(), a.City, a.State, a.Country)
}

func (a *PrestaShopAddress) fullName() string {
	if a == nil {
		return ""
	}
	return fullName(a.FirstName, a.LastName)
}

func (a *PrestaShopAddress) phone() string {
	if a == nil {
		return ""
	}
	return firstNonEmpty(cleanText(a.PhoneMobile), cleanText(a.Phone))
}

// orderID prefers the webservice "id" and falls back to the hook's "id_order"
func (p *PrestaShopOrderPayload) orderID() string {
	return firstNonEmpty(p.ID.String(), p.IDOrder.String())
}

func (p *PrestaShopOrderPayload) rows() []PrestaShopOrderRow {
	if len(p.Associations.OrderRows) > 0 {
		return p.Associations.OrderRows
	}
	return p.Products
}

// DecodePrestaShop decodes a raw PrestaShop webhook body, bare or wrapped in an event envelope
func DecodePrestaShop(body []byte) (*PrestaShopOrderPayload, error) {
	var p PrestaShopOrderPayload
	if err := decodeOrder(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// NormalizePrestaShop maps a PrestaShop order to a NormalizedOrder
func NormalizePrestaShop(p *PrestaShopOrderPayload) (*integration.NormalizedOrder, error) {
	n, err := newNormalizedOrder(integration.PlatformPrestaShop, p.orderID())
	if err != nil {
		return nil, err
	}

	var customerName string
	if p.Customer != nil {
		customerName = fullName(p.Customer.FirstName, p.Customer.LastName)
		n.CustomerEmail = cleanText(p.Customer.Email)
	}
	n.CustomerName = orDefault(
		firstNonEmpty(customerName, p.AddressDelivery.fullName(), p.AddressInvoice.fullName()),
		integration.NoName,
	)
	n.Phone = orDefault(firstNonEmpty(p.AddressDelivery.phone(), p.AddressInvoice.phone()), integration.NoPhone)
	n.DeliveryAddress = firstNonEmpty(p.AddressDelivery.joined(), p.AddressInvoice.joined())

	rows := p.rows()
	items := make([]lineItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, lineItem{name: r.ProductName, sku: r.ProductReference.String(), quantity: r.ProductQuantity.Int()})
	}
	lines, err := summarizeLines(items)
	if err != nil {
		return nil, err
	}
	n.ProductNames = lines.productNames
	n.CatalogNumbers = lines.catalogNumbers
	n.Quantity = lines.quantity

	n.TotalPrice = p.TotalPaid.Decimal
	n.VendorStatus = p.CurrentState.String()
	n.Status = MapInbound(integration.PlatformPrestaShop, n.VendorStatus)
	return n, nil
}

// prestaShopOrderHistory is the webservice document that changes an order's state
type prestaShopOrderHistory struct {
	XMLName      xml.Name `xml:"prestashop"`
	OrderHistory struct {
		IDOrder      string `xml:"id_order"`
		IDOrderState string `xml:"id_order_state"`
	} `xml:"order_history"`
}
