package ecommerce

import (
	"encoding/json"
	"strings"

	"github.com/orderhub/backend/internal/domain/integration"
)

// OpenCartOrderPayload is the order posted by the OpenCart webhook extension.
// Field names follow the order model (catalog/model/checkout/order.php getOrder).
type OpenCartOrderPayload struct {
	OrderID       FlexString        `json:"order_id"`
	FirstName     string            `json:"firstname"`
	LastName      string            `json:"lastname"`
	Email         string            `json:"email"`
	Telephone     FlexString        `json:"telephone"`
	Total         FlexDecimal       `json:"total"`
	OrderStatus   FlexString        `json:"order_status"`
	OrderStatusID FlexString        `json:"order_status_id"`
	Shipping      openCartAddress   `json:"-"`
	Payment       openCartAddress   `json:"-"`
	Products      []OpenCartProduct `json:"products"`
}

// openCartAddress is one of the flat shipping_* / payment_* field groups
type openCartAddress struct {
	FirstName string
	LastName  string
	Company   string
	Address1  string
	Address2  string
	City      string
	Postcode  string
	Zone      string
	Country   string
}

// OpenCartProduct is one order line
type OpenCartProduct struct {
	Name     string     `json:"name"`
	Model    FlexString `json:"model"`
	SKU      FlexString `json:"sku"`
	Quantity FlexInt    `json:"quantity"`
}

// UnmarshalJSON decodes the flat prefixed address fields next to the regular ones
func (p *OpenCartOrderPayload) UnmarshalJSON(b []byte) error {
	type plain OpenCartOrderPayload
	if err := json.Unmarshal(b, (*plain)(p)); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	flat := make(map[string]FlexString, len(raw))
	for k, v := range raw {
		var s FlexString
		// nested values such as products are not address fields
		if err := json.Unmarshal(v, &s); err == nil {
			flat[k] = s
		}
	}
	p.Shipping = openCartAddressFrom(flat, "shipping_")
	p.Payment = openCartAddressFrom(flat, "payment_")
	return nil
}

func openCartAddressFrom(flat map[string]FlexString, prefix string) openCartAddress {
	get := func(name string) string { return flat[prefix+name].String() }
	return openCartAddress{
		FirstName: get("firstname"),
		LastName:  get("lastname"),
		Company:   get("company"),
		Address1:  get("address_1"),
		Address2:  get("address_2"),
		City:      get("city"),
		Postcode:  get("postcode"),
		Zone:      get("zone"),
		Country:   get("country"),
	}
}

func (a openCartAddress) joined() string {
	return JoinAddress(a.Address1, a.Address2, a.City, a.Postcode, a.Zone, a.Country)
}

// vendorStatus prefers the status name and falls back to the numeric id
func (p *OpenCartOrderPayload) vendorStatus() string {
	return firstNonEmpty(p.OrderStatus.String(), p.OrderStatusID.String())
}

// DecodeOpenCart decodes a raw OpenCart webhook body, bare or wrapped in an event envelope
func DecodeOpenCart(body []byte) (*OpenCartOrderPayload, error) {
	var p OpenCartOrderPayload
	if err := decodeOrder(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// NormalizeOpenCart maps an OpenCart order to a NormalizedOrder
func NormalizeOpenCart(p *OpenCartOrderPayload) (*integration.NormalizedOrder, error) {
	n, err := newNormalizedOrder(integration.PlatformOpenCart, p.OrderID.String())
	if err != nil {
		return nil, err
	}

	n.CustomerName = orDefault(
		firstNonEmpty(
			fullName(p.FirstName, p.LastName),
			fullName(p.Shipping.FirstName, p.Shipping.LastName),
			fullName(p.Payment.FirstName, p.Payment.LastName),
		),
		integration.NoName,
	)
	n.CustomerEmail = cleanText(p.Email)
	n.Phone = orDefault(p.Telephone.String(), integration.NoPhone)
	n.DeliveryAddress = firstNonEmpty(p.Shipping.joined(), p.Payment.joined())

	items := make([]lineItem, 0, len(p.Products))
	for _, pr := range p.Products {
		items = append(items, lineItem{
			name:     pr.Name,
			sku:      firstNonEmpty(pr.SKU.String(), pr.Model.String()),
			quantity: pr.Quantity.Int(),
		})
	}
	lines, err := summarizeLines(items)
	if err != nil {
		return nil, err
	}
	n.ProductNames = lines.productNames
	n.CatalogNumbers = lines.catalogNumbers
	n.Quantity = lines.quantity

	n.TotalPrice = p.Total.Decimal
	n.VendorStatus = p.vendorStatus()
	n.Status = MapInbound(integration.PlatformOpenCart, n.VendorStatus)
	return n, nil
}

// openCartAPIResponse is the common shape of OpenCart API controller responses.
// Errors arrive with HTTP 200, either as a string or as a field map.
type openCartAPIResponse struct {
	Success  json.RawMessage `json:"success"`
	Error    json.RawMessage `json:"error"`
	APIToken string          `json:"api_token"`
	Token    string          `json:"token"`
}

func (r *openCartAPIResponse) errorText() string {
	raw := strings.TrimSpace(string(r.Error))
	if raw == "" || raw == "null" || raw == `""` || raw == "[]" || raw == "{}" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Error, &s); err == nil {
		return s
	}
	return raw
}

func (r *openCartAPIResponse) token() string {
	return firstNonEmpty(r.APIToken, r.Token)
}
