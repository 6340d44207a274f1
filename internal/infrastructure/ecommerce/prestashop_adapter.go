package ecommerce

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/orderhub/backend/internal/domain/integration"
)

// PrestaShopSignatureHeader carries the hex HMAC-SHA256 of the body
const PrestaShopSignatureHeader = "X-PrestaShop-Signature"

// PrestaShopAdapter handles PrestaShop webhooks and pushes states through the webservice
type PrestaShopAdapter struct {
	client *apiClient
}

// NewPrestaShopAdapter creates a PrestaShop adapter
func NewPrestaShopAdapter(config ClientConfig) (*PrestaShopAdapter, error) {
	client, err := newAPIClient(integration.PlatformPrestaShop, config)
	if err != nil {
		return nil, err
	}
	return &PrestaShopAdapter{client: client}, nil
}

// Platform returns the platform code
func (a *PrestaShopAdapter) Platform() integration.PlatformCode {
	return integration.PlatformPrestaShop
}

// SignatureHeader returns the signature header name
func (a *PrestaShopAdapter) SignatureHeader() string {
	return PrestaShopSignatureHeader
}

// AllowedHeaders returns the headers the webhook module sends
func (a *PrestaShopAdapter) AllowedHeaders() []string {
	return []string{PrestaShopSignatureHeader}
}

// VerifySignature checks the hex HMAC-SHA256 of the body
func (a *PrestaShopAdapter) VerifySignature(body []byte, signature, secret string) error {
	return verifyHMAC(body, signature, secret, SignatureHex)
}

// EventType returns the body "event" field
func (a *PrestaShopAdapter) EventType(d *integration.WebhookDelivery) string {
	return peekEvent(d.Body)
}

// IsOrderEvent accepts the order hooks the module subscribes to, such as actionValidateOrder.
// Credit slip and deletion hooks are ignored.
func (a *PrestaShopAdapter) IsOrderEvent(eventType string) bool {
	return prestaShopOrderEvents.accepts(eventType)
}

// DeliveryID returns "" since PrestaShop sends no delivery id
func (a *PrestaShopAdapter) DeliveryID(*integration.WebhookDelivery) string {
	return ""
}

// Normalize decodes and normalizes a PrestaShop order body
func (a *PrestaShopAdapter) Normalize(body []byte) (*integration.NormalizedOrder, error) {
	p, err := DecodePrestaShop(body)
	if err != nil {
		return nil, err
	}
	return NormalizePrestaShop(p)
}

// PushStatus appends an order_histories entry, which moves the order to the given state id
func (a *PrestaShopAdapter) PushStatus(ctx context.Context, creds *integration.PlatformCredentials, externalID, vendorStatus string) error {
	var doc prestaShopOrderHistory
	doc.OrderHistory.IDOrder = externalID
	doc.OrderHistory.IDOrderState = vendorStatus

	payload, err := xml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("prestashop: failed to encode request: %w", err)
	}
	payload = append([]byte(xml.Header), payload...)

	req, err := a.client.newRequest(ctx, http.MethodPost, creds.BaseURL()+"/api/order_histories", "application/xml", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/xml")
	// the webservice key is the basic auth user with an empty password
	req.SetBasicAuth(creds.APIKey, "")

	_, err = a.client.doRequest(req)
	return err
}

var (
	_ integration.WebhookPlatform  = (*PrestaShopAdapter)(nil)
	_ integration.StatusPushClient = (*PrestaShopAdapter)(nil)
)
