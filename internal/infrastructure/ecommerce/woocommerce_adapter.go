package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/orderhub/backend/internal/domain/integration"
)

// WooCommerce webhook headers
const (
	WooCommerceSignatureHeader  = "X-WC-Webhook-Signature"
	WooCommerceTopicHeader      = "X-WC-Webhook-Topic"
	WooCommerceDeliveryIDHeader = "X-WC-Webhook-Delivery-ID"
)

// WooCommerceAdapter handles WooCommerce webhooks and pushes statuses through the REST API v3
type WooCommerceAdapter struct {
	client *apiClient
}

// NewWooCommerceAdapter creates a WooCommerce adapter
func NewWooCommerceAdapter(config ClientConfig) (*WooCommerceAdapter, error) {
	client, err := newAPIClient(integration.PlatformWooCommerce, config)
	if err != nil {
		return nil, err
	}
	return &WooCommerceAdapter{client: client}, nil
}

// Platform returns the platform code
func (a *WooCommerceAdapter) Platform() integration.PlatformCode {
	return integration.PlatformWooCommerce
}

// SignatureHeader returns the signature header name
func (a *WooCommerceAdapter) SignatureHeader() string {
	return WooCommerceSignatureHeader
}

// AllowedHeaders returns the headers WooCommerce sends with a delivery
func (a *WooCommerceAdapter) AllowedHeaders() []string {
	return []string{
		WooCommerceSignatureHeader,
		WooCommerceTopicHeader,
		WooCommerceDeliveryIDHeader,
		"X-WC-Webhook-Source",
		"X-WC-Webhook-Resource",
		"X-WC-Webhook-Event",
		"X-WC-Webhook-ID",
	}
}

// VerifySignature checks the base64 HMAC-SHA256 of the body
func (a *WooCommerceAdapter) VerifySignature(body []byte, signature, secret string) error {
	return verifyHMAC(body, signature, secret, SignatureBase64)
}

// EventType returns the webhook topic, e.g. "order.updated"
func (a *WooCommerceAdapter) EventType(d *integration.WebhookDelivery) string {
	return strings.TrimSpace(d.Header(WooCommerceTopicHeader))
}

// IsPing reports whether d is the test delivery WooCommerce posts when a
// webhook is saved: a form body "webhook_id=N" without a topic header.
func (a *WooCommerceAdapter) IsPing(d *integration.WebhookDelivery) bool {
	if strings.TrimSpace(d.Header(WooCommerceTopicHeader)) == "" {
		return true
	}
	return bytes.HasPrefix(bytes.TrimSpace(d.Body), []byte("webhook_id="))
}

// IsOrderEvent accepts order create, update and restore topics.
// order.deleted carries only an id and is ignored.
func (a *WooCommerceAdapter) IsOrderEvent(eventType string) bool {
	switch strings.ToLower(eventType) {
	case "order.created", "order.updated", "order.restored":
		return true
	}
	return false
}

// DeliveryID returns the WooCommerce delivery id
func (a *WooCommerceAdapter) DeliveryID(d *integration.WebhookDelivery) string {
	return strings.TrimSpace(d.Header(WooCommerceDeliveryIDHeader))
}

// Normalize decodes and normalizes a WooCommerce order body
func (a *WooCommerceAdapter) Normalize(body []byte) (*integration.NormalizedOrder, error) {
	p, err := DecodeWooCommerce(body)
	if err != nil {
		return nil, err
	}
	return NormalizeWooCommerce(p)
}

// PushStatus sets the order status with PUT /wp-json/wc/v3/orders/{id}
func (a *WooCommerceAdapter) PushStatus(ctx context.Context, creds *integration.PlatformCredentials, externalID, vendorStatus string) error {
	payload, err := json.Marshal(map[string]string{"status": vendorStatus})
	if err != nil {
		return fmt.Errorf("woocommerce: failed to encode request: %w", err)
	}

	endpoint := creds.BaseURL() + "/wp-json/wc/v3/orders/" + url.PathEscape(externalID)
	req, err := a.client.newRequest(ctx, http.MethodPut, endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.SetBasicAuth(creds.APIKey, creds.APISecret)

	body, err := a.client.doRequest(req)
	if err != nil {
		return err
	}

	var resp struct {
		ID     FlexString `json:"id"`
		Status string     `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if resp.Status != "" && resp.Status != vendorStatus {
		return fmt.Errorf("%w: status is %q after update", integration.ErrPlatformInvalidResponse, resp.Status)
	}
	return nil
}

var (
	_ integration.WebhookPlatform  = (*WooCommerceAdapter)(nil)
	_ integration.StatusPushClient = (*WooCommerceAdapter)(nil)
)
