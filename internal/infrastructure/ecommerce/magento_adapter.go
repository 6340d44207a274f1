package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/orderhub/backend/internal/domain/integration"
)

// MagentoSignatureHeader carries the hex HMAC-SHA256 of the body
const MagentoSignatureHeader = "X-Magento-Webhook-Signature"

// MagentoAdapter handles Magento webhooks and pushes statuses through the REST API
type MagentoAdapter struct {
	client *apiClient
}

// NewMagentoAdapter creates a Magento adapter
func NewMagentoAdapter(config ClientConfig) (*MagentoAdapter, error) {
	client, err := newAPIClient(integration.PlatformMagento, config)
	if err != nil {
		return nil, err
	}
	return &MagentoAdapter{client: client}, nil
}

// Platform returns the platform code
func (a *MagentoAdapter) Platform() integration.PlatformCode {
	return integration.PlatformMagento
}

// SignatureHeader returns the signature header name
func (a *MagentoAdapter) SignatureHeader() string {
	return MagentoSignatureHeader
}

// AllowedHeaders returns the headers the webhook module sends
func (a *MagentoAdapter) AllowedHeaders() []string {
	return []string{MagentoSignatureHeader}
}

// VerifySignature checks the hex HMAC-SHA256 of the body
func (a *MagentoAdapter) VerifySignature(body []byte, signature, secret string) error {
	return verifyHMAC(body, signature, secret, SignatureHex)
}

// EventType returns the body "event" field, e.g. sales_order_save_after
func (a *MagentoAdapter) EventType(d *integration.WebhookDelivery) string {
	return peekEvent(d.Body)
}

// IsOrderEvent accepts order placement, save and cancel observers.
// sales_order_delete_after and other observers are ignored.
func (a *MagentoAdapter) IsOrderEvent(eventType string) bool {
	return magentoOrderEvents.accepts(eventType)
}

// DeliveryID returns "" since Magento sends no delivery id
func (a *MagentoAdapter) DeliveryID(*integration.WebhookDelivery) string {
	return ""
}

// Normalize decodes and normalizes a Magento order body
func (a *MagentoAdapter) Normalize(body []byte) (*integration.NormalizedOrder, error) {
	p, err := DecodeMagento(body)
	if err != nil {
		return nil, err
	}
	return NormalizeMagento(p)
}

// PushStatus adds a status history comment, which also sets the order status
func (a *MagentoAdapter) PushStatus(ctx context.Context, creds *integration.PlatformCredentials, externalID, vendorStatus string) error {
	payload, err := json.Marshal(magentoCommentRequest{
		StatusHistory: magentoStatusHistory{
			Comment: "Status updated to " + vendorStatus,
			Status:  vendorStatus,
		},
	})
	if err != nil {
		return fmt.Errorf("magento: failed to encode request: %w", err)
	}

	endpoint := creds.BaseURL() + "/rest/V1/orders/" + url.PathEscape(externalID) + "/comments"
	req, err := a.client.newRequest(ctx, http.MethodPost, endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+creds.APIKey)

	_, err = a.client.doRequest(req)
	return err
}

var (
	_ integration.WebhookPlatform  = (*MagentoAdapter)(nil)
	_ integration.StatusPushClient = (*MagentoAdapter)(nil)
)
