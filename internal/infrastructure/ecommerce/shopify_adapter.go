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

// Shopify webhook headers
const (
	ShopifySignatureHeader  = "X-Shopify-Hmac-Sha256"
	ShopifyTopicHeader      = "X-Shopify-Topic"
	ShopifyWebhookIDHeader  = "X-Shopify-Webhook-Id"
	ShopifyShopDomainHeader = "X-Shopify-Shop-Domain"
	shopifyAccessToken      = "X-Shopify-Access-Token"
)

// ShopifyAdapter handles Shopify webhooks and pushes statuses through the Admin REST API
type ShopifyAdapter struct {
	client *apiClient
}

// NewShopifyAdapter creates a Shopify adapter
func NewShopifyAdapter(config ClientConfig) (*ShopifyAdapter, error) {
	client, err := newAPIClient(integration.PlatformShopify, config)
	if err != nil {
		return nil, err
	}
	return &ShopifyAdapter{client: client}, nil
}

// Platform returns the platform code
func (a *ShopifyAdapter) Platform() integration.PlatformCode {
	return integration.PlatformShopify
}

// SignatureHeader returns the signature header name
func (a *ShopifyAdapter) SignatureHeader() string {
	return ShopifySignatureHeader
}

// AllowedHeaders returns the headers Shopify sends with a delivery
func (a *ShopifyAdapter) AllowedHeaders() []string {
	return []string{
		ShopifySignatureHeader,
		ShopifyTopicHeader,
		ShopifyWebhookIDHeader,
		ShopifyShopDomainHeader,
		"X-Shopify-API-Version",
		"X-Shopify-Triggered-At",
	}
}

// VerifySignature checks the base64 HMAC-SHA256 of the body
func (a *ShopifyAdapter) VerifySignature(body []byte, signature, secret string) error {
	return verifyHMAC(body, signature, secret, SignatureBase64)
}

// EventType returns the webhook topic, e.g. "orders/updated"
func (a *ShopifyAdapter) EventType(d *integration.WebhookDelivery) string {
	return strings.TrimSpace(d.Header(ShopifyTopicHeader))
}

// IsOrderEvent accepts the order topics whose payload is a full order.
// orders/edited, orders/delete and risk or protection topics carry partial
// objects and are ignored.
func (a *ShopifyAdapter) IsOrderEvent(eventType string) bool {
	switch strings.ToLower(eventType) {
	case "", "orders/create", "orders/updated", "orders/paid", "orders/cancelled",
		"orders/fulfilled", "orders/partially_fulfilled":
		return true
	}
	return false
}

// DeliveryID returns the Shopify webhook id
func (a *ShopifyAdapter) DeliveryID(d *integration.WebhookDelivery) string {
	return strings.TrimSpace(d.Header(ShopifyWebhookIDHeader))
}

// Normalize decodes and normalizes a Shopify order body
func (a *ShopifyAdapter) Normalize(body []byte) (*integration.NormalizedOrder, error) {
	p, err := DecodeShopify(body)
	if err != nil {
		return nil, err
	}
	return NormalizeShopify(p)
}

// PushStatus fulfills or cancels a Shopify order. Shopify has no writable status field,
// so "fulfilled" creates a fulfillment for every open fulfillment order and "cancelled"
// calls the cancel endpoint.
func (a *ShopifyAdapter) PushStatus(ctx context.Context, creds *integration.PlatformCredentials, externalID, vendorStatus string) error {
	switch vendorStatus {
	case shopifyFulfilled:
		return a.fulfill(ctx, creds, externalID)
	case shopifyCancelled:
		return a.cancel(ctx, creds, externalID)
	default:
		return fmt.Errorf("%w: shopify cannot set status %q", integration.ErrPlatformUnsupported, vendorStatus)
	}
}

func (a *ShopifyAdapter) fulfill(ctx context.Context, creds *integration.PlatformCredentials, orderID string) error {
	body, err := a.call(ctx, creds, http.MethodGet, "orders/"+url.PathEscape(orderID)+"/fulfillment_orders.json", nil)
	if err != nil {
		return err
	}

	var fos shopifyFulfillmentOrders
	if err := json.Unmarshal(body, &fos); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}

	refs := make([]shopifyFulfillmentOrderRef, 0, len(fos.FulfillmentOrders))
	for _, fo := range fos.FulfillmentOrders {
		if fo.Status == "open" || fo.Status == "in_progress" {
			refs = append(refs, shopifyFulfillmentOrderRef{FulfillmentOrderID: json.Number(fo.ID.String())})
		}
	}
	if len(refs) == 0 {
		// already fulfilled or nothing left to ship
		return nil
	}

	_, err = a.call(ctx, creds, http.MethodPost, "fulfillments.json", shopifyFulfillmentRequest{
		Fulfillment: shopifyFulfillment{LineItemsByFulfillmentOrder: refs},
	})
	return err
}

func (a *ShopifyAdapter) cancel(ctx context.Context, creds *integration.PlatformCredentials, orderID string) error {
	_, err := a.call(ctx, creds, http.MethodPost, "orders/"+url.PathEscape(orderID)+"/cancel.json", struct{}{})
	return err
}

// call sends an authenticated Admin API request relative to /admin/api/{version}/
func (a *ShopifyAdapter) call(ctx context.Context, creds *integration.PlatformCredentials, method, path string, payload any) ([]byte, error) {
	var reader *bytes.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("shopify: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	endpoint := fmt.Sprintf("%s/admin/api/%s/%s", creds.BaseURL(), a.client.config.ShopifyAPIVersion, path)
	var req *http.Request
	var err error
	if reader != nil {
		req, err = a.client.newRequest(ctx, method, endpoint, contentType, reader)
	} else {
		req, err = a.client.newRequest(ctx, method, endpoint, "", nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set(shopifyAccessToken, creds.APIKey)
	return a.client.doRequest(req)
}

var (
	_ integration.WebhookPlatform  = (*ShopifyAdapter)(nil)
	_ integration.StatusPushClient = (*ShopifyAdapter)(nil)
)
