package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/orderhub/backend/internal/domain/integration"
)

// OpenCartSignatureHeader carries the hex HMAC-SHA256 of the body
const OpenCartSignatureHeader = "X-OpenCart-Signature"

const formContentType = "application/x-www-form-urlencoded"

// OpenCartAdapter handles OpenCart webhooks and pushes statuses through the catalog API.
// Every push logs in first; API sessions are short-lived and not reused.
type OpenCartAdapter struct {
	client *apiClient
}

// NewOpenCartAdapter creates an OpenCart adapter
func NewOpenCartAdapter(config ClientConfig) (*OpenCartAdapter, error) {
	client, err := newAPIClient(integration.PlatformOpenCart, config)
	if err != nil {
		return nil, err
	}
	return &OpenCartAdapter{client: client}, nil
}

// Platform returns the platform code
func (a *OpenCartAdapter) Platform() integration.PlatformCode {
	return integration.PlatformOpenCart
}

// SignatureHeader returns the signature header name
func (a *OpenCartAdapter) SignatureHeader() string {
	return OpenCartSignatureHeader
}

// AllowedHeaders returns the headers the webhook extension sends
func (a *OpenCartAdapter) AllowedHeaders() []string {
	return []string{OpenCartSignatureHeader}
}

// VerifySignature checks the hex HMAC-SHA256 of the body
func (a *OpenCartAdapter) VerifySignature(body []byte, signature, secret string) error {
	return verifyHMAC(body, signature, secret, SignatureHex)
}

// EventType returns the body "event" field
func (a *OpenCartAdapter) EventType(d *integration.WebhookDelivery) string {
	return peekEvent(d.Body)
}

// IsOrderEvent accepts order.add, order.edit and order history events
func (a *OpenCartAdapter) IsOrderEvent(eventType string) bool {
	return openCartOrderEvents.accepts(eventType)
}

// DeliveryID returns "" since OpenCart sends no delivery id
func (a *OpenCartAdapter) DeliveryID(*integration.WebhookDelivery) string {
	return ""
}

// Normalize decodes and normalizes an OpenCart order body
func (a *OpenCartAdapter) Normalize(body []byte) (*integration.NormalizedOrder, error) {
	p, err := DecodeOpenCart(body)
	if err != nil {
		return nil, err
	}
	return NormalizeOpenCart(p)
}

// PushStatus logs in to the API and adds an order history entry with the new status id
func (a *OpenCartAdapter) PushStatus(ctx context.Context, creds *integration.PlatformCredentials, externalID, vendorStatus string) error {
	token, err := a.login(ctx, creds)
	if err != nil {
		return err
	}

	query := url.Values{}
	query.Set("route", "api/order/history")
	query.Set("api_token", token)
	query.Set("order_id", externalID)

	form := url.Values{}
	form.Set("order_status_id", vendorStatus)
	form.Set("notify", "0")
	form.Set("override", "0")
	form.Set("comment", "")

	resp, err := a.post(ctx, creds, query, form)
	if err != nil {
		return err
	}
	if msg := resp.errorText(); msg != "" {
		return fmt.Errorf("%w: %s", integration.ErrPlatformRequestFailed, msg)
	}
	return nil
}

func (a *OpenCartAdapter) login(ctx context.Context, creds *integration.PlatformCredentials) (string, error) {
	query := url.Values{}
	query.Set("route", "api/login")

	form := url.Values{}
	form.Set("username", creds.APIKey)
	form.Set("key", creds.APISecret)

	resp, err := a.post(ctx, creds, query, form)
	if err != nil {
		return "", err
	}
	if msg := resp.errorText(); msg != "" {
		return "", fmt.Errorf("%w: %s", integration.ErrPlatformAuthFailed, msg)
	}
	token := resp.token()
	if token == "" {
		return "", fmt.Errorf("%w: login returned no api token", integration.ErrPlatformAuthFailed)
	}
	return token, nil
}

func (a *OpenCartAdapter) post(ctx context.Context, creds *integration.PlatformCredentials, query, form url.Values) (*openCartAPIResponse, error) {
	endpoint := creds.BaseURL() + "/index.php?" + query.Encode()
	req, err := a.client.newRequest(ctx, http.MethodPost, endpoint, formContentType, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	body, err := a.client.doRequest(req)
	if err != nil {
		return nil, err
	}

	var resp openCartAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return &resp, nil
}

var (
	_ integration.WebhookPlatform  = (*OpenCartAdapter)(nil)
	_ integration.StatusPushClient = (*OpenCartAdapter)(nil)
)
