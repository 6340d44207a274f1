package ecommerce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderhub/backend/internal/domain/integration"
)

const shopifyOrderJSON = `{
  "id": 450789469,
  "name": "#1001",
  "email": "ivan@example.com",
  "phone": null,
  "total_price": "199.00",
  "financial_status": "paid",
  "fulfillment_status": "partial",
  "customer": {"first_name": "Ivan", "last_name": "Petrov", "phone": "+359888111222"},
  "shipping_address": {"address1": "ul. Rakovski 10", "address2": "", "city": "Sofia", "province": null, "zip": "1000", "country": "Bulgaria", "phone": "+359888000000"},
  "billing_address": {"address1": "bul. Bulgaria 1", "city": "Plovdiv", "country": "Bulgaria"},
  "line_items": [
    {"title": "Ceramic mug", "sku": "MUG-01", "quantity": 2},
    {"title": "Tea towel", "sku": "", "quantity": 1}
  ]
}`

func newTestShopifyAdapter(t *testing.T) *ShopifyAdapter {
	t.Helper()
	a, err := NewShopifyAdapter(DefaultClientConfig())
	require.NoError(t, err)
	return a
}

// ---------------------------------------------------------------------------
// Normalization
// ---------------------------------------------------------------------------

func TestNormalizeShopify(t *testing.T) {
	n, err := newTestShopifyAdapter(t).Normalize([]byte(shopifyOrderJSON))
	require.NoError(t, err)

	assert.Equal(t, "SH-450789469", n.ExternalCode)
	assert.Equal(t, "450789469", n.ExternalID)
	assert.Equal(t, integration.PlatformShopify, n.Source)
	assert.Equal(t, "Ivan Petrov", n.CustomerName)
	assert.Equal(t, "ivan@example.com", n.CustomerEmail)
	assert.Equal(t, "+359888000000", n.Phone)
	assert.Equal(t, "ul. Rakovski 10, Sofia, 1000, Bulgaria", n.DeliveryAddress)
	assert.Equal(t, "Ceramic mug, Tea towel", n.ProductNames)
	assert.Equal(t, "MUG-01", n.CatalogNumbers)
	assert.Equal(t, 3, n.Quantity)
	assert.True(t, decimal.RequireFromString("199").Equal(n.TotalPrice))
	assert.True(t, n.IsCorrect)
	assert.NoError(t, n.Validate())
}

func TestNormalizeShopify_FulfillmentWinsOverPayment(t *testing.T) {
	n, err := NormalizeShopify(&ShopifyOrderPayload{
		ID:                "1",
		FinancialStatus:   "paid",
		FulfillmentStatus: "partial",
	})
	require.NoError(t, err)
	assert.Equal(t, "partial", n.VendorStatus)
	assert.Equal(t, integration.StatusProcessing, n.Status)

	n, err = NormalizeShopify(&ShopifyOrderPayload{ID: "1", FinancialStatus: "paid"})
	require.NoError(t, err)
	assert.Equal(t, integration.StatusConfirmed, n.Status)
}

func TestNormalizeShopify_Sentinels(t *testing.T) {
	n, err := NormalizeShopify(&ShopifyOrderPayload{ID: "5"})
	require.NoError(t, err)

	assert.Equal(t, integration.NoName, n.CustomerName)
	assert.Equal(t, integration.NoPhone, n.Phone)
	assert.Equal(t, integration.NoProduct, n.ProductNames)
	assert.Equal(t, "", n.DeliveryAddress)
	assert.Equal(t, integration.StatusNew, n.Status)
}

func TestNormalizeShopify_BillingFallback(t *testing.T) {
	n, err := NormalizeShopify(&ShopifyOrderPayload{
		ID:              "6",
		ShippingAddress: &ShopifyAddress{Address1: " ", City: ""},
		BillingAddress:  &ShopifyAddress{FirstName: "Maria", LastName: "Ivanova", Address1: "bul. Bulgaria 1", City: "Plovdiv"},
	})
	require.NoError(t, err)
	assert.Equal(t, "bul. Bulgaria 1, Plovdiv", n.DeliveryAddress)
	assert.Equal(t, "Maria Ivanova", n.CustomerName)
}

func TestNormalizeShopify_Errors(t *testing.T) {
	a := newTestShopifyAdapter(t)

	_, err := a.Normalize([]byte(`{"email":"x@example.com"}`))
	assert.ErrorIs(t, err, integration.ErrPayloadMissingOrderID)

	_, err = a.Normalize([]byte(`[1,2`))
	assert.ErrorIs(t, err, integration.ErrPayloadMalformed)
}

func TestNormalizeShopify_Stable(t *testing.T) {
	a := newTestShopifyAdapter(t)
	first, err := a.Normalize([]byte(shopifyOrderJSON))
	require.NoError(t, err)
	second, err := a.Normalize([]byte(shopifyOrderJSON))
	require.NoError(t, err)
	assert.Equal(t, first.ExternalCode, second.ExternalCode)
}

// ---------------------------------------------------------------------------
// Webhook surface
// ---------------------------------------------------------------------------

func TestShopifyAdapter_Events(t *testing.T) {
	a := newTestShopifyAdapter(t)

	d := &integration.WebhookDelivery{Headers: map[string]string{
		"X-Shopify-Topic":      "orders/updated",
		"X-Shopify-Webhook-Id": "b54557e4-bdd9-4b37-8a5f-bf7d70bcd043",
	}}
	assert.Equal(t, "orders/updated", a.EventType(d))
	assert.Equal(t, "b54557e4-bdd9-4b37-8a5f-bf7d70bcd043", a.DeliveryID(d))

	assert.True(t, a.IsOrderEvent("orders/create"))
	assert.True(t, a.IsOrderEvent("orders/paid"))
	assert.True(t, a.IsOrderEvent(""))
	assert.False(t, a.IsOrderEvent("orders/delete"))
	assert.False(t, a.IsOrderEvent("customers/update"))
	assert.False(t, a.IsOrderEvent("products/create"))
	assert.True(t, a.IsOrderEvent("orders/partially_fulfilled"))
	assert.False(t, a.IsOrderEvent("orders/edited"))
	assert.False(t, a.IsOrderEvent("orders/risk_assessment_changed"))
	assert.False(t, a.IsOrderEvent("orders/shopify_protect_eligibility_changed"))
}

func TestShopifyAdapter_VerifySignature(t *testing.T) {
	a := newTestShopifyAdapter(t)
	body := []byte(shopifyOrderJSON)

	assert.NoError(t, a.VerifySignature(body, Sign(body, "whsec", SignatureBase64), "whsec"))
	assert.ErrorIs(t, a.VerifySignature(body, Sign(body, "whsec", SignatureHex), "whsec"), integration.ErrPlatformInvalidSignature)
}

// ---------------------------------------------------------------------------
// Status push
// ---------------------------------------------------------------------------

func TestShopifyAdapter_PushFulfilled(t *testing.T) {
	var created atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shpat_token", r.Header.Get("X-Shopify-Access-Token"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/api/2024-10/orders/450789469/fulfillment_orders.json":
			_, _ = w.Write([]byte(`{"fulfillment_orders":[{"id":1046000778,"status":"open"},{"id":1046000779,"status":"closed"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/admin/api/2024-10/fulfillments.json":
			body, _ := io.ReadAll(r.Body)
			var req map[string]map[string]any
			assert.NoError(t, json.Unmarshal(body, &req))
			refs := req["fulfillment"]["line_items_by_fulfillment_order"].([]any)
			assert.Len(t, refs, 1)
			assert.JSONEq(t, `{"fulfillment_order_id":1046000778}`, mustJSON(t, refs[0]))
			created.Add(1)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"fulfillment":{"id":255858046}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	creds := &integration.PlatformCredentials{Platform: integration.PlatformShopify, StoreURL: server.URL + "/", APIKey: "shpat_token", IsEnabled: true}
	err := newTestShopifyAdapter(t).PushStatus(context.Background(), creds, "450789469", "fulfilled")
	require.NoError(t, err)
	assert.Equal(t, int32(1), created.Load())
}

func TestShopifyAdapter_PushFulfilled_NothingOpen(t *testing.T) {
	var posts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts.Add(1)
		}
		_, _ = w.Write([]byte(`{"fulfillment_orders":[{"id":1,"status":"closed"}]}`))
	}))
	defer server.Close()

	creds := &integration.PlatformCredentials{StoreURL: server.URL, APIKey: "k", IsEnabled: true}
	require.NoError(t, newTestShopifyAdapter(t).PushStatus(context.Background(), creds, "1", "fulfilled"))
	assert.Equal(t, int32(0), posts.Load())
}

func TestShopifyAdapter_PushCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2024-10/orders/42/cancel.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"order":{"id":42}}`))
	}))
	defer server.Close()

	creds := &integration.PlatformCredentials{StoreURL: server.URL, APIKey: "k", IsEnabled: true}
	assert.NoError(t, newTestShopifyAdapter(t).PushStatus(context.Background(), creds, "42", "cancelled"))
}

func TestShopifyAdapter_PushErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, integration.ErrPlatformAuthFailed},
		{"unprocessable", http.StatusUnprocessableEntity, integration.ErrPlatformRequestFailed},
		{"server error", http.StatusInternalServerError, integration.ErrPlatformRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"errors":"nope"}`))
			}))
			defer server.Close()

			creds := &integration.PlatformCredentials{StoreURL: server.URL, APIKey: "k", IsEnabled: true}
			err := newTestShopifyAdapter(t).PushStatus(context.Background(), creds, "42", "cancelled")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestShopifyAdapter_PushUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	creds := &integration.PlatformCredentials{StoreURL: url, APIKey: "k", IsEnabled: true}
	err := newTestShopifyAdapter(t).PushStatus(context.Background(), creds, "42", "cancelled")
	assert.ErrorIs(t, err, integration.ErrPlatformUnavailable)
}

func TestShopifyAdapter_PushUnsupportedStatus(t *testing.T) {
	creds := &integration.PlatformCredentials{StoreURL: "http://127.0.0.1:1", APIKey: "k", IsEnabled: true}
	err := newTestShopifyAdapter(t).PushStatus(context.Background(), creds, "42", "paid")
	assert.ErrorIs(t, err, integration.ErrPlatformUnsupported)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
