package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	integrationapp "github.com/orderhub/backend/internal/application/integration"
	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/interfaces/http/dto"
)

func (s *testStack) seedOrder(t *testing.T, code string, status integration.InternalStatus) uuid.UUID {
	t.Helper()
	source, _, err := integration.ParseExternalCode(code)
	require.NoError(t, err)
	o, err := order.NewFromNormalized(&integration.NormalizedOrder{
		ExternalCode:    code,
		CustomerName:    "Maria Georgieva",
		Phone:           "0888123456",
		DeliveryAddress: "bul. Vitosha 5, Sofia",
		ProductNames:    "Linen shirt",
		CatalogNumbers:  "LS-9",
		Quantity:        1,
		TotalPrice:      decimal.RequireFromString("59.00"),
		Status:          status,
		Source:          source,
		IsCorrect:       true,
	})
	require.NoError(t, err)
	result, err := s.orders.UpsertIngested(context.Background(), o)
	require.NoError(t, err)
	return result.ID
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeData unmarshals the data field of a success envelope into v
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) dto.Response {
	t.Helper()
	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	if v != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, v))
	}
	return envelope.Response
}

func TestOrderHandler_List(t *testing.T) {
	s := newTestStack(t, stackOptions{})
	s.seedOrder(t, "WC-1", integration.StatusNew)
	s.seedOrder(t, "WC-2", integration.StatusShipped)
	s.seedOrder(t, "SH-3", integration.StatusNew)
	router := s.router()

	t.Run("filters by source", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/orders?source=woocommerce", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var items []integrationapp.OrderResponse
		resp := decodeData(t, w, &items)
		assert.Len(t, items, 2)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(2), resp.Meta.Total)
	})

	t.Run("filters by status", func(t *testing.T) {
		q := url.Values{"status": {string(integration.StatusShipped)}}
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/orders?"+q.Encode(), nil))
		require.Equal(t, http.StatusOK, w.Code)

		var items []integrationapp.OrderResponse
		decodeData(t, w, &items)
		require.Len(t, items, 1)
		assert.Equal(t, "WC-2", items[0].Code)
	})

	t.Run("pages", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/orders?page=2&page_size=2", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var items []integrationapp.OrderResponse
		resp := decodeData(t, w, &items)
		assert.Len(t, items, 1)
		assert.Equal(t, 2, resp.Meta.TotalPages)
	})

	t.Run("rejects unknown source", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/orders?source=ebay", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_Get(t *testing.T) {
	s := newTestStack(t, stackOptions{})
	id := s.seedOrder(t, "PS-77", integration.StatusNew)
	router := s.router()

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+id.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got integrationapp.OrderResponse
	decodeData(t, w, &got)
	assert.Equal(t, "PS-77", got.Code)
	assert.Equal(t, integration.PlatformPrestaShop, got.Source)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_GetByCode(t *testing.T) {
	s := newTestStack(t, stackOptions{})
	id := s.seedOrder(t, "MG-000000031", integration.StatusProcessing)
	router := s.router()

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/orders/code/MG-000000031", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got integrationapp.OrderResponse
	decodeData(t, w, &got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, integration.PlatformMagento, got.Source)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/orders/code/MG-404", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/orders/code/XX-1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, decodeResponse(t, w).Error.Code)
}

func TestOrderHandler_ChangeStatus(t *testing.T) {
	t.Run("saves and reports a skipped push without credentials", func(t *testing.T) {
		s := newTestStack(t, stackOptions{})
		id := s.seedOrder(t, "MG-100", integration.StatusNew)

		body := `{"status":"` + string(integration.StatusShipped) + `"}`
		w := serve(s.router(), jsonRequest(http.MethodPatch, "/api/v1/orders/"+id.String()+"/status", body))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result integrationapp.StatusChangeResult
		decodeData(t, w, &result)
		assert.Equal(t, string(integration.StatusShipped), result.Order.Status)
		assert.Equal(t, integration.PushOutcomeSkipped, result.Push.Outcome)
		assert.Equal(t, integrationapp.SkipReasonNoCredentials, result.Push.Reason)

		stored, err := s.orders.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, integration.StatusShipped, stored.Status)

		logs, err := s.syncLogs.FindByOrder(context.Background(), id, 10)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, integration.SyncDirectionOutbound, logs[0].Direction)
	})

	t.Run("disabled integration skips the push", func(t *testing.T) {
		s := newTestStack(t, stackOptions{})
		s.saveCredentials(t, &integration.PlatformCredentials{
			Platform: integration.PlatformOpenCart,
			StoreURL: "https://shop.example.com",
			APIKey:   "key",
		})
		id := s.seedOrder(t, "OC-5", integration.StatusNew)

		body := `{"status":"` + string(integration.StatusCancelled) + `"}`
		w := serve(s.router(), jsonRequest(http.MethodPatch, "/api/v1/orders/"+id.String()+"/status", body))
		require.Equal(t, http.StatusOK, w.Code)

		var result integrationapp.StatusChangeResult
		decodeData(t, w, &result)
		assert.Equal(t, integration.PushOutcomeSkipped, result.Push.Outcome)
		assert.Equal(t, integrationapp.SkipReasonDisabled, result.Push.Reason)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		s := newTestStack(t, stackOptions{})
		id := s.seedOrder(t, "MG-101", integration.StatusNew)

		w := serve(s.router(), jsonRequest(http.MethodPatch, "/api/v1/orders/"+id.String()+"/status", `{"status":"lost"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		s := newTestStack(t, stackOptions{})
		body := `{"status":"` + string(integration.StatusShipped) + `"}`
		w := serve(s.router(), jsonRequest(http.MethodPatch, "/api/v1/orders/"+uuid.NewString()+"/status", body))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandler_CommentAssignmentPayment(t *testing.T) {
	s := newTestStack(t, stackOptions{})
	id := s.seedOrder(t, "WC-900", integration.StatusNew)
	router := s.router()
	base := "/api/v1/orders/" + id.String()

	w := serve(router, jsonRequest(http.MethodPatch, base+"/comment", `{"comment":"call before delivery"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(router, jsonRequest(http.MethodPatch, base+"/assignment", `{"assigned_to":"elena"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(router, jsonRequest(http.MethodPatch, base+"/payment", `{"method":"cod","reference":"R-1"}`))
	require.Equal(t, http.StatusOK, w.Code)

	var got integrationapp.OrderResponse
	decodeData(t, w, &got)
	assert.Equal(t, "call before delivery", got.Comment)
	assert.Equal(t, "elena", got.AssignedTo)
	assert.Equal(t, "cod", got.PaymentMethod)
	assert.NotNil(t, got.PaidAt)

	t.Run("comment too long", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"comment": strings.Repeat("x", 2001)})
		w := serve(router, jsonRequest(http.MethodPatch, base+"/comment", string(body)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidationLength, decodeResponse(t, w).Error.Code)
	})

	t.Run("payment needs a method", func(t *testing.T) {
		w := serve(router, jsonRequest(http.MethodPatch, base+"/payment", `{}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("redelivery keeps operator fields", func(t *testing.T) {
		s.seedOrder(t, "WC-900", integration.StatusConfirmed)
		stored, err := s.orders.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "call before delivery", stored.Comment)
		assert.Equal(t, "elena", stored.AssignedTo)
	})
}

func TestOrderHandler_SyncLogs(t *testing.T) {
	s := shopifyStack(t)
	router := s.router()

	require.Equal(t, http.StatusOK, serve(router, shopifyDelivery(shopifyOrderBody, "orders/create", "", testWebhookSecret)).Code)
	stored, err := s.orders.FindByCode(context.Background(), "SH-450789469")
	require.NoError(t, err)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+stored.ID.String()+"/sync-logs?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var logs []integrationapp.SyncLogResponse
	decodeData(t, w, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, "SH-450789469", logs[0].OrderCode)
	assert.Equal(t, integration.SyncDirectionInbound, logs[0].Direction)
}
