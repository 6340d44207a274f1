package ecommerce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/orderhub/backend/internal/domain/integration"
)

// envelope is the wrapper used by the module-based platforms (PrestaShop, OpenCart, Magento).
// Their webhook modules either post the order object directly or wrap it as {"event":..., "order":{...}}.
type envelope struct {
	Event FlexString      `json:"event"`
	Order json.RawMessage `json:"order"`
}

// peekEvent reads the body "event" field without decoding the order.
// Malformed bodies yield "" and fail later in Normalize.
func peekEvent(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Event.String()
}

// decodeOrder decodes the order object of body into v, unwrapping an envelope when present
func decodeOrder(body []byte, v any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPayloadMalformed, err)
	}
	raw := body
	if trimmed := bytes.TrimSpace(env.Order); len(trimmed) > 0 && trimmed[0] == '{' {
		raw = trimmed
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPayloadMalformed, err)
	}
	return nil
}

// decodeJSON decodes a flat payload into v
func decodeJSON(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPayloadMalformed, err)
	}
	return nil
}

// orderEvents is a lower-cased set of event names that carry a full order payload.
type orderEvents map[string]struct{}

// genericOrderEvents are sent by the bundled webhook modules on every platform.
var genericOrderEvents = []string{"order.created", "order.updated", "order.status_changed"}

func newOrderEvents(names ...string) orderEvents {
	set := make(orderEvents, len(names)+len(genericOrderEvents))
	for _, n := range append(names, genericOrderEvents...) {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}

// accepts reports whether event is in the set. An empty event is a module
// posting the bare order object and is accepted.
func (e orderEvents) accepts(event string) bool {
	event = strings.ToLower(strings.TrimSpace(event))
	if event == "" {
		return true
	}
	_, ok := e[event]
	return ok
}

var (
	prestaShopOrderEvents = newOrderEvents(
		"actionValidateOrder",
		"actionOrderStatusUpdate",
		"actionOrderStatusPostUpdate",
		"actionOrderEdited",
		"actionObjectOrderAddAfter",
		"actionObjectOrderUpdateAfter",
	)
	openCartOrderEvents = newOrderEvents(
		"order.add",
		"order.edit",
		"order.history",
		"order.addHistory",
	)
	magentoOrderEvents = newOrderEvents(
		"sales_order_place_after",
		"sales_order_save_after",
		"sales_order_save_commit_after",
		"order_cancel_after",
	)
)
