package integration

import "net/textproto"

// WebhookDelivery is one inbound HTTP delivery from a platform
type WebhookDelivery struct {
	Platform PlatformCode
	// Headers holds the first value of each request header, keyed canonically
	Headers map[string]string
	// Body is the raw request body, the input of signature verification
	Body []byte
}

// Header returns a header value by case-insensitive name
func (d *WebhookDelivery) Header(name string) string {
	if d.Headers == nil {
		return ""
	}
	return d.Headers[textproto.CanonicalMIMEHeaderKey(name)]
}

// WebhookPlatform is the port an inbound platform adapter implements.
// Implementations are stateless; every method is safe for concurrent use.
type WebhookPlatform interface {
	// Platform returns the platform this adapter serves
	Platform() PlatformCode

	// SignatureHeader names the header carrying the payload signature
	SignatureHeader() string

	// AllowedHeaders lists the request headers browsers may send cross-origin
	AllowedHeaders() []string

	// VerifySignature checks the signature of body against the shared secret
	VerifySignature(body []byte, signature, secret string) error

	// EventType extracts the event or topic of a delivery. Empty when the platform sent none.
	EventType(d *WebhookDelivery) string

	// IsOrderEvent reports whether an event type carries an order payload.
	// Platforms whose modules post bare orders accept an empty event type.
	IsOrderEvent(eventType string) bool

	// DeliveryID returns the platform's unique delivery id, or "" when it sends none
	DeliveryID(d *WebhookDelivery) string

	// Normalize decodes a raw payload into a NormalizedOrder
	Normalize(body []byte) (*NormalizedOrder, error)
}

// PingEvent is the event type reported for acknowledged pings
const PingEvent = "ping"

// PingDetector is implemented by adapters whose platform sends an unsigned
// test delivery when a webhook is saved. Pings are acknowledged before
// signature verification and never reach Normalize.
type PingDetector interface {
	IsPing(d *WebhookDelivery) bool
}
