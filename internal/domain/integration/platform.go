package integration

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Integration Errors
// ---------------------------------------------------------------------------

var (
	// Platform errors
	ErrPlatformUnavailable      = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed    = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse  = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed       = errors.New("integration: platform authentication failed")
	ErrPlatformUnsupported      = errors.New("integration: unsupported platform")
	ErrPlatformInvalidSignature = errors.New("integration: invalid platform signature")

	// Payload errors
	ErrPayloadMalformed      = errors.New("integration: malformed webhook payload")
	ErrPayloadMissingOrderID = errors.New("integration: webhook payload has no order id")

	// External code errors
	ErrExternalCodeInvalid = errors.New("integration: invalid external order code")

	// Credential errors
	ErrCredentialsNotFound   = errors.New("integration: platform credentials not found")
	ErrCredentialsInvalidURL = errors.New("integration: invalid store url")
)

// ---------------------------------------------------------------------------
// PlatformCode represents the type of e-commerce platform
// ---------------------------------------------------------------------------

// PlatformCode represents the type of e-commerce platform.
// The value doubles as the order `source` tag and the webhook route segment.
type PlatformCode string

const (
	// PlatformWooCommerce represents WordPress/WooCommerce stores
	PlatformWooCommerce PlatformCode = "woocommerce"
	// PlatformShopify represents Shopify stores
	PlatformShopify PlatformCode = "shopify"
	// PlatformPrestaShop represents PrestaShop stores
	PlatformPrestaShop PlatformCode = "prestashop"
	// PlatformOpenCart represents OpenCart stores
	PlatformOpenCart PlatformCode = "opencart"
	// PlatformMagento represents Magento / Adobe Commerce stores
	PlatformMagento PlatformCode = "magento"
)

// AllPlatforms lists every supported platform in a stable order
func AllPlatforms() []PlatformCode {
	return []PlatformCode{
		PlatformWooCommerce,
		PlatformShopify,
		PlatformPrestaShop,
		PlatformOpenCart,
		PlatformMagento,
	}
}

// ParsePlatformCode converts user input into a PlatformCode
func ParsePlatformCode(s string) (PlatformCode, error) {
	code := PlatformCode(strings.ToLower(strings.TrimSpace(s)))
	if !code.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrPlatformUnsupported, s)
	}
	return code, nil
}

// IsValid returns true if the platform code is valid
func (c PlatformCode) IsValid() bool {
	switch c {
	case PlatformWooCommerce, PlatformShopify, PlatformPrestaShop,
		PlatformOpenCart, PlatformMagento:
		return true
	default:
		return false
	}
}

// String returns the string representation of PlatformCode
func (c PlatformCode) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the platform
func (c PlatformCode) DisplayName() string {
	switch c {
	case PlatformWooCommerce:
		return "WooCommerce"
	case PlatformShopify:
		return "Shopify"
	case PlatformPrestaShop:
		return "PrestaShop"
	case PlatformOpenCart:
		return "OpenCart"
	case PlatformMagento:
		return "Magento"
	default:
		return string(c)
	}
}

// Prefix returns the external code prefix of the platform
func (c PlatformCode) Prefix() string {
	switch c {
	case PlatformWooCommerce:
		return "WC"
	case PlatformShopify:
		return "SH"
	case PlatformPrestaShop:
		return "PS"
	case PlatformOpenCart:
		return "OC"
	case PlatformMagento:
		return "MG"
	default:
		return ""
	}
}

// platformForPrefix is the inverse of Prefix
func platformForPrefix(prefix string) (PlatformCode, bool) {
	for _, p := range AllPlatforms() {
		if p.Prefix() == prefix {
			return p, true
		}
	}
	return "", false
}

// ---------------------------------------------------------------------------
// External codes
// ---------------------------------------------------------------------------

// BuildExternalCode derives the idempotency key "<prefix>-<order id>" for a platform order
func BuildExternalCode(platform PlatformCode, orderID string) (string, error) {
	prefix := platform.Prefix()
	if prefix == "" {
		return "", fmt.Errorf("%w: %q", ErrPlatformUnsupported, platform)
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", ErrPayloadMissingOrderID
	}
	return prefix + "-" + orderID, nil
}

// ParseExternalCode splits an external code back into platform and platform order id
func ParseExternalCode(code string) (PlatformCode, string, error) {
	prefix, id, ok := strings.Cut(code, "-")
	if !ok || id == "" {
		return "", "", fmt.Errorf("%w: %q", ErrExternalCodeInvalid, code)
	}
	platform, ok := platformForPrefix(prefix)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown prefix %q", ErrExternalCodeInvalid, prefix)
	}
	return platform, id, nil
}
