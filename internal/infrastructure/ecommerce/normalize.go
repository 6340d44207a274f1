package ecommerce

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/orderhub/backend/internal/domain/integration"
)

// cleanText trims s and converts it to NFC so visually identical names compare equal
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// JoinAddress joins the non-empty parts with ", ".
// Parts are trimmed first, so the result never has leading, trailing or doubled separators.
func JoinAddress(parts ...string) string {
	return joinNonEmpty(parts)
}

func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = cleanText(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, integration.ListSeparator)
}

// firstNonEmpty returns the first non-empty candidate
func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// fullName joins name parts with a single space
func fullName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = cleanText(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// orDefault returns s, or def when s is blank
func orDefault(s, def string) string {
	if s = cleanText(s); s == "" {
		return def
	}
	return s
}

// lineItem is the platform-neutral view of an order line used for aggregation
type lineItem struct {
	name     string
	sku      string
	quantity int
}

// lineSummary aggregates line items into product names, catalog numbers and total quantity
type lineSummary struct {
	productNames   string
	catalogNumbers string
	quantity       int
}

// summarizeLines fails with ErrPayloadMalformed when the total exceeds maxQuantity
func summarizeLines(items []lineItem) (lineSummary, error) {
	names := make([]string, 0, len(items))
	skus := make([]string, 0, len(items))
	total := 0
	for _, it := range items {
		names = append(names, it.name)
		skus = append(skus, it.sku)
		// missing quantities count as one unit
		if it.quantity <= 0 {
			total++
		} else {
			total += it.quantity
		}
		if total > maxQuantity {
			return lineSummary{}, fmt.Errorf("%w: total quantity exceeds %d", integration.ErrPayloadMalformed, maxQuantity)
		}
	}
	return lineSummary{
		productNames:   orDefault(joinNonEmpty(names), integration.NoProduct),
		catalogNumbers: joinNonEmpty(skus),
		quantity:       total,
	}, nil
}

// newNormalizedOrder fills the fields every platform computes the same way
func newNormalizedOrder(platform integration.PlatformCode, orderID string) (*integration.NormalizedOrder, error) {
	code, err := integration.BuildExternalCode(platform, orderID)
	if err != nil {
		return nil, err
	}
	return &integration.NormalizedOrder{
		ExternalCode: code,
		ExternalID:   strings.TrimSpace(orderID),
		Source:       platform,
		IsCorrect:    true,
	}, nil
}
