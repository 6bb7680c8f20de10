package cart

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Encode serializes the cart into its persisted blob.
func Encode(c *Cart) ([]byte, error) {
	if c == nil {
		c = New()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return data, nil
}

// Decode parses a persisted blob. Duplicate identities are merged,
// non-positive lines dropped and the total recomputed, so a hand-edited or
// stale blob still satisfies the cart invariants. Empty input is an empty cart.
func Decode(data []byte) (*Cart, error) {
	out := New()
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, nil
	}
	var raw Cart
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	for _, line := range raw.Items {
		line.Variant = normalizeVariant(line.Variant)
		out.AddItem(line.Product, line.Quantity, line.Variant)
	}
	out.recompute()
	return out, nil
}

func normalizeVariant(v Variant) Variant {
	return Variant{Color: strings.TrimSpace(v.Color), Size: strings.TrimSpace(v.Size)}
}
