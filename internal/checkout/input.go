package checkout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const (
	MaxItems       = 50
	MaxLineQty     = 100
	maxNameLen     = 100
	maxAddressLen  = 300
	maxCityLen     = 100
	maxNotesLen    = 500
	maxLandingSlug = 100
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,24}$`)
	fieldCheck   = validator.New()
)

// Customer is the delivery contact for a cash-on-delivery order.
type Customer struct {
	Name    string
	Phone   string
	Email   string
	Address string
	City    string
	Notes   string
}

// Item is one requested line. Prices are always taken from the catalog.
type Item struct {
	ProductID uuid.UUID
	Quantity  int
	Color     string
	Size      string
}

// Attribution carries the browser identifiers used to deduplicate the
// Purchase conversion against the client-side pixel.
type Attribution struct {
	EventID   string
	SourceURL string
	ClientIP  string
	UserAgent string
	FBP       string
	FBC       string
}

// Input is a PlaceOrder request.
type Input struct {
	Source      enums.OrderSource
	LandingSlug string
	Customer    Customer
	Items       []Item
	Attribution Attribution
}

func (c *Customer) normalize() {
	c.Name = strings.Join(strings.Fields(c.Name), " ")
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Address = strings.TrimSpace(c.Address)
	c.City = strings.TrimSpace(c.City)
	c.Notes = strings.TrimSpace(c.Notes)
}

func (c Customer) validate() error {
	fields := map[string]any{}
	switch n := len([]rune(c.Name)); {
	case n == 0:
		fields["customer_name"] = "required"
	case n < 2 || n > maxNameLen:
		fields["customer_name"] = fmt.Sprintf("must be 2 to %d characters", maxNameLen)
	}
	switch {
	case c.Phone == "":
		fields["customer_phone"] = "required"
	case !phonePattern.MatchString(c.Phone) || digitCount(c.Phone) < 7 || digitCount(c.Phone) > 15:
		fields["customer_phone"] = "must be a valid phone number"
	}
	if c.Email != "" && fieldCheck.Var(c.Email, "email") != nil {
		fields["customer_email"] = "must be a valid email"
	}
	switch n := len([]rune(c.Address)); {
	case n == 0:
		fields["shipping_address"] = "required"
	case n < 5 || n > maxAddressLen:
		fields["shipping_address"] = fmt.Sprintf("must be 5 to %d characters", maxAddressLen)
	}
	switch n := len([]rune(c.City)); {
	case n == 0:
		fields["city"] = "required"
	case n > maxCityLen:
		fields["city"] = fmt.Sprintf("must be at most %d characters", maxCityLen)
	}
	if len([]rune(c.Notes)) > maxNotesLen {
		fields["notes"] = fmt.Sprintf("must be at most %d characters", maxNotesLen)
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid customer details").WithDetails(fields)
	}
	return nil
}

// normalizeItems trims variants and merges lines with the same identity.
func normalizeItems(items []Item) ([]Item, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if len(items) > MaxItems {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "order may contain at most %d items", MaxItems)
	}
	out := make([]Item, 0, len(items))
	index := map[Item]int{}
	for i, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required").
				WithDetails(map[string]any{"item": i})
		}
		if item.Quantity < 1 || item.Quantity > MaxLineQty {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be between 1 and %d", MaxLineQty).
				WithDetails(map[string]any{"item": i, "quantity": item.Quantity})
		}
		item.Color = strings.TrimSpace(item.Color)
		item.Size = strings.TrimSpace(item.Size)
		key := Item{ProductID: item.ProductID, Color: item.Color, Size: item.Size}
		if at, ok := index[key]; ok {
			out[at].Quantity += item.Quantity
			if out[at].Quantity > MaxLineQty {
				return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be between 1 and %d", MaxLineQty).
					WithDetails(map[string]any{"product_id": item.ProductID.String(), "quantity": out[at].Quantity})
			}
			continue
		}
		index[key] = len(out)
		out = append(out, item)
	}
	return out, nil
}

func validateLandingSlug(value string) error {
	if value == "" {
		return nil
	}
	if len(value) > maxLandingSlug || !slug.IsSlug(value) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid landing_slug")
	}
	return nil
}

func digitCount(value string) int {
	n := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
