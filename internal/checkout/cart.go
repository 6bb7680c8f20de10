package checkout

import "github.com/angelmondragon/storefront-backend/internal/cart"

// ItemsFromCart converts session cart lines into order items. Cart prices
// are ignored; PlaceOrder reprices every line from the catalog.
func ItemsFromCart(c *cart.Cart) []Item {
	if c == nil {
		return nil
	}
	items := make([]Item, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, Item{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			Color:     line.Variant.Color,
			Size:      line.Variant.Size,
		})
	}
	return items
}
