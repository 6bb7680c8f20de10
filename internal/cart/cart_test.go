package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func ref(id uuid.UUID, price string) ProductRef {
	return ProductRef{ID: id, Name: "Product", Slug: "product", Price: decimal.RequireFromString(price)}
}

func expectedTotal(c *Cart) decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items {
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

func TestAddItemMergesIdenticalVariant(t *testing.T) {
	p := ref(uuid.New(), "10.00")
	c := New()
	red := Variant{Color: "red", Size: "M"}

	for _, qty := range []int{1, 2, 3} {
		c.AddItem(p, qty, red)
	}

	if len(c.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(c.Items))
	}
	if c.Items[0].Quantity != 6 {
		t.Fatalf("expected merged quantity 6, got %d", c.Items[0].Quantity)
	}
	if !c.Total.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("unexpected total %s", c.Total)
	}
}

func TestAddItemDifferentVariantCreatesLine(t *testing.T) {
	p1 := ref(uuid.New(), "12.50")
	c := New()

	c.AddItem(p1, 2, Variant{})
	c.AddItem(p1, 1, Variant{Color: "red"})

	if len(c.Items) != 2 {
		t.Fatalf("expected two lines, got %d", len(c.Items))
	}
	plain, ok := c.Line(p1.ID, Variant{})
	if !ok || plain.Quantity != 2 {
		t.Fatalf("expected plain line qty 2, got %+v ok=%v", plain, ok)
	}
	red, ok := c.Line(p1.ID, Variant{Color: "red"})
	if !ok || red.Quantity != 1 {
		t.Fatalf("expected red line qty 1, got %+v ok=%v", red, ok)
	}
	if c.QuantityOf(p1.ID) != 3 || c.ItemCount() != 3 {
		t.Fatalf("unexpected counts quantityOf=%d itemCount=%d", c.QuantityOf(p1.ID), c.ItemCount())
	}
}

func TestTotalTracksMutations(t *testing.T) {
	a := ref(uuid.New(), "19.99")
	b := ref(uuid.New(), "0.10")
	c := New()

	steps := []func(){
		func() { c.AddItem(a, 3, Variant{}) },
		func() { c.AddItem(b, 7, Variant{Size: "S"}) },
		func() { c.UpdateQuantity(a.ID, 1, Variant{}) },
		func() { c.AddItem(b, 3, Variant{Size: "S"}) },
		func() { c.RemoveItem(a.ID, Variant{}) },
		func() { c.UpdateQuantity(b.ID, 25, Variant{Size: "S"}) },
		func() { c.AddItem(a, 2, Variant{Color: "blue"}) },
	}
	for i, step := range steps {
		step()
		if want := expectedTotal(c); !c.Total.Equal(want) {
			t.Fatalf("step %d: total %s, want %s", i, c.Total, want)
		}
	}
	if want := decimal.RequireFromString("42.48"); !c.Total.Equal(want) {
		t.Fatalf("final total %s, want %s", c.Total, want)
	}
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	p := ref(uuid.New(), "5")
	variant := Variant{Color: "green"}

	updated := New()
	updated.AddItem(p, 2, variant)
	updated.AddItem(p, 1, Variant{})
	updated.UpdateQuantity(p.ID, 0, variant)

	removed := New()
	removed.AddItem(p, 2, variant)
	removed.AddItem(p, 1, Variant{})
	removed.RemoveItem(p.ID, variant)

	if len(updated.Items) != len(removed.Items) || !updated.Total.Equal(removed.Total) {
		t.Fatalf("update to zero %+v differs from remove %+v", updated, removed)
	}
	if _, ok := updated.Line(p.ID, variant); ok {
		t.Fatal("expected green line removed")
	}
}

func TestUpdateQuantityMissingLineIsNoop(t *testing.T) {
	c := New()
	c.AddItem(ref(uuid.New(), "3"), 1, Variant{})
	c.UpdateQuantity(uuid.New(), 4, Variant{})

	if len(c.Items) != 1 || c.ItemCount() != 1 {
		t.Fatalf("expected cart unchanged, got %+v", c.Items)
	}
}

func TestAddItemIgnoresNonPositive(t *testing.T) {
	c := New()
	c.AddItem(ref(uuid.New(), "3"), 0, Variant{})
	c.AddItem(ref(uuid.New(), "3"), -2, Variant{})
	if !c.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", c.Items)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	c := New()
	c.AddItem(ref(uuid.New(), "8"), 2, Variant{})

	c.Clear()
	c.Clear()

	if !c.IsEmpty() || !c.Total.IsZero() {
		t.Fatalf("expected empty cart with zero total, got %+v", c)
	}
}

func TestAddItemMergeTakesLatestPrice(t *testing.T) {
	id := uuid.New()
	c := New()
	c.AddItem(ref(id, "10.00"), 1, Variant{})
	c.AddItem(ref(id, "12.00"), 1, Variant{})

	if len(c.Items) != 1 || c.Items[0].Quantity != 2 {
		t.Fatalf("expected one merged line of 2, got %+v", c.Items)
	}
	if !c.Total.Equal(decimal.RequireFromString("24")) {
		t.Fatalf("expected total at the current price 24, got %s", c.Total)
	}
}

func TestSubtractKeepsUnorderedLines(t *testing.T) {
	tote, mug, hat := uuid.New(), uuid.New(), uuid.New()
	c := New()
	c.AddItem(ref(tote, "10.00"), 2, Variant{})
	c.AddItem(ref(mug, "5.00"), 3, Variant{Color: "blue"})
	c.AddItem(ref(hat, "8.00"), 1, Variant{})

	c.Subtract([]Line{
		{Product: ref(tote, "10.00"), Quantity: 2},
		{Product: ref(mug, "5.00"), Quantity: 1, Variant: Variant{Color: "blue"}},
		{Product: ref(uuid.New(), "1.00"), Quantity: 4},
	})

	if _, ok := c.Line(tote, Variant{}); ok {
		t.Fatalf("fully ordered line should be gone: %+v", c.Items)
	}
	if line, ok := c.Line(mug, Variant{Color: "blue"}); !ok || line.Quantity != 2 {
		t.Fatalf("expected 2 mugs left, got %+v", c.Items)
	}
	if line, ok := c.Line(hat, Variant{}); !ok || line.Quantity != 1 {
		t.Fatalf("unordered line must stay, got %+v", c.Items)
	}
	if !c.Total.Equal(expectedTotal(c)) || !c.Total.Equal(decimal.RequireFromString("18")) {
		t.Fatalf("unexpected total %s", c.Total)
	}
}
