package categories

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

func row(name string, parent *models.Category) models.Category {
	c := models.Category{ID: uuid.New(), Name: name, Slug: strings.ToLower(name)}
	if parent != nil {
		id := parent.ID
		c.ParentID = &id
	}
	return c
}

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestBuildTreeSortsSiblingsByName(t *testing.T) {
	shoes := row("Shoes", nil)
	sandals := row("Sandals", &shoes)
	boots := row("Boots", &shoes)

	roots := BuildTree([]models.Category{shoes, sandals, boots})

	if got := names(roots); len(got) != 1 || got[0] != "Shoes" {
		t.Fatalf("expected [Shoes] root, got %v", got)
	}
	if got := names(roots[0].Children); fmt.Sprint(got) != "[Boots Sandals]" {
		t.Fatalf("expected [Boots Sandals], got %v", got)
	}
}

func TestBuildTreePromotesOrphans(t *testing.T) {
	missing := models.Category{ID: uuid.New(), Name: "Gone"}
	orphan := row("Orphan", &missing)
	root := row("Apparel", nil)

	roots := BuildTree([]models.Category{orphan, root})
	if got := fmt.Sprint(names(roots)); got != "[Apparel Orphan]" {
		t.Fatalf("expected orphan promoted to root, got %s", got)
	}
}

func TestBuildTreeBreaksCycles(t *testing.T) {
	a := row("A", nil)
	b := row("B", &a)
	a.ParentID = &b.ID
	self := row("Self", nil)
	self.ParentID = &self.ID
	child := row("Child", &a)

	rows := []models.Category{a, b, self, child}
	roots := BuildTree(rows)

	assertEveryRowOnce(t, rows, roots)
	if got := fmt.Sprint(names(roots)); got != "[A B Self]" {
		t.Fatalf("expected cycle members promoted, got %s", got)
	}
}

func TestBuildTreeKeepsFirstDuplicate(t *testing.T) {
	a := row("Alpha", nil)
	dup := a
	dup.Name = "Duplicate"

	roots := BuildTree([]models.Category{a, dup})
	if len(roots) != 1 || roots[0].Name != "Alpha" {
		t.Fatalf("expected first duplicate kept, got %v", names(roots))
	}
}

func TestBuildTreeCaseInsensitiveOrder(t *testing.T) {
	rows := []models.Category{row("banana", nil), row("Apple", nil), row("cherry", nil), row("apple", nil)}
	if got := fmt.Sprint(names(BuildTree(rows))); got != "[Apple apple banana cherry]" {
		t.Fatalf("unexpected order %s", got)
	}
}

func TestBuildTreeEqualNamesOrderByID(t *testing.T) {
	first := row("Sale", nil)
	first.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	second := row("Sale", nil)
	second.ID = uuid.MustParse("00000000-0000-0000-0000-000000000002")

	for _, rows := range [][]models.Category{{first, second}, {second, first}} {
		roots := BuildTree(rows)
		if len(roots) != 2 || roots[0].ID != first.ID || roots[1].ID != second.ID {
			t.Fatalf("expected id order regardless of input order, got %+v", roots)
		}
	}
}

func TestBuildTreeRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iteration := 0; iteration < 50; iteration++ {
		rows := randomRows(rng, 1+rng.Intn(40))
		roots := BuildTree(rows)

		assertEveryRowOnce(t, rows, roots)
		assertChildrenMatchParent(t, roots)
		assertSorted(t, roots)
	}
}

func TestBreadcrumbPath(t *testing.T) {
	shoes := row("Shoes", nil)
	boots := row("Boots", &shoes)
	hiking := row("Hiking", &boots)
	rows := []models.Category{hiking, shoes, boots}

	path := BreadcrumbPath(rows, hiking.ID)
	var got []string
	for _, c := range path {
		got = append(got, c.Name)
	}
	if fmt.Sprint(got) != "[Shoes Boots Hiking]" {
		t.Fatalf("unexpected breadcrumb %v", got)
	}
	if BreadcrumbPath(rows, uuid.New()) != nil {
		t.Fatal("expected nil breadcrumb for unknown id")
	}

	a := row("A", nil)
	b := row("B", &a)
	a.ParentID = &b.ID
	if loop := BreadcrumbPath([]models.Category{a, b}, a.ID); len(loop) != 2 {
		t.Fatalf("expected loop to stop after two hops, got %d", len(loop))
	}
}

func TestDescendantsAndCircularity(t *testing.T) {
	shoes := row("Shoes", nil)
	boots := row("Boots", &shoes)
	hiking := row("Hiking", &boots)
	bags := row("Bags", nil)
	rows := []models.Category{shoes, boots, hiking, bags}

	desc := DescendantIDs(rows, shoes.ID)
	if len(desc) != 2 || desc[0] != boots.ID || desc[1] != hiking.ID {
		t.Fatalf("unexpected descendants %v", desc)
	}
	if len(DescendantIDs(rows, bags.ID)) != 0 {
		t.Fatal("expected no descendants for leaf")
	}

	if !IsCircular(rows, shoes.ID, shoes.ID) {
		t.Fatal("self parent must be circular")
	}
	if !IsCircular(rows, shoes.ID, hiking.ID) {
		t.Fatal("moving under a descendant must be circular")
	}
	if IsCircular(rows, hiking.ID, bags.ID) {
		t.Fatal("moving under an unrelated node is not circular")
	}
}

func TestComputeLevelsAndDepth(t *testing.T) {
	shoes := row("Shoes", nil)
	boots := row("Boots", &shoes)
	hiking := row("Hiking", &boots)
	rows := []models.Category{shoes, boots, hiking}

	levels := ComputeLevels(rows)
	if levels[shoes.ID] != 1 || levels[boots.ID] != 2 || levels[hiking.ID] != 3 {
		t.Fatalf("unexpected levels %v", levels)
	}
	if Depth(rows, shoes.ID) != 3 || Depth(rows, hiking.ID) != 1 {
		t.Fatalf("unexpected depth shoes=%d hiking=%d", Depth(rows, shoes.ID), Depth(rows, hiking.ID))
	}
}

func TestFlattenFollowsTreeOrder(t *testing.T) {
	shoes := row("Shoes", nil)
	sandals := row("Sandals", &shoes)
	boots := row("Boots", &shoes)
	bags := row("Bags", nil)

	flat := Flatten(BuildTree([]models.Category{shoes, sandals, boots, bags}))
	var got []string
	for _, c := range flat {
		got = append(got, c.Name)
	}
	if fmt.Sprint(got) != "[Bags Shoes Boots Sandals]" {
		t.Fatalf("unexpected flatten order %v", got)
	}
}

func randomRows(rng *rand.Rand, n int) []models.Category {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	words := []string{"alpha", "Beta", "gamma", "Delta", "beta", "omega"}
	rows := make([]models.Category, n)
	for i := range rows {
		rows[i] = models.Category{ID: ids[i], Name: words[rng.Intn(len(words))]}
		switch rng.Intn(4) {
		case 0:
		case 1:
			missing := uuid.New()
			rows[i].ParentID = &missing
		default:
			parent := ids[rng.Intn(n)]
			rows[i].ParentID = &parent
		}
	}
	return rows
}

func assertEveryRowOnce(t *testing.T, rows []models.Category, roots []*Node) {
	t.Helper()
	seen := map[uuid.UUID]int{}
	var walk func([]*Node, int)
	walk = func(level []*Node, depth int) {
		if depth > len(rows) {
			t.Fatalf("tree deeper than row count, cycle suspected")
		}
		for _, n := range level {
			seen[n.ID]++
			walk(n.Children, depth+1)
		}
	}
	walk(roots, 1)
	for _, r := range rows {
		if seen[r.ID] != 1 {
			t.Fatalf("row %s appears %d times", r.ID, seen[r.ID])
		}
	}
}

func assertChildrenMatchParent(t *testing.T, roots []*Node) {
	t.Helper()
	var walk func([]*Node)
	walk = func(level []*Node) {
		for _, n := range level {
			for _, child := range n.Children {
				if child.ParentID == nil || *child.ParentID != n.ID {
					t.Fatalf("child %s listed under %s without matching parent id", child.ID, n.ID)
				}
			}
			walk(n.Children)
		}
	}
	walk(roots)
}

func assertSorted(t *testing.T, level []*Node) {
	t.Helper()
	for i := 1; i < len(level); i++ {
		if strings.ToLower(level[i-1].Name) > strings.ToLower(level[i].Name) {
			t.Fatalf("siblings out of order: %q before %q", level[i-1].Name, level[i].Name)
		}
	}
	for _, n := range level {
		assertSorted(t, n.Children)
	}
}
