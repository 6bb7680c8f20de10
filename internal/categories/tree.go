package categories

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Node is a category row with its resolved children.
type Node struct {
	models.Category
	Children []*Node
}

// BuildTree nests a flat category list. Every row appears exactly once:
// rows whose parent is missing, themselves, or part of a parent loop become
// roots. Duplicate ids keep the first row. Siblings are sorted by name
// ignoring case; equal names fall back to the exact name, then the id.
func BuildTree(rows []models.Category) []*Node {
	nodes := make(map[uuid.UUID]*Node, len(rows))
	order := make([]*Node, 0, len(rows))
	for _, row := range rows {
		if _, seen := nodes[row.ID]; seen {
			continue
		}
		node := &Node{Category: row, Children: []*Node{}}
		nodes[row.ID] = node
		order = append(order, node)
	}

	parents := parentIndex(rows)
	roots := []*Node{}
	for _, node := range order {
		parentID := node.ParentID
		if parentID == nil || onCycle(parents, node.ID) {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*parentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortNodes(roots)
	return roots
}

// Flatten walks the tree depth-first in sibling order.
func Flatten(roots []*Node) []models.Category {
	out := []models.Category{}
	var walk func([]*Node)
	walk = func(level []*Node) {
		for _, node := range level {
			out = append(out, node.Category)
			walk(node.Children)
		}
	}
	walk(roots)
	return out
}

// BreadcrumbPath returns the root-to-node chain ending at id. It stops at an
// unknown parent or when the chain loops. An unknown id yields nil.
func BreadcrumbPath(rows []models.Category, id uuid.UUID) []models.Category {
	byID := indexRows(rows)
	current, ok := byID[id]
	if !ok {
		return nil
	}

	visited := map[uuid.UUID]struct{}{}
	reversed := []models.Category{}
	for {
		if _, loop := visited[current.ID]; loop {
			break
		}
		visited[current.ID] = struct{}{}
		reversed = append(reversed, current)
		if current.ParentID == nil {
			break
		}
		parent, ok := byID[*current.ParentID]
		if !ok {
			break
		}
		current = parent
	}

	path := make([]models.Category, len(reversed))
	for i, row := range reversed {
		path[len(reversed)-1-i] = row
	}
	return path
}

// DescendantIDs enumerates every descendant of id, excluding id itself.
func DescendantIDs(rows []models.Category, id uuid.UUID) []uuid.UUID {
	children := childIndex(rows)
	visited := map[uuid.UUID]struct{}{id: {}}
	out := []uuid.UUID{}

	var walk func(uuid.UUID)
	walk = func(parent uuid.UUID) {
		for _, child := range children[parent] {
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			out = append(out, child)
			walk(child)
		}
	}
	walk(id)
	return out
}

// IsCircular reports whether moving categoryID under newParentID would
// create a loop.
func IsCircular(rows []models.Category, categoryID, newParentID uuid.UUID) bool {
	if categoryID == newParentID {
		return true
	}
	for _, id := range DescendantIDs(rows, categoryID) {
		if id == newParentID {
			return true
		}
	}
	return false
}

// ComputeLevels returns the 1-based depth of every row along its parent
// chain. Roots, orphans and rows on a loop are level 1.
func ComputeLevels(rows []models.Category) map[uuid.UUID]int {
	levels := make(map[uuid.UUID]int, len(rows))
	var walk func([]*Node, int)
	walk = func(level []*Node, depth int) {
		for _, node := range level {
			levels[node.ID] = depth
			walk(node.Children, depth+1)
		}
	}
	walk(BuildTree(rows), 1)
	return levels
}

// Depth returns the height of the subtree rooted at id, counting id as 1.
func Depth(rows []models.Category, id uuid.UUID) int {
	children := childIndex(rows)
	visited := map[uuid.UUID]struct{}{}
	var height func(uuid.UUID) int
	height = func(node uuid.UUID) int {
		if _, seen := visited[node]; seen {
			return 0
		}
		visited[node] = struct{}{}
		best := 0
		for _, child := range children[node] {
			if h := height(child); h > best {
				best = h
			}
		}
		return best + 1
	}
	return height(id)
}

func sortNodes(level []*Node) {
	sort.SliceStable(level, func(i, j int) bool {
		a, b := level[i], level[j]
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID.String() < b.ID.String()
	})
	for _, node := range level {
		sortNodes(node.Children)
	}
}

func indexRows(rows []models.Category) map[uuid.UUID]models.Category {
	out := make(map[uuid.UUID]models.Category, len(rows))
	for _, row := range rows {
		if _, seen := out[row.ID]; !seen {
			out[row.ID] = row
		}
	}
	return out
}

func parentIndex(rows []models.Category) map[uuid.UUID]uuid.UUID {
	out := make(map[uuid.UUID]uuid.UUID, len(rows))
	for _, row := range rows {
		if _, seen := out[row.ID]; seen || row.ParentID == nil {
			continue
		}
		out[row.ID] = *row.ParentID
	}
	return out
}

func childIndex(rows []models.Category) map[uuid.UUID][]uuid.UUID {
	parents := parentIndex(rows)
	seen := make(map[uuid.UUID]struct{}, len(rows))
	out := map[uuid.UUID][]uuid.UUID{}
	for _, row := range rows {
		if _, dup := seen[row.ID]; dup {
			continue
		}
		seen[row.ID] = struct{}{}
		if parent, ok := parents[row.ID]; ok {
			out[parent] = append(out[parent], row.ID)
		}
	}
	return out
}

// onCycle reports whether following parent pointers from id returns to id.
func onCycle(parents map[uuid.UUID]uuid.UUID, id uuid.UUID) bool {
	visited := map[uuid.UUID]struct{}{}
	current := id
	for {
		parent, ok := parents[current]
		if !ok {
			return false
		}
		if parent == id {
			return true
		}
		if _, seen := visited[parent]; seen {
			return false
		}
		visited[parent] = struct{}{}
		current = parent
	}
}
