// Package categories serves the storefront category tree and its admin
// maintenance.
package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// MaxDepth caps category nesting.
const MaxDepth = 3

const maxNameLength = 100

// Detail is a category page: the row, its root-to-node breadcrumb and its
// direct children.
type Detail struct {
	Category   models.Category
	Breadcrumb []models.Category
	Children   []models.Category
}

// CreateInput holds a new category.
type CreateInput struct {
	Name        string
	Slug        string
	ParentID    *uuid.UUID
	Description *string
	ImageURL    *string
	IsActive    bool
}

// UpdateInput holds optional changes. SetParent distinguishes "move to root"
// (SetParent with a nil ParentID) from "leave the parent alone".
type UpdateInput struct {
	Name        *string
	Slug        *string
	SetParent   bool
	ParentID    *uuid.UUID
	Description *string
	ImageURL    *string
	IsActive    *bool
}

// Service exposes category reads and admin mutations.
type Service interface {
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
	Tree(ctx context.Context, activeOnly bool) ([]*Node, error)
	GetBySlug(ctx context.Context, slug string) (*Detail, error)
	SubtreeIDs(ctx context.Context, slug string) ([]uuid.UUID, error)
	Create(ctx context.Context, input CreateInput) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
	tx   db.TxRunner
}

// NewService builds the category service.
func NewService(repo *Repository, tx db.TxRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	if !activeOnly {
		rows, err := s.repo.List(ctx, false)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
		}
		return rows, nil
	}
	roots, err := s.Tree(ctx, true)
	if err != nil {
		return nil, err
	}
	return Flatten(roots), nil
}

// Tree builds the full tree; with activeOnly an inactive category hides its
// whole subtree rather than orphaning its children.
func (s *service) Tree(ctx context.Context, activeOnly bool) ([]*Node, error) {
	rows, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	roots := BuildTree(rows)
	if activeOnly {
		roots = pruneInactive(roots)
	}
	return roots, nil
}

func (s *service) GetBySlug(ctx context.Context, value string) (*Detail, error) {
	rows, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	target, ok := visibleBySlug(rows, strings.TrimSpace(value))
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}

	children := []models.Category{}
	for _, root := range BuildTree(rows) {
		if node := findNode(root, target.ID); node != nil {
			for _, child := range pruneInactive(node.Children) {
				children = append(children, child.Category)
			}
			break
		}
	}
	return &Detail{
		Category:   target,
		Breadcrumb: BreadcrumbPath(rows, target.ID),
		Children:   children,
	}, nil
}

func (s *service) SubtreeIDs(ctx context.Context, value string) ([]uuid.UUID, error) {
	rows, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	target, ok := visibleBySlug(rows, strings.TrimSpace(value))
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return append([]uuid.UUID{target.ID}, DescendantIDs(rows, target.ID)...), nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	categorySlug, err := resolveSlug(input.Slug, name)
	if err != nil {
		return nil, err
	}

	row := &models.Category{
		Name:        name,
		Slug:        categorySlug,
		Description: trimOptional(input.Description),
		ImageURL:    trimOptional(input.ImageURL),
		IsActive:    input.IsActive,
		Level:       1,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := ensureSlugFree(ctx, repo, categorySlug, uuid.Nil); err != nil {
			return err
		}
		if input.ParentID != nil {
			parent, err := repo.FindByID(ctx, *input.ParentID)
			if err != nil {
				return parentError(err)
			}
			if parent.Level >= MaxDepth {
				return depthError()
			}
			parentID := parent.ID
			row.ParentID = &parentID
			row.Level = parent.Level + 1
		}
		if err := repo.Create(ctx, row); err != nil {
			if db.IsUniqueViolation(err, "") {
				return slugTakenError(categorySlug)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Category, error) {
	var updated *models.Category
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.List(ctx, false)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
		}
		row, ok := indexRows(rows)[id]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if err := validateName(name); err != nil {
				return err
			}
			row.Name = name
		}
		if input.Slug != nil {
			categorySlug, err := resolveSlug(*input.Slug, row.Name)
			if err != nil {
				return err
			}
			if categorySlug != row.Slug {
				if err := ensureSlugFree(ctx, repo, categorySlug, row.ID); err != nil {
					return err
				}
				row.Slug = categorySlug
			}
		}
		if input.Description != nil {
			row.Description = trimOptional(input.Description)
		}
		if input.ImageURL != nil {
			row.ImageURL = trimOptional(input.ImageURL)
		}
		if input.IsActive != nil {
			row.IsActive = *input.IsActive
		}

		moved := false
		if input.SetParent && !sameParent(row.ParentID, input.ParentID) {
			if err := checkMove(rows, row.ID, input.ParentID); err != nil {
				return err
			}
			row.ParentID = copyID(input.ParentID)
			moved = true
		}

		if err := repo.Save(ctx, &row); err != nil {
			if db.IsUniqueViolation(err, "") {
				return slugTakenError(row.Slug)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update category")
		}
		if moved {
			if err := relevel(ctx, repo, replaceRow(rows, row)); err != nil {
				return err
			}
			row.Level = ComputeLevels(replaceRow(rows, row))[row.ID]
		}
		updated = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a category. Its children move up to its parent and its
// products stay in the catalog without a category.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}
		if err := repo.Reparent(ctx, row.ID, row.ParentID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reparent children")
		}
		if err := repo.DetachProducts(ctx, row.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "detach products")
		}
		if err := repo.Delete(ctx, row.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete category")
		}
		rows, err := repo.List(ctx, false)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
		}
		return relevel(ctx, repo, rows)
	})
}

func checkMove(rows []models.Category, id uuid.UUID, newParent *uuid.UUID) error {
	subtree := Depth(rows, id)
	if newParent == nil {
		if subtree > MaxDepth {
			return depthError()
		}
		return nil
	}
	if IsCircular(rows, id, *newParent) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "category cannot move under itself or its descendants").
			WithDetails(map[string]any{"category_id": id.String(), "parent_id": newParent.String()})
	}
	if _, ok := indexRows(rows)[*newParent]; !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "parent category not found").
			WithDetails(map[string]any{"parent_id": newParent.String()})
	}
	parentLevel := ComputeLevels(rows)[*newParent]
	if parentLevel+subtree > MaxDepth {
		return depthError()
	}
	return nil
}

// relevel writes every level that differs from the computed parent chain.
func relevel(ctx context.Context, repo *Repository, rows []models.Category) error {
	levels := ComputeLevels(rows)
	for _, row := range rows {
		if want := levels[row.ID]; want != row.Level {
			if err := repo.UpdateLevel(ctx, row.ID, want); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update category level")
			}
		}
	}
	return nil
}

func pruneInactive(level []*Node) []*Node {
	out := []*Node{}
	for _, node := range level {
		if !node.IsActive {
			continue
		}
		node.Children = pruneInactive(node.Children)
		out = append(out, node)
	}
	return out
}

// visibleBySlug finds an active category whose ancestors are all active.
func visibleBySlug(rows []models.Category, value string) (models.Category, bool) {
	if value == "" {
		return models.Category{}, false
	}
	for _, row := range rows {
		if row.Slug != value {
			continue
		}
		for _, ancestor := range BreadcrumbPath(rows, row.ID) {
			if !ancestor.IsActive {
				return models.Category{}, false
			}
		}
		return row, true
	}
	return models.Category{}, false
}

func findNode(node *Node, id uuid.UUID) *Node {
	if node.ID == id {
		return node
	}
	for _, child := range node.Children {
		if found := findNode(child, id); found != nil {
			return found
		}
	}
	return nil
}

func replaceRow(rows []models.Category, row models.Category) []models.Category {
	out := make([]models.Category, len(rows))
	for i, existing := range rows {
		if existing.ID == row.ID {
			out[i] = row
			continue
		}
		out[i] = existing
	}
	return out
}

func ensureSlugFree(ctx context.Context, repo *Repository, categorySlug string, exclude uuid.UUID) error {
	taken, err := repo.SlugTaken(ctx, categorySlug, exclude)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category slug")
	}
	if taken {
		return slugTakenError(categorySlug)
	}
	return nil
}

func resolveSlug(raw, name string) (string, error) {
	source := strings.TrimSpace(raw)
	if source == "" {
		source = name
	}
	out := slug.Make(source)
	if !slug.IsSlug(out) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "slug must contain letters or digits")
	}
	return out, nil
}

func validateName(name string) error {
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if len([]rune(name)) > maxNameLength {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "name must be at most %d characters", maxNameLength)
	}
	return nil
}

func parentError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeValidation, "parent category not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load parent category")
}

func depthError() error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "categories nest at most %d levels", MaxDepth)
}

func slugTakenError(value string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "category slug already in use").
		WithDetails(map[string]any{"slug": value})
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	out := *id
	return &out
}
