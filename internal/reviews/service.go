// Package reviews handles customer ratings and their moderation.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

const (
	minAuthorLength  = 2
	maxAuthorLength  = 80
	maxCommentLength = 2000
	minRating        = 1
	maxRating        = 5
)

// SubmitInput is a shopper's review.
type SubmitInput struct {
	AuthorName string
	Rating     int
	Comment    string
}

// AdminFilter narrows the moderation queue.
type AdminFilter struct {
	Approved  *bool
	ProductID *uuid.UUID
	Limit     int
	Cursor    string
}

type productFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
}

// Service exposes public review reads, submission and moderation.
type Service interface {
	ListForProduct(ctx context.Context, productSlug string, params pagination.Params) (*pagination.Page[models.Review], error)
	Submit(ctx context.Context, productSlug string, input SubmitInput) (*models.Review, error)
	AdminList(ctx context.Context, filter AdminFilter) (*pagination.Page[models.Review], error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     *Repository
	products productFinder
}

// NewService builds the review service.
func NewService(repo *Repository, products productFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) ListForProduct(ctx context.Context, productSlug string, params pagination.Params) (*pagination.Page[models.Review], error) {
	product, err := s.activeProduct(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	approved := true
	return s.list(ctx, ListQuery{ProductID: &product.ID, Approved: &approved, Pagination: params})
}

func (s *service) Submit(ctx context.Context, productSlug string, input SubmitInput) (*models.Review, error) {
	review, err := validateSubmission(input)
	if err != nil {
		return nil, err
	}
	product, err := s.activeProduct(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	review.ProductID = product.ID
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}
	return review, nil
}

func (s *service) AdminList(ctx context.Context, filter AdminFilter) (*pagination.Page[models.Review], error) {
	return s.list(ctx, ListQuery{
		ProductID:  filter.ProductID,
		Approved:   filter.Approved,
		Pagination: pagination.Params{Limit: filter.Limit, Cursor: filter.Cursor},
	})
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	ok, err := s.repo.Approve(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "approve review")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
	}
	return review, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete review")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	return nil
}

func (s *service) list(ctx context.Context, query ListQuery) (*pagination.Page[models.Review], error) {
	if _, err := pagination.ParseCursor(query.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	return page, nil
}

func (s *service) activeProduct(ctx context.Context, productSlug string) (*models.Product, error) {
	product, err := s.products.FindBySlug(ctx, strings.TrimSpace(productSlug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func validateSubmission(input SubmitInput) (*models.Review, error) {
	author := strings.TrimSpace(input.AuthorName)
	if n := len([]rune(author)); n < minAuthorLength || n > maxAuthorLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("author_name must be %d to %d characters", minAuthorLength, maxAuthorLength))
	}
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("rating must be between %d and %d", minRating, maxRating))
	}
	review := &models.Review{AuthorName: author, Rating: input.Rating}
	if comment := strings.TrimSpace(input.Comment); comment != "" {
		if len([]rune(comment)) > maxCommentLength {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("comment must be at most %d characters", maxCommentLength))
		}
		review.Comment = &comment
	}
	return review, nil
}
