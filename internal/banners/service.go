// Package banners schedules promotional banners into storefront placements.
package banners

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const maxTitleLength = 120

// CreateInput holds a new banner.
type CreateInput struct {
	Title     string
	Subtitle  *string
	ImageURL  string
	LinkURL   *string
	Placement enums.BannerPlacement
	SortOrder int
	IsActive  bool
	StartsAt  *time.Time
	EndsAt    *time.Time
}

// UpdateInput holds optional banner changes. ClearSchedule removes both
// schedule bounds before StartsAt and EndsAt apply.
type UpdateInput struct {
	Title         *string
	Subtitle      *string
	ImageURL      *string
	LinkURL       *string
	Placement     *enums.BannerPlacement
	SortOrder     *int
	IsActive      *bool
	ClearSchedule bool
	StartsAt      *time.Time
	EndsAt        *time.Time
}

// Service exposes the public banner feed and admin CRUD.
type Service interface {
	Active(ctx context.Context, placement enums.BannerPlacement, now time.Time) ([]models.Banner, error)
	List(ctx context.Context, placement *enums.BannerPlacement) ([]models.Banner, error)
	Create(ctx context.Context, input CreateInput) (*models.Banner, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Banner, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

// NewService builds the banner service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("banner repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Active(ctx context.Context, placement enums.BannerPlacement, now time.Time) ([]models.Banner, error) {
	if !placement.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid placement").
			WithDetails(map[string]any{"placement": placement.String()})
	}
	rows, err := s.repo.List(ctx, &placement, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list banners")
	}
	live := make([]models.Banner, 0, len(rows))
	for _, row := range rows {
		if row.LiveAt(now) {
			live = append(live, row)
		}
	}
	return live, nil
}

func (s *service) List(ctx context.Context, placement *enums.BannerPlacement) ([]models.Banner, error) {
	if placement != nil && !placement.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid placement")
	}
	rows, err := s.repo.List(ctx, placement, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list banners")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Banner, error) {
	row := &models.Banner{
		Title:     strings.TrimSpace(input.Title),
		Subtitle:  trimOptional(input.Subtitle),
		ImageURL:  strings.TrimSpace(input.ImageURL),
		LinkURL:   trimOptional(input.LinkURL),
		Placement: input.Placement,
		SortOrder: input.SortOrder,
		IsActive:  input.IsActive,
		StartsAt:  utc(input.StartsAt),
		EndsAt:    utc(input.EndsAt),
	}
	if err := validateBanner(row); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create banner")
	}
	return row, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Banner, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repo.NotFound(err, "banner not found")
	}
	if input.Title != nil {
		row.Title = strings.TrimSpace(*input.Title)
	}
	if input.Subtitle != nil {
		row.Subtitle = trimOptional(input.Subtitle)
	}
	if input.ImageURL != nil {
		row.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.LinkURL != nil {
		row.LinkURL = trimOptional(input.LinkURL)
	}
	if input.Placement != nil {
		row.Placement = *input.Placement
	}
	if input.SortOrder != nil {
		row.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		row.IsActive = *input.IsActive
	}
	if input.ClearSchedule {
		row.StartsAt, row.EndsAt = nil, nil
	}
	if input.StartsAt != nil {
		row.StartsAt = utc(input.StartsAt)
	}
	if input.EndsAt != nil {
		row.EndsAt = utc(input.EndsAt)
	}
	if err := validateBanner(row); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update banner")
	}
	return row, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete banner")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
	}
	return nil
}

func validateBanner(b *models.Banner) error {
	switch {
	case b.Title == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	case len([]rune(b.Title)) > maxTitleLength:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "title must be at most %d characters", maxTitleLength)
	case !b.Placement.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid placement").
			WithDetails(map[string]any{"placement": b.Placement.String()})
	case !absoluteURL(b.ImageURL):
		return pkgerrors.New(pkgerrors.CodeValidation, "image_url must be an absolute http(s) url")
	case b.LinkURL != nil && !strings.HasPrefix(*b.LinkURL, "/") && !absoluteURL(*b.LinkURL):
		return pkgerrors.New(pkgerrors.CodeValidation, "link_url must be a path or an absolute http(s) url")
	case b.StartsAt != nil && b.EndsAt != nil && !b.EndsAt.After(*b.StartsAt):
		return pkgerrors.New(pkgerrors.CodeValidation, "ends_at must be after starts_at")
	}
	return nil
}

func absoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
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
