package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/banners"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// BannerActive returns the live banners of a placement (default hero).
func BannerActive(svc banners.Service, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.URL.Query().Get("placement"))
		if raw == "" {
			raw = string(enums.BannerPlacementHero)
		}
		rows, err := svc.Active(r.Context(), enums.BannerPlacement(raw), now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toBannerDTOs(rows))
	}
}

func AdminBannerList(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var placement *enums.BannerPlacement
		if raw := strings.TrimSpace(r.URL.Query().Get("placement")); raw != "" {
			parsed, err := enums.ParseBannerPlacement(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid placement"))
				return
			}
			placement = &parsed
		}
		rows, err := svc.List(r.Context(), placement)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toBannerDTOs(rows))
	}
}

type createBannerRequest struct {
	Title     string     `json:"title" validate:"required,max=120"`
	Subtitle  *string    `json:"subtitle" validate:"omitempty,max=240"`
	ImageURL  string     `json:"image_url" validate:"required"`
	LinkURL   *string    `json:"link_url"`
	Placement string     `json:"placement" validate:"required"`
	SortOrder int        `json:"sort_order"`
	IsActive  *bool      `json:"is_active"`
	StartsAt  *time.Time `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
}

func AdminBannerCreate(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createBannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		banner, err := svc.Create(r.Context(), banners.CreateInput{
			Title:     payload.Title,
			Subtitle:  payload.Subtitle,
			ImageURL:  payload.ImageURL,
			LinkURL:   payload.LinkURL,
			Placement: enums.BannerPlacement(strings.TrimSpace(payload.Placement)),
			SortOrder: payload.SortOrder,
			IsActive:  payload.IsActive == nil || *payload.IsActive,
			StartsAt:  payload.StartsAt,
			EndsAt:    payload.EndsAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toBannerDTO(*banner))
	}
}

type updateBannerRequest struct {
	Title         *string    `json:"title" validate:"omitempty,max=120"`
	Subtitle      *string    `json:"subtitle" validate:"omitempty,max=240"`
	ImageURL      *string    `json:"image_url"`
	LinkURL       *string    `json:"link_url"`
	Placement     *string    `json:"placement"`
	SortOrder     *int       `json:"sort_order"`
	IsActive      *bool      `json:"is_active"`
	ClearSchedule bool       `json:"clear_schedule"`
	StartsAt      *time.Time `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at"`
}

func AdminBannerUpdate(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateBannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := banners.UpdateInput{
			Title:         payload.Title,
			Subtitle:      payload.Subtitle,
			ImageURL:      payload.ImageURL,
			LinkURL:       payload.LinkURL,
			SortOrder:     payload.SortOrder,
			IsActive:      payload.IsActive,
			ClearSchedule: payload.ClearSchedule,
			StartsAt:      payload.StartsAt,
			EndsAt:        payload.EndsAt,
		}
		if payload.Placement != nil {
			placement := enums.BannerPlacement(strings.TrimSpace(*payload.Placement))
			input.Placement = &placement
		}

		banner, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toBannerDTO(*banner))
	}
}

func AdminBannerDelete(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
