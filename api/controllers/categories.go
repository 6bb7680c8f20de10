package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// CategoryList returns the active categories as a flat list.
func CategoryList(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCategoryDTOs(rows))
	}
}

// CategoryTree returns the active categories nested by parent.
func CategoryTree(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodes, err := svc.Tree(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCategoryNodes(nodes))
	}
}

func CategoryDetail(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := svc.GetBySlug(r.Context(), strings.TrimSpace(chi.URLParam(r, "slug")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCategoryDetail(detail))
	}
}

// AdminCategoryList returns every category, inactive included. ?view=tree nests them.
func AdminCategoryList(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("view") == "tree" {
			nodes, err := svc.Tree(r.Context(), false)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, toCategoryNodes(nodes))
			return
		}
		rows, err := svc.List(r.Context(), false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCategoryDTOs(rows))
	}
}

type createCategoryRequest struct {
	Name        string     `json:"name" validate:"required,max=100"`
	Slug        string     `json:"slug" validate:"omitempty,max=120"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	ImageURL    *string    `json:"image_url" validate:"omitempty,url"`
	IsActive    *bool      `json:"is_active"`
}

func AdminCategoryCreate(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := categories.CreateInput{
			Name:        payload.Name,
			Slug:        payload.Slug,
			ParentID:    payload.ParentID,
			Description: payload.Description,
			ImageURL:    payload.ImageURL,
			IsActive:    payload.IsActive == nil || *payload.IsActive,
		}
		category, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toCategoryDTO(*category))
	}
}

type updateCategoryRequest struct {
	Name        *string      `json:"name" validate:"omitempty,max=100"`
	Slug        *string      `json:"slug" validate:"omitempty,max=120"`
	ParentID    optionalUUID `json:"parent_id"`
	Description *string      `json:"description" validate:"omitempty,max=2000"`
	ImageURL    *string      `json:"image_url" validate:"omitempty,url"`
	IsActive    *bool        `json:"is_active"`
}

func AdminCategoryUpdate(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Update(r.Context(), id, categories.UpdateInput{
			Name:        payload.Name,
			Slug:        payload.Slug,
			SetParent:   payload.ParentID.Set,
			ParentID:    payload.ParentID.Value,
			Description: payload.Description,
			ImageURL:    payload.ImageURL,
			IsActive:    payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCategoryDTO(*category))
	}
}

func AdminCategoryDelete(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
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
