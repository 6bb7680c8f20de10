package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// ProductList serves the storefront catalog listing.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseProductListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductPage(page))
	}
}

func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := svc.GetBySlug(r.Context(), strings.TrimSpace(chi.URLParam(r, "slug")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productDetailDTO{productDTO: toProductDTO(detail.Product), Rating: detail.Rating})
	}
}

// AdminProductList lists the catalog including inactive products.
func AdminProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := parseProductListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.AdminList(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductPage(page))
	}
}

func AdminProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductDTO(*product))
	}
}

type createProductRequest struct {
	Name           string           `json:"name" validate:"required,max=200"`
	Slug           string           `json:"slug" validate:"omitempty,max=220"`
	Description    *string          `json:"description" validate:"omitempty,max=10000"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	Stock          int              `json:"stock" validate:"gte=0"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	Images         []string         `json:"images" validate:"omitempty,max=10,dive,url"`
	Colors         []string         `json:"colors" validate:"omitempty,max=30,dive,required,max=40"`
	Sizes          []string         `json:"sizes" validate:"omitempty,max=30,dive,required,max=40"`
	IsActive       *bool            `json:"is_active"`
	IsFeatured     bool             `json:"is_featured"`
}

func AdminProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), products.CreateInput{
			Name:           payload.Name,
			Slug:           payload.Slug,
			Description:    payload.Description,
			Price:          payload.Price,
			CompareAtPrice: payload.CompareAtPrice,
			Stock:          payload.Stock,
			CategoryID:     payload.CategoryID,
			Images:         payload.Images,
			Colors:         payload.Colors,
			Sizes:          payload.Sizes,
			IsActive:       payload.IsActive == nil || *payload.IsActive,
			IsFeatured:     payload.IsFeatured,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toProductDTO(*product))
	}
}

type updateProductRequest struct {
	Name           *string          `json:"name" validate:"omitempty,max=200"`
	Slug           *string          `json:"slug" validate:"omitempty,max=220"`
	Description    *string          `json:"description" validate:"omitempty,max=10000"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice optionalDecimal  `json:"compare_at_price"`
	Stock          *int             `json:"stock" validate:"omitempty,gte=0"`
	CategoryID     optionalUUID     `json:"category_id"`
	Images         *[]string        `json:"images"`
	Colors         *[]string        `json:"colors"`
	Sizes          *[]string        `json:"sizes"`
	IsActive       *bool            `json:"is_active"`
	IsFeatured     *bool            `json:"is_featured"`
}

func AdminProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := products.UpdateInput{
			Name:        payload.Name,
			Slug:        payload.Slug,
			Description: payload.Description,
			Price:       payload.Price,
			Stock:       payload.Stock,
			SetCategory: payload.CategoryID.Set,
			CategoryID:  payload.CategoryID.Value,
			Images:      payload.Images,
			Colors:      payload.Colors,
			Sizes:       payload.Sizes,
			IsActive:    payload.IsActive,
			IsFeatured:  payload.IsFeatured,
		}
		if payload.CompareAtPrice.Set {
			input.CompareAtPrice = payload.CompareAtPrice.Value
			input.ClearCompareAt = payload.CompareAtPrice.Value == nil
		}

		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductDTO(*product))
	}
}

func AdminProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
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

func parseProductListQuery(r *http.Request) (products.ListInput, error) {
	q := r.URL.Query()

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return products.ListInput{}, err
	}
	featured, err := validators.ParseQueryBool(r, "featured")
	if err != nil {
		return products.ListInput{}, err
	}
	minPrice, err := validators.ParseQueryDecimal(r, "min_price")
	if err != nil {
		return products.ListInput{}, err
	}
	maxPrice, err := validators.ParseQueryDecimal(r, "max_price")
	if err != nil {
		return products.ListInput{}, err
	}
	sort, err := enums.ParseProductSort(strings.TrimSpace(q.Get("sort")))
	if err != nil {
		return products.ListInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort")
	}

	return products.ListInput{
		CategorySlug: strings.TrimSpace(q.Get("category")),
		Query:        validators.SanitizeString(q.Get("q"), 100),
		Featured:     featured,
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		Sort:         sort,
		Limit:        limit,
		Cursor:       strings.TrimSpace(q.Get("cursor")),
	}, nil
}
