package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type categoryDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Level       int        `json:"level"`
	Description *string    `json:"description,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type categoryNodeDTO struct {
	categoryDTO
	Children []categoryNodeDTO `json:"children"`
}

type categoryDetailDTO struct {
	Category   categoryDTO   `json:"category"`
	Breadcrumb []categoryDTO `json:"breadcrumb"`
	Children   []categoryDTO `json:"children"`
}

func toCategoryDTO(c models.Category) categoryDTO {
	return categoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		ParentID:    c.ParentID,
		Level:       c.Level,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toCategoryDTOs(rows []models.Category) []categoryDTO {
	out := make([]categoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCategoryDTO(row))
	}
	return out
}

func toCategoryNodes(nodes []*categories.Node) []categoryNodeDTO {
	out := make([]categoryNodeDTO, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, categoryNodeDTO{
			categoryDTO: toCategoryDTO(node.Category),
			Children:    toCategoryNodes(node.Children),
		})
	}
	return out
}

func toCategoryDetail(d *categories.Detail) categoryDetailDTO {
	return categoryDetailDTO{
		Category:   toCategoryDTO(d.Category),
		Breadcrumb: toCategoryDTOs(d.Breadcrumb),
		Children:   toCategoryDTOs(d.Children),
	}
}

type productDTO struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Description    *string          `json:"description,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	Stock          int              `json:"stock"`
	InStock        bool             `json:"in_stock"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	Images         []string         `json:"images"`
	Colors         []string         `json:"colors"`
	Sizes          []string         `json:"sizes"`
	IsActive       bool             `json:"is_active"`
	IsFeatured     bool             `json:"is_featured"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type productDetailDTO struct {
	productDTO
	Rating products.RatingSummary `json:"rating"`
}

func toProductDTO(p models.Product) productDTO {
	return productDTO{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Stock:          p.Stock,
		InStock:        p.Stock > 0,
		CategoryID:     p.CategoryID,
		Images:         nonNil(p.Images),
		Colors:         nonNil(p.Colors),
		Sizes:          nonNil(p.Sizes),
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toProductPage(page *pagination.Page[models.Product]) pagination.Page[productDTO] {
	out := pagination.Page[productDTO]{Items: make([]productDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, p := range page.Items {
		out.Items = append(out.Items, toProductDTO(p))
	}
	return out
}

type bannerDTO struct {
	ID        uuid.UUID             `json:"id"`
	Title     string                `json:"title"`
	Subtitle  *string               `json:"subtitle,omitempty"`
	ImageURL  string                `json:"image_url"`
	LinkURL   *string               `json:"link_url,omitempty"`
	Placement enums.BannerPlacement `json:"placement"`
	SortOrder int                   `json:"sort_order"`
	IsActive  bool                  `json:"is_active"`
	StartsAt  *time.Time            `json:"starts_at,omitempty"`
	EndsAt    *time.Time            `json:"ends_at,omitempty"`
}

func toBannerDTO(b models.Banner) bannerDTO {
	return bannerDTO{
		ID:        b.ID,
		Title:     b.Title,
		Subtitle:  b.Subtitle,
		ImageURL:  b.ImageURL,
		LinkURL:   b.LinkURL,
		Placement: b.Placement,
		SortOrder: b.SortOrder,
		IsActive:  b.IsActive,
		StartsAt:  b.StartsAt,
		EndsAt:    b.EndsAt,
	}
}

func toBannerDTOs(rows []models.Banner) []bannerDTO {
	out := make([]bannerDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toBannerDTO(row))
	}
	return out
}

type reviewDTO struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

func toReviewDTO(r models.Review) reviewDTO {
	return reviewDTO{
		ID:         r.ID,
		ProductID:  r.ProductID,
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		IsApproved: r.IsApproved,
		CreatedAt:  r.CreatedAt,
	}
}

func toReviewPage(page *pagination.Page[models.Review]) pagination.Page[reviewDTO] {
	out := pagination.Page[reviewDTO]{Items: make([]reviewDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, r := range page.Items {
		out.Items = append(out.Items, toReviewDTO(r))
	}
	return out
}

type orderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Color       *string         `json:"color,omitempty"`
	Size        *string         `json:"size,omitempty"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type orderDTO struct {
	ID              uuid.UUID         `json:"id"`
	OrderNumber     string            `json:"order_number"`
	Source          enums.OrderSource `json:"source"`
	Status          enums.OrderStatus `json:"status"`
	CustomerName    string            `json:"customer_name"`
	CustomerPhone   string            `json:"customer_phone"`
	CustomerEmail   *string           `json:"customer_email,omitempty"`
	ShippingAddress string            `json:"shipping_address"`
	City            string            `json:"city"`
	Notes           *string           `json:"notes,omitempty"`
	LandingSlug     *string           `json:"landing_slug,omitempty"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	ShippingFee     decimal.Decimal   `json:"shipping_fee"`
	Total           decimal.Decimal   `json:"total"`
	Items           []orderItemDTO    `json:"items,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func toOrderDTO(o models.Order) orderDTO {
	out := orderDTO{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Source:          o.Source,
		Status:          o.Status,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerEmail:   o.CustomerEmail,
		ShippingAddress: o.ShippingAddress,
		City:            o.City,
		Notes:           o.Notes,
		LandingSlug:     o.LandingSlug,
		Subtotal:        o.Subtotal,
		ShippingFee:     o.ShippingFee,
		Total:           o.Total,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, orderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Color:       item.Color,
			Size:        item.Size,
			LineTotal:   item.LineTotal,
		})
	}
	return out
}

func toOrderPage(page *pagination.Page[models.Order]) pagination.Page[orderDTO] {
	out := pagination.Page[orderDTO]{Items: make([]orderDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for _, o := range page.Items {
		out.Items = append(out.Items, toOrderDTO(o))
	}
	return out
}

type cartLineDTO struct {
	Product   cart.ProductRef `json:"product"`
	Quantity  int             `json:"quantity"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type cartDTO struct {
	SessionID string          `json:"session_id"`
	Items     []cartLineDTO   `json:"items"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

func toCartDTO(sessionID string, c *cart.Cart) cartDTO {
	out := cartDTO{SessionID: sessionID, Items: make([]cartLineDTO, 0, len(c.Items)), ItemCount: c.ItemCount(), Total: c.Total}
	for _, line := range c.Items {
		out.Items = append(out.Items, cartLineDTO{
			Product:   line.Product,
			Quantity:  line.Quantity,
			Color:     line.Variant.Color,
			Size:      line.Variant.Size,
			LineTotal: line.LineTotal(),
		})
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
