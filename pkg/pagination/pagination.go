// Package pagination implements the opaque cursors used by every list
// endpoint. Newest-first listings page by a (created_at, id) keyset; orderings
// without a stable keyset page by offset. Both kinds are URL-safe base64.
package pagination

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100

	keysetPrefix = "k:"
	offsetPrefix = "o:"
)

// ErrInvalidCursor is returned for any cursor that fails to decode.
var ErrInvalidCursor = errors.New("invalid cursor")

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the keyset position of the last row on a page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Page is the common list envelope returned by paginated services.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer is the row count to fetch so a following page can be detected.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

func EncodeCursor(cursor Cursor) string {
	payload := keysetPrefix + cursor.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + cursor.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes a keyset cursor. Empty input means the first page and
// yields a nil cursor.
func ParseCursor(value string) (*Cursor, error) {
	raw, err := unwrap(value, keysetPrefix)
	if err != nil || raw == "" {
		return nil, err
	}
	stamp, id, ok := strings.Cut(raw, "|")
	if !ok {
		return nil, ErrInvalidCursor
	}
	createdAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	return &Cursor{CreatedAt: createdAt, ID: parsedID}, nil
}

func EncodeOffsetCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(offsetPrefix + strconv.Itoa(offset)))
}

// ParseOffsetCursor decodes an offset cursor. Empty input is offset zero.
func ParseOffsetCursor(value string) (int, error) {
	raw, err := unwrap(value, offsetPrefix)
	if err != nil || raw == "" {
		return 0, err
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0, ErrInvalidCursor
	}
	return offset, nil
}

func unwrap(value, prefix string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", ErrInvalidCursor
	}
	raw, ok := strings.CutPrefix(string(decoded), prefix)
	if !ok || raw == "" {
		return "", ErrInvalidCursor
	}
	return raw, nil
}

// Keyset restricts a newest-first query to rows after cursor. A nil cursor
// leaves the query untouched.
func Keyset(cursor *Cursor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if cursor == nil {
			return db
		}
		return db.Where("(created_at < ? OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
}

// NewestFirst orders by the keyset columns, matching Keyset.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// Build trims rows fetched with LimitWithBuffer down to limit and sets the
// next cursor from the last kept row when more rows exist.
func Build[T any](rows []T, limit int, next func(last T) string) *Page[T] {
	limit = NormalizeLimit(limit)
	page := &Page[T]{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		page.NextCursor = next(page.Items[limit-1])
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page
}
