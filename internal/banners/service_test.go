package banners

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func newService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	return svc
}

func create(t *testing.T, svc Service, input CreateInput) uuid.UUID {
	t.Helper()
	if input.ImageURL == "" {
		input.ImageURL = "https://cdn.example.com/banner.jpg"
	}
	if input.Placement == "" {
		input.Placement = enums.BannerPlacementHero
	}
	row, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	return row.ID
}

func TestActiveHonorsScheduleAndOrder(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	soon := now.Add(time.Hour)
	later := now.Add(72 * time.Hour)

	create(t, svc, CreateInput{Title: "Second", SortOrder: 2, IsActive: true})
	create(t, svc, CreateInput{Title: "First", SortOrder: 1, IsActive: true, StartsAt: &past, EndsAt: &later})
	create(t, svc, CreateInput{Title: "Disabled", SortOrder: 0, IsActive: false})
	create(t, svc, CreateInput{Title: "Upcoming", SortOrder: 0, IsActive: true, StartsAt: &soon})
	create(t, svc, CreateInput{Title: "Expired", SortOrder: 0, IsActive: true, EndsAt: &past})
	create(t, svc, CreateInput{Title: "Promo", IsActive: true, Placement: enums.BannerPlacementPromo})

	live, err := svc.Active(ctx, enums.BannerPlacementHero, now)
	require.NoError(t, err)
	var titles []string
	for _, b := range live {
		titles = append(titles, b.Title)
	}
	assert.Equal(t, []string{"First", "Second"}, titles)

	live, err = svc.Active(ctx, enums.BannerPlacementHero, soon)
	require.NoError(t, err)
	assert.Len(t, live, 3)

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	_, err = svc.Active(ctx, enums.BannerPlacement("sidebar"), now)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t)
	start := time.Now()
	end := start.Add(-time.Minute)
	bad := "javascript:alert(1)"

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"missing title", CreateInput{Title: " ", ImageURL: "https://cdn.example.com/a.jpg", Placement: enums.BannerPlacementHero}},
		{"relative image", CreateInput{Title: "A", ImageURL: "/a.jpg", Placement: enums.BannerPlacementHero}},
		{"bad placement", CreateInput{Title: "A", ImageURL: "https://cdn.example.com/a.jpg", Placement: "footer"}},
		{"bad link", CreateInput{Title: "A", ImageURL: "https://cdn.example.com/a.jpg", Placement: enums.BannerPlacementHero, LinkURL: &bad}},
		{"inverted schedule", CreateInput{Title: "A", ImageURL: "https://cdn.example.com/a.jpg", Placement: enums.BannerPlacementHero, StartsAt: &start, EndsAt: &end}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	link := "/collections/summer"
	id := create(t, svc, CreateInput{Title: "Summer", IsActive: true, LinkURL: &link})

	title := "Summer Sale"
	placement := enums.BannerPlacementLanding
	off := false
	updated, err := svc.Update(ctx, id, UpdateInput{Title: &title, Placement: &placement, IsActive: &off})
	require.NoError(t, err)
	assert.Equal(t, "Summer Sale", updated.Title)
	assert.Equal(t, enums.BannerPlacementLanding, updated.Placement)
	assert.False(t, updated.IsActive)
	require.NotNil(t, updated.LinkURL)
	assert.Equal(t, link, *updated.LinkURL)

	filter := enums.BannerPlacementLanding
	rows, err := svc.List(ctx, &filter)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, svc.Delete(ctx, id))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, id), pkgerrors.CodeNotFound))

	_, err = svc.Update(ctx, id, UpdateInput{Title: &title})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
