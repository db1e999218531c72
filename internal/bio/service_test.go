// AngelaMos | 2026
// service_test.go

package bio

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/biolink/internal/core"
	"github.com/carterperez-dev/biolink/internal/entitlement"
	"github.com/carterperez-dev/biolink/internal/user"
)

type memBioRepo struct {
	byUser map[string]*Bio
}

func newMemBioRepo() *memBioRepo {
	return &memBioRepo{byUser: make(map[string]*Bio)}
}

func (r *memBioRepo) GetByUserID(
	ctx context.Context,
	userID string,
) (*Bio, error) {
	b, ok := r.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("get bio: %w", core.ErrNotFound)
	}
	c := *b
	return &c, nil
}

func (r *memBioRepo) GetByUsername(
	ctx context.Context,
	username string,
) (*PublicBio, error) {
	return nil, fmt.Errorf("get public bio: %w", core.ErrNotFound)
}

func (r *memBioRepo) Upsert(ctx context.Context, bio *Bio) error {
	if existing, ok := r.byUser[bio.UserID]; ok {
		bio.ID = existing.ID
		bio.CreatedAt = existing.CreatedAt
	} else {
		bio.CreatedAt = time.Now()
	}
	bio.UpdatedAt = time.Now()

	c := *bio
	r.byUser[bio.UserID] = &c
	return nil
}

func (r *memBioRepo) Delete(ctx context.Context, userID string) error {
	if _, ok := r.byUser[userID]; !ok {
		return fmt.Errorf("delete bio: %w", core.ErrNotFound)
	}
	delete(r.byUser, userID)
	return nil
}

type fakeAccess struct {
	users map[string]*user.User
}

func (f *fakeAccess) GetByID(
	ctx context.Context,
	id string,
) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return u, nil
}

func newTestService(paid bool) (*Service, *memBioRepo) {
	repo := newMemBioRepo()
	access := &fakeAccess{users: map[string]*user.User{
		"u1": {
			ID:        "u1",
			Email:     "a@b.com",
			FirstName: "Ada",
			LastName:  "Lovelace",
			IsPaid:    paid,
		},
	}}
	gate := entitlement.NewGate(1)
	return NewService(repo, access, gate), repo
}

func threeLinks() []LinkRequest {
	return []LinkRequest{
		{Title: "One", URL: "https://one.example.com"},
		{Title: "Two", URL: "https://two.example.com"},
		{Title: "Three", URL: "https://three.example.com"},
	}
}

func TestSaveFreeTruncatesLinks(t *testing.T) {
	svc, _ := newTestService(false)

	b, truncated, err := svc.Save(context.Background(), "u1", SaveBioRequest{
		Links: threeLinks(),
	})
	require.NoError(t, err)

	assert.True(t, truncated)
	require.Len(t, b.Links, 1)
	assert.Equal(t, "One", b.Links[0].Title)
}

func TestSaveFreeStripsTheme(t *testing.T) {
	svc, _ := newTestService(false)

	b, _, err := svc.Save(context.Background(), "u1", SaveBioRequest{
		Links: []LinkRequest{{Title: "One", URL: "https://one.example.com"}},
		Theme: ThemeRequest{
			Layout:      "gradient",
			ColorScheme: "midnight",
			CustomCSS:   "body { background: red }",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, LayoutDefault, b.Theme.Layout)
	assert.Empty(t, b.Theme.ColorScheme)
	assert.Empty(t, b.Theme.CustomCSS)
}

func TestSavePaidKeepsEverything(t *testing.T) {
	svc, _ := newTestService(true)

	b, truncated, err := svc.Save(context.Background(), "u1", SaveBioRequest{
		Links: threeLinks(),
		Theme: ThemeRequest{
			Layout:      "cards",
			ColorScheme: "midnight",
			CustomCSS:   ".page { color: white }",
		},
	})
	require.NoError(t, err)

	assert.False(t, truncated)
	assert.Len(t, b.Links, 3)
	assert.Equal(t, LayoutCards, b.Theme.Layout)
	assert.Equal(t, "midnight", b.Theme.ColorScheme)
	assert.Equal(t, ".page { color: white }", b.Theme.CustomCSS)
}

func TestSaveUnknownLayoutFallsBack(t *testing.T) {
	svc, _ := newTestService(true)

	b, _, err := svc.Save(context.Background(), "u1", SaveBioRequest{
		Links: []LinkRequest{{Title: "One", URL: "https://one.example.com"}},
		Theme: ThemeRequest{Layout: "spinning-3d"},
	})
	require.NoError(t, err)

	assert.Equal(t, LayoutDefault, b.Theme.Layout)
}

func TestSaveEmptyLinksClearsPage(t *testing.T) {
	svc, repo := newTestService(false)

	_, _, err := svc.Save(context.Background(), "u1", SaveBioRequest{
		Links: []LinkRequest{{Title: "One", URL: "https://one.example.com"}},
	})
	require.NoError(t, err)

	b, truncated, err := svc.Save(context.Background(), "u1", SaveBioRequest{})
	require.NoError(t, err)

	assert.False(t, truncated)
	assert.Empty(t, b.Links)
	assert.Empty(t, repo.byUser["u1"].Links)
}

func TestSaveDisplayFields(t *testing.T) {
	svc, _ := newTestService(false)

	avatar := "https://cdn.example.com/ada.png"
	b, _, err := svc.Save(context.Background(), "u1", SaveBioRequest{
		DisplayName: "  Ada L.  ",
		Description: "Analyst, programmer.",
		AvatarURL:   &avatar,
		Links: []LinkRequest{
			{Title: "One", URL: "https://one.example.com"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada L.", b.DisplayName)
	assert.Equal(t, "Analyst, programmer.", b.Description)
	require.NotNil(t, b.AvatarURL)
	assert.Equal(t, avatar, *b.AvatarURL)
}

func TestSaveDisplayNameDefaultsToFullName(t *testing.T) {
	svc, _ := newTestService(false)

	b, _, err := svc.Save(context.Background(), "u1", SaveBioRequest{
		Links: []LinkRequest{
			{Title: "One", URL: "https://one.example.com"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", b.DisplayName)
}

func TestSaveIsIdempotentPerUser(t *testing.T) {
	svc, repo := newTestService(true)

	first, _, err := svc.Save(context.Background(), "u1", SaveBioRequest{
		Links: []LinkRequest{{Title: "One", URL: "https://one.example.com"}},
	})
	require.NoError(t, err)

	second, _, err := svc.Save(context.Background(), "u1", SaveBioRequest{
		Links: []LinkRequest{{Title: "Two", URL: "https://two.example.com"}},
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "saves target the same row")
	assert.Len(t, repo.byUser, 1)
	assert.Equal(t, "Two", repo.byUser["u1"].Links[0].Title)
}

func TestSaveUnknownUser(t *testing.T) {
	svc, _ := newTestService(false)

	_, _, err := svc.Save(context.Background(), "ghost", SaveBioRequest{
		Links: []LinkRequest{{Title: "One", URL: "https://one.example.com"}},
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGetMineMissingPage(t *testing.T) {
	svc, _ := newTestService(false)

	_, err := svc.GetMine(context.Background(), "u1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
