// AngelaMos | 2026
// service.go

package bio

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/biolink/internal/core"
	"github.com/carterperez-dev/biolink/internal/entitlement"
	"github.com/carterperez-dev/biolink/internal/user"
)

// AccessSource supplies the owner's account state for entitlement
// checks. Implemented by *user.Service.
type AccessSource interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Service struct {
	repo  Repository
	users AccessSource
	gate  *entitlement.Gate
}

func NewService(
	repo Repository,
	users AccessSource,
	gate *entitlement.Gate,
) *Service {
	return &Service{
		repo:  repo,
		users: users,
		gate:  gate,
	}
}

// Save upserts the caller's page with entitlements applied server-side:
// links beyond the budget are truncated rather than rejected, and theme
// customization is stripped for free accounts. The response reports
// what was actually persisted.
func (s *Service) Save(
	ctx context.Context,
	userID string,
	req SaveBioRequest,
) (*Bio, bool, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("load owner: %w", err)
	}

	ent := s.gate.For(u.HasPaidAccess())

	links := make(Links, 0, len(req.Links))
	for _, l := range req.Links {
		links = append(links, Link{
			Title: strings.TrimSpace(l.Title),
			URL:   l.URL,
			Icon:  l.Icon,
		})
	}

	truncated := false
	if !ent.Unlimited() && len(links) > ent.MaxLinks {
		links = links[:ent.MaxLinks]
		truncated = true
	}

	theme := DefaultTheme()
	if ent.ThemeAccess {
		layout := Layout(req.Theme.Layout)
		if !layout.Valid() {
			layout = LayoutDefault
		}
		theme = Theme{
			Layout:      layout,
			ColorScheme: req.Theme.ColorScheme,
			CustomCSS:   req.Theme.CustomCSS,
		}
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = u.FullName()
	}

	b := &Bio{
		ID:             uuid.New().String(),
		UserID:         userID,
		DisplayName:    displayName,
		Description:    strings.TrimSpace(req.Description),
		AvatarURL:      req.AvatarURL,
		ProfilePicture: req.ProfilePicture,
		Links:          links,
		Theme:          theme,
	}

	if err := s.repo.Upsert(ctx, b); err != nil {
		return nil, false, err
	}

	return b, truncated, nil
}

func (s *Service) GetMine(ctx context.Context, userID string) (*Bio, error) {
	if userID == "" {
		return nil, fmt.Errorf("get bio: %w", core.ErrUnauthorized)
	}
	return s.repo.GetByUserID(ctx, userID)
}

func (s *Service) GetPublic(
	ctx context.Context,
	username string,
) (*PublicBio, error) {
	return s.repo.GetByUsername(ctx, strings.ToLower(username))
}
