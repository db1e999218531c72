// AngelaMos | 2026
// dto.go

package bio

import (
	"time"
)

type LinkRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100"`
	URL   string `json:"url"   validate:"required,url,max=2048"`
	Icon  string `json:"icon"  validate:"omitempty,max=50"`
}

type ThemeRequest struct {
	Layout      string `json:"layout"       validate:"omitempty,max=30"`
	ColorScheme string `json:"color_scheme" validate:"omitempty,max=50"`
	CustomCSS   string `json:"custom_css"   validate:"omitempty,max=10000"`
}

type SaveBioRequest struct {
	DisplayName    string        `json:"display_name"    validate:"omitempty,max=100"`
	Description    string        `json:"description"     validate:"omitempty,max=500"`
	AvatarURL      *string       `json:"avatar_url"      validate:"omitempty,url,max=2048"`
	ProfilePicture *string       `json:"profile_picture" validate:"omitempty,max=2097152"`
	Links          []LinkRequest `json:"links"           validate:"omitempty,max=100,dive"`
	Theme          ThemeRequest  `json:"theme"`
}

type BioResponse struct {
	ID             string    `json:"id"`
	DisplayName    string    `json:"display_name"`
	Description    string    `json:"description"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	ProfilePicture *string   `json:"profile_picture,omitempty"`
	Links          Links     `json:"links"`
	Theme          Theme     `json:"theme"`
	Truncated      bool      `json:"truncated,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PublicBio is the anonymous projection served at /bios/{username}.
// Only the owner's username crosses over from the account; everything
// else comes from the page document itself.
type PublicBio struct {
	Username       string    `db:"username"        json:"username"`
	DisplayName    string    `db:"display_name"    json:"display_name"`
	Description    string    `db:"description"     json:"description"`
	AvatarURL      *string   `db:"avatar_url"      json:"avatar_url,omitempty"`
	ProfilePicture *string   `db:"profile_picture" json:"profile_picture,omitempty"`
	Links          Links     `db:"links"           json:"links"`
	Theme          Theme     `db:"theme"           json:"theme"`
	UpdatedAt      time.Time `db:"updated_at"      json:"updated_at"`
}

func ToBioResponse(b *Bio, truncated bool) BioResponse {
	return BioResponse{
		ID:             b.ID,
		DisplayName:    b.DisplayName,
		Description:    b.Description,
		AvatarURL:      b.AvatarURL,
		ProfilePicture: b.ProfilePicture,
		Links:          b.Links,
		Theme:          b.Theme,
		Truncated:      truncated,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
