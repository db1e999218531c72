// AngelaMos | 2026
// entity.go

package bio

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Layout names a page arrangement. Unknown values fall back to
// LayoutDefault at save time.
type Layout string

const (
	LayoutDefault  Layout = "default"
	LayoutCards    Layout = "cards"
	LayoutMinimal  Layout = "minimal"
	LayoutGradient Layout = "gradient"
)

func (l Layout) Valid() bool {
	switch l {
	case LayoutDefault, LayoutCards, LayoutMinimal, LayoutGradient:
		return true
	}
	return false
}

type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Icon  string `json:"icon,omitempty"`
}

// Links is stored as a JSONB column.
type Links []Link

func (l Links) Value() (driver.Value, error) {
	if l == nil {
		l = Links{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal links: %w", err)
	}
	return b, nil
}

func (l *Links) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = Links{}
		return nil
	default:
		return fmt.Errorf("scan links: unsupported type %T", src)
	}
}

// Theme is stored as a JSONB column. CustomCSS is only honored for paid
// accounts.
type Theme struct {
	Layout      Layout `json:"layout"`
	ColorScheme string `json:"color_scheme,omitempty"`
	CustomCSS   string `json:"custom_css,omitempty"`
}

func (t Theme) Value() (driver.Value, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal theme: %w", err)
	}
	return b, nil
}

func (t *Theme) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	case nil:
		*t = Theme{Layout: LayoutDefault}
		return nil
	default:
		return fmt.Errorf("scan theme: unsupported type %T", src)
	}
}

func DefaultTheme() Theme {
	return Theme{Layout: LayoutDefault}
}

// Bio is the single page document owned by a user. One row per user,
// enforced by a unique constraint; saves are upserts. ProfilePicture
// holds an uploaded image as a data URI; AvatarURL points at a hosted
// image. The page renderer prefers the upload.
type Bio struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	DisplayName    string    `db:"display_name"`
	Description    string    `db:"description"`
	AvatarURL      *string   `db:"avatar_url"`
	ProfilePicture *string   `db:"profile_picture"`
	Links          Links     `db:"links"`
	Theme          Theme     `db:"theme"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
