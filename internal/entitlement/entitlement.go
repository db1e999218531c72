// AngelaMos | 2026
// entitlement.go

package entitlement

// UnlimitedLinks marks a link budget with no upper bound.
const UnlimitedLinks = -1

// Entitlements is what the paid flag unlocks. Computed server-side; any
// client-side limiting is advisory only.
type Entitlements struct {
	MaxLinks        int  `json:"max_links"`
	ThemeAccess     bool `json:"theme_access"`
	AnalyticsAccess bool `json:"analytics_access"`
}

func (e Entitlements) Unlimited() bool {
	return e.MaxLinks == UnlimitedLinks
}

// Gate derives feature availability from the paid flag. It holds no state
// beyond the configured free-tier link budget and performs no I/O.
type Gate struct {
	freeMaxLinks int
}

func NewGate(freeMaxLinks int) *Gate {
	if freeMaxLinks < 1 {
		freeMaxLinks = 1
	}
	return &Gate{freeMaxLinks: freeMaxLinks}
}

func (g *Gate) For(paid bool) Entitlements {
	if paid {
		return Entitlements{
			MaxLinks:        UnlimitedLinks,
			ThemeAccess:     true,
			AnalyticsAccess: true,
		}
	}

	return Entitlements{
		MaxLinks:        g.freeMaxLinks,
		ThemeAccess:     false,
		AnalyticsAccess: false,
	}
}
