// AngelaMos | 2026
// entitlement_test.go

package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateFree(t *testing.T) {
	gate := NewGate(1)

	ent := gate.For(false)
	assert.Equal(t, 1, ent.MaxLinks)
	assert.False(t, ent.ThemeAccess)
	assert.False(t, ent.AnalyticsAccess)
	assert.False(t, ent.Unlimited())
}

func TestGatePaid(t *testing.T) {
	gate := NewGate(1)

	ent := gate.For(true)
	assert.Equal(t, UnlimitedLinks, ent.MaxLinks)
	assert.True(t, ent.ThemeAccess)
	assert.True(t, ent.AnalyticsAccess)
	assert.True(t, ent.Unlimited())
}

func TestGateClampsBudget(t *testing.T) {
	tests := []struct {
		name  string
		input int
		want  int
	}{
		{"zero clamps to one", 0, 1},
		{"negative clamps to one", -5, 1},
		{"positive kept", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(tt.input)
			assert.Equal(t, tt.want, gate.For(false).MaxLinks)
		})
	}
}
