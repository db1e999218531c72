// AngelaMos | 2026
// dto_test.go

package auth

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRequestPasswordBounds(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"six chars accepted", "secret", false},
		{"seven chars accepted", "secret1", false},
		{"five chars rejected", "secr1", true},
		{"empty rejected", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := RegisterRequest{
				Email:     "ada@example.com",
				Password:  tt.password,
				FirstName: "Ada",
				LastName:  "Lovelace",
			}

			err := v.Struct(req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// A short password on login is a credentials problem, not a request
// shape problem. Validation lets it through so the verify step can
// answer 401 in constant time.
func TestLoginRequestAcceptsShortPassword(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())

	err := v.Struct(LoginRequest{
		Email:    "ada@example.com",
		Password: "x",
	})
	assert.NoError(t, err)

	err = v.Struct(LoginRequest{
		Email:    "ada@example.com",
		Password: "",
	})
	assert.Error(t, err, "an absent password is still a malformed request")
}
