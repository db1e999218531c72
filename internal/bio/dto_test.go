// AngelaMos | 2026
// dto_test.go

package bio

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

// Removing the last link is a normal save, so an empty list must pass
// request validation.
func TestSaveBioRequestAllowsEmptyLinks(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())

	assert.NoError(t, v.Struct(SaveBioRequest{}))
	assert.NoError(t, v.Struct(SaveBioRequest{Links: []LinkRequest{}}))

	err := v.Struct(SaveBioRequest{
		Links: []LinkRequest{{Title: "One", URL: "not-a-url"}},
	})
	assert.Error(t, err, "present links are still validated")
}
