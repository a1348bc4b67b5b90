package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatorKeepsFirstError(t *testing.T) {
	v := New()
	assert.True(t, v.Valid())

	v.Check(false, "lat", "must be between -90 and 90")
	v.Check(false, "lat", "second message")
	v.Check(true, "lng", "never added")

	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"lat": "must be between -90 and 90"}, v.Errors)
}

func TestPermittedValue(t *testing.T) {
	assert.True(t, PermittedValue("active", "planned", "active"))
	assert.False(t, PermittedValue("gone", "planned", "active"))
	assert.True(t, Between(5, 0, 10))
	assert.False(t, Between(11, 0, 10))
}
