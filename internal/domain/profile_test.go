package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNewProfile(t *testing.T) {
	t.Parallel()

	p := NewProfile(Account{
		Email:    "a@x.com",
		Password: "secret123",
		Username: "a",
		FullName: "A A",
	})

	assert.Equal(t, "a@x.com", p.Email)
	assert.Equal(t, "a", p.Username)
	assert.Equal(t, "A A", p.FullName)
	assert.True(t, p.CreatedAt.IsZero(), "creation time is assigned by the store")
}

func TestProfileIsEmpty(t *testing.T) {
	t.Parallel()

	var nilProfile *Profile
	assert.True(t, nilProfile.IsEmpty())
	assert.True(t, (&Profile{}).IsEmpty())
	assert.False(t, (&Profile{Username: "a"}).IsEmpty())
	assert.False(t, (&Profile{CreatedAt: time.Now()}).IsEmpty())
}

func TestFormattedCreatedAt(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+2", 2*60*60)
	p := &Profile{CreatedAt: time.Date(2024, 3, 9, 14, 5, 7, 999, loc)}

	assert.Equal(t, "2024-03-09 12:05:07", p.FormattedCreatedAt())
	assert.Empty(t, (&Profile{}).FormattedCreatedAt())
}

func TestProfileUpdate(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	original := Profile{Email: "a@x.com", Username: "a", FullName: "A A", CreatedAt: created}

	t.Run("username only", func(t *testing.T) {
		u := ProfileUpdate{Username: strPtr("b")}

		assert.False(t, u.IsEmpty())
		assert.Equal(t, []ProfileField{{Name: FieldUsername, Value: "b"}}, u.Fields())

		updated := u.Apply(original)
		assert.Equal(t, "b", updated.Username)
		assert.Equal(t, "A A", updated.FullName)
		assert.Equal(t, created, updated.CreatedAt)
	})

	t.Run("both fields", func(t *testing.T) {
		u := ProfileUpdate{Username: strPtr("b"), FullName: strPtr("B B")}

		assert.Equal(t, []ProfileField{
			{Name: FieldUsername, Value: "b"},
			{Name: FieldFullName, Value: "B B"},
		}, u.Fields())
	})

	t.Run("empty string is an explicit value", func(t *testing.T) {
		u := ProfileUpdate{FullName: strPtr("")}

		assert.False(t, u.IsEmpty())
		assert.Equal(t, "", u.Apply(original).FullName)
	})

	t.Run("no fields", func(t *testing.T) {
		u := ProfileUpdate{}

		assert.True(t, u.IsEmpty())
		assert.Empty(t, u.Fields())
		assert.Equal(t, original, u.Apply(original))
	})
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := NewValidationError("email", "is required", nil)
	assert.Equal(t, "email is required", err.Error())
	assert.True(t, errors.Is(err, ErrValidation))

	var target *ValidationError
	require.True(t, errors.As(error(err), &target))
	assert.Equal(t, "email", target.Field)

	bare := &ValidationError{Message: "request body is required"}
	assert.Equal(t, "request body is required", bare.Error())
}

func TestResetError(t *testing.T) {
	t.Parallel()

	cause := errors.New("EMAIL_NOT_FOUND")
	err := &ResetError{Reason: "EMAIL_NOT_FOUND", Err: cause}

	assert.Equal(t, "password reset failed: EMAIL_NOT_FOUND", err.Error())
	assert.ErrorIs(t, err, cause)

	var target *ResetError
	require.ErrorAs(t, error(err), &target)
	assert.Equal(t, "EMAIL_NOT_FOUND", target.Reason)
}
