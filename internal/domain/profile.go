package domain

import (
	"time"
)

// CreatedAtLayout is the fixed pattern used when a profile's creation time is
// rendered to clients.
const CreatedAtLayout = "2006-01-02 15:04:05"

// Account holds the credentials and profile fields supplied at signup.
type Account struct {
	Email    string
	Password string
	Username string
	FullName string
}

// Profile is the user record kept in the document store, keyed by the user ID
// that the identity provider assigned.
type Profile struct {
	Email     string
	Username  string
	FullName  string
	CreatedAt time.Time
}

// NewProfile builds the profile record persisted right after account creation.
// CreatedAt is left zero so the store assigns it.
func NewProfile(account Account) *Profile {
	return &Profile{
		Email:    account.Email,
		Username: account.Username,
		FullName: account.FullName,
	}
}

// IsEmpty reports whether a stored record carries no profile data at all.
func (p *Profile) IsEmpty() bool {
	return p == nil ||
		(p.Email == "" && p.Username == "" && p.FullName == "" && p.CreatedAt.IsZero())
}

// FormattedCreatedAt renders CreatedAt in UTC using CreatedAtLayout.
// A zero time renders as an empty string.
func (p *Profile) FormattedCreatedAt() string {
	if p.CreatedAt.IsZero() {
		return ""
	}
	return p.CreatedAt.UTC().Format(CreatedAtLayout)
}

// ProfileUpdate is a partial update. Nil fields are left untouched.
type ProfileUpdate struct {
	Username *string
	FullName *string
}

// IsEmpty reports whether the update changes nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Username == nil && u.FullName == nil
}

// Fields returns the document field names and values present in the update,
// in a stable order.
func (u ProfileUpdate) Fields() []ProfileField {
	var fields []ProfileField
	if u.Username != nil {
		fields = append(fields, ProfileField{Name: FieldUsername, Value: *u.Username})
	}
	if u.FullName != nil {
		fields = append(fields, ProfileField{Name: FieldFullName, Value: *u.FullName})
	}
	return fields
}

// Apply returns a copy of p with the update's fields applied.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.Username != nil {
		p.Username = *u.Username
	}
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	return p
}

// Profile document field names.
const (
	FieldEmail     = "email"
	FieldUsername  = "username"
	FieldFullName  = "full_name"
	FieldCreatedAt = "created_at"
)

// ProfileField is a single field assignment of a ProfileUpdate.
type ProfileField struct {
	Name  string
	Value string
}
