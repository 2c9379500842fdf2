package models

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
)

// Member roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Household is a group of users sharing one ledger.
type Household struct {
	ID   string
	Name string

	// InviteCode lets another user join the household.
	InviteCode string

	CreatedAt int64
}

// Member links a user to a household. Entries reference members, not users.
type Member struct {
	ID          string
	HouseholdID string
	UserID      string
	Role        string
	JoinedAt    int64

	// UserName and UserEmail are denormalized from the users table on read.
	UserName  string
	UserEmail string
}

// inviteCodeLength is the number of characters in an invite code.
const inviteCodeLength = 12

// GenerateInviteCode returns a random upper-case URL-safe invite code.
func GenerateInviteCode() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := base64.RawURLEncoding.EncodeToString(buf)
	return strings.ToUpper(code[:inviteCodeLength]), nil
}
