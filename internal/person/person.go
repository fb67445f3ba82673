package person

import (
	"strings"

	"gorm.io/gorm"
)

// Role represents the set of possible user roles.
// @Description user role type: "admin" or "user"
type Role string

const (
	// Admin has full access
	Admin Role = "admin"
	// User has limited access
	User Role = "user"
)

// Person is a registered account of the platform.
// @Description public view of an account; the password hash and refresh token never leave the server
type Person struct {
	gorm.Model
	// Username (unique, lowercase)
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	// Email address (unique, lowercase)
	Email string `json:"email" gorm:"uniqueIndex;not null"`
	// FullName as shown on the channel page
	FullName string `json:"fullName" gorm:"not null"`
	// Password hash (hidden from JSON)
	Password string `json:"-" gorm:"not null"`
	// RefreshToken holds the digest of the single valid refresh token, NULL when logged out.
	RefreshToken *string `json:"-" gorm:"index"`
	// Role of the person
	Role Role `json:"role" gorm:"type:text;default:'user'"`
}

// NewPerson initializes a new Person with default role and normalized identifiers.
func NewPerson(username, email, fullName, passwordHash string) *Person {
	return &Person{
		Username: NormalizeIdentifier(username),
		Email:    NormalizeIdentifier(email),
		FullName: strings.TrimSpace(fullName),
		Password: passwordHash,
		Role:     User,
	}
}

// NormalizeIdentifier lowercases and trims a username or email.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
