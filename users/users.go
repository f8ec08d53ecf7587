package users

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when no cost is configured.
const DefaultBcryptCost = 10

type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`          // Unique identifier for the user
	Username     string    `json:"username,omitempty" bson:"username"`         // Unique username
	PasswordHash string    `json:"-" bson:"password_hash"`                     // Hashed password - never serialize
	TOTPSecret   string    `json:"-" bson:"totp_secret,omitempty"`             // Base32 TOTP secret - never serialize
	CreatedAt    time.Time `json:"created_at,omitempty" bson:"created_at"`     // When the user registered
	UpdatedAt    time.Time `json:"updated_at,omitempty" bson:"updated_at"`     // Last record update
}

// MFAEnrolled reports whether the user has completed TOTP enrollment.
// Login only demands a code when a secret is stored.
func (u *User) MFAEnrolled() bool {
	return u.TOTPSecret != ""
}

// ValidatePasswordStrength checks if a password meets the minimum
// length requirement. Composition rules are left to the frontend.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	return nil
}

// HashPassword hashes a plaintext password with bcrypt at the given
// cost. Costs outside bcrypt's range fall back to the default.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash reports whether the plaintext matches the stored
// digest. A mismatch is a normal false result, not an error.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
