// WHY BCRYPT?
// bcrypt is deliberately slow and salts every digest, so two users with the
// same password get different digests and offline guessing stays expensive.
// The salt and cost are embedded in the output:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 → 2^12 rounds)
//	 version
//
// The stored digest is the only thing the users table keeps. It never leaves
// the data-access layer except through GetAuthByUsername, and never reaches a
// JSON response.

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is bcrypt's input limit. Longer input would be silently
// truncated by older implementations and rejected by newer ones.
const maxPasswordBytes = 72

// ErrPasswordTooLong is returned by Hash for input over 72 bytes.
var ErrPasswordTooLong = errors.New("auth: password must be 72 bytes or fewer")

// PasswordService hashes and verifies passwords with a fixed bcrypt cost.
//
// The cost is a constructor argument rather than a package constant: the
// server passes config.Config.BcryptCost (12 normally, 4 under test).
type PasswordService struct {
	cost int
}

// NewPasswordService returns a PasswordService using the given cost.
//
// WHY VALIDATE THE COST HERE?
// bcrypt.GenerateFromPassword quietly substitutes DefaultCost when given a
// cost below MinCost. A misconfigured work factor should fail at startup,
// not silently change how every password is stored.
func NewPasswordService(cost int) (*PasswordService, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordService{cost: cost}, nil
}

// NewPasswordServiceForTest returns a PasswordService with bcrypt.MinCost.
// Tests in other packages hash dozens of passwords; cost 12 would make each
// one take a quarter of a second.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{cost: bcrypt.MinCost}
}

// Cost reports the configured work factor.
func (p *PasswordService) Cost() int {
	return p.cost
}

// Hash returns the bcrypt digest of plaintext.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored digest.
//
// A malformed digest is treated the same as a wrong password: the caller
// only ever needs a yes or no, and both cases end in "Invalid
// username/password". The comparison itself is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
