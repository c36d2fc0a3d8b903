package auth

import (
	"context"
	"fmt"
	"runtime"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultBcryptCost matches the cost the accounts were historically hashed with.
const DefaultBcryptCost = 10

// maxPasswordBytes is bcrypt's input limit; longer input would be truncated.
const maxPasswordBytes = 72

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hashed string) bool
}

// BcryptHasher is a PasswordHasher backed by bcrypt. At most GOMAXPROCS
// hash/verify calls run at once; the rest wait for a slot.
type BcryptHasher struct {
	cost  int
	slots int64
	sem   *semaphore.Weighted
}

// NewBcryptHasher returns a hasher with the given cost. Costs outside
// bcrypt's accepted range fall back to DefaultBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	slots := int64(runtime.GOMAXPROCS(0))
	return &BcryptHasher{
		cost:  cost,
		slots: slots,
		sem:   semaphore.NewWeighted(slots),
	}
}

func (h *BcryptHasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt hash of plaintext. Every call uses a fresh
// salt, so hashing the same input twice yields different blobs.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("%w: password longer than %d bytes", common.ErrorValidation, maxPasswordBytes)
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorHashing, err)
	}
	defer h.sem.Release(1)

	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorHashing, err)
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hashed. A malformed hash, or a
// context cancelled while waiting for a slot, is reported as a mismatch.
// Input Hash would reject never matches, otherwise bcrypt would compare
// only its first 72 bytes.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, hashed string) bool {
	if len(plaintext) > maxPasswordBytes {
		return false
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
