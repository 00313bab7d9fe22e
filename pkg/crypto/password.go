package crypto

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// PasswordHasher runs bcrypt off the caller's goroutine and bounds how many
// hashes run at once, so a burst of signups cannot starve other requests of
// CPU. Safe for concurrent use.
type PasswordHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewPasswordHasher builds a hasher. workers <= 0 means runtime.NumCPU().
func NewPasswordHasher(cost, workers int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &PasswordHasher{cost: cost, sem: semaphore.NewWeighted(int64(workers))}, nil
}

// MaxPasswordBytes is the longest input bcrypt accepts. Longer passwords are
// cut to this many bytes, the same way for hashing and comparing, so a
// 32-character password of multi-byte runes still hashes and verifies.
const MaxPasswordBytes = 72

func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

type hashResult struct {
	hash []byte
	err  error
}

// Hash returns a salted bcrypt hash of password. bcrypt draws a fresh random
// salt on every call.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	res, err := h.run(ctx, func() hashResult {
		b, err := bcrypt.GenerateFromPassword(passwordBytes(password), h.cost)
		return hashResult{hash: b, err: err}
	})
	if err != nil {
		return "", err
	}
	if res.err != nil {
		return "", fmt.Errorf("hash password: %w", res.err)
	}
	return string(res.hash), nil
}

// Compare reports whether password matches hash. A mismatch is (false, nil);
// an error means the comparison itself could not run.
func (h *PasswordHasher) Compare(ctx context.Context, hash, password string) (bool, error) {
	res, err := h.run(ctx, func() hashResult {
		return hashResult{err: bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes(password))}
	})
	if err != nil {
		return false, err
	}
	switch {
	case res.err == nil:
		return true, nil
	case errors.Is(res.err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", res.err)
	}
}

func (h *PasswordHasher) run(ctx context.Context, fn func() hashResult) (hashResult, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return hashResult{}, err
	}
	done := make(chan hashResult, 1)
	go func() {
		defer h.sem.Release(1)
		done <- fn()
	}()
	select {
	case res := <-done:
		return res, nil
	case <-ctx.Done():
		// The worker finishes on its own and releases its slot.
		return hashResult{}, ctx.Err()
	}
}
