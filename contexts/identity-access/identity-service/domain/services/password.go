package services

import (
	"context"
	"runtime"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// Hasher is the credential store. Hashing is idempotent: values already in
// bcrypt form pass through unchanged, so persisting an entity twice can
// never double-hash its password. bcrypt work is dispatched through a
// weighted semaphore so a burst of registrations cannot starve the
// request-serving goroutines of CPU.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 10
	}
	return &Hasher{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
}

// Hashed reports whether the value is already in bcrypt form: splitting on
// the scheme delimiter yields exactly four segments ($2a$cost$salthash).
func Hashed(value string) bool {
	return len(strings.Split(value, "$")) == 4
}

// Hash returns the bcrypt hash of candidate. Empty and already-hashed
// values are returned unchanged.
func (h *Hasher) Hash(ctx context.Context, candidate string) (string, error) {
	if candidate == "" || Hashed(candidate) {
		return candidate, nil
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(candidate), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify compares candidate against a stored hash. It never fails loudly:
// a missing hash or any comparison error reads as "not authenticated".
func (h *Hasher) Verify(ctx context.Context, candidate, hashed string) bool {
	if hashed == "" {
		return false
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(candidate)) == nil
}
