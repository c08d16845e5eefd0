package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// decoys holds one throwaway hash per cost, compared against when the
// username is unknown so both failure paths cost the same bcrypt work.
var decoys sync.Map

func normalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), normalizeCost(cost))
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// BurnComparison spends the same work as a failed ComparePassword against a
// hash of the given cost.
func BurnComparison(plain string, cost int) {
	cost = normalizeCost(cost)
	decoy, ok := decoys.Load(cost)
	if !ok {
		hashed, err := bcrypt.GenerateFromPassword([]byte("identity-service-decoy"), cost)
		if err != nil {
			return
		}
		decoy, _ = decoys.LoadOrStore(cost, hashed)
	}
	_ = bcrypt.CompareHashAndPassword(decoy.([]byte), []byte(plain))
}
