package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"
)

// The generator draws every pseudo-random value from a stateless seeded
// hash over (serialized state, turn index, salt). There is no mutable seed
// or counter anywhere; identical inputs always reproduce identical draws.

func digest(canonical string, turnIndex int, salt string) uint64 {
	h := sha256.New()
	h.Write([]byte(salt))
	h.Write([]byte{0})
	h.Write([]byte(canonical))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(turnIndex)))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

// roll returns a deterministic integer in [1,100].
func roll(canonical string, turnIndex int, salt string) int {
	return int(digest(canonical, turnIndex, salt)%100) + 1
}

// pick returns a deterministic index in [0,n).
func pick(canonical string, turnIndex int, salt string, n int) int {
	return int(digest(canonical, turnIndex, salt) % uint64(n))
}
