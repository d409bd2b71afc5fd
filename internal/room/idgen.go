package room

import (
	"crypto/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers for rooms or players.
type IDGenerator func() (string, error)

// CodeLength is the length of a room code.
const CodeLength = 6

// codeAlphabet omits I, O, 0 and 1. Its 32 symbols divide 256 evenly.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandomCode returns a 6-character room code from crypto/rand.
func RandomCode() (string, error) {
	b := make([]byte, CodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b), nil
}

// UUIDs returns random UUID strings.
func UUIDs() (string, error) { return uuid.NewString(), nil }

// Sequence returns a generator that yields ids in order and then repeats the last one.
// Tests use it to force collisions. It is safe for concurrent use.
func Sequence(ids ...string) IDGenerator {
	var (
		mu sync.Mutex
		i  int
	)
	return func() (string, error) {
		if len(ids) == 0 {
			return "", ErrCodeAllocation
		}
		mu.Lock()
		defer mu.Unlock()
		id := ids[i]
		if i < len(ids)-1 {
			i++
		}
		return id, nil
	}
}

// NormalizeID upper-cases and trims a room code.
func NormalizeID(id string) string { return strings.ToUpper(strings.TrimSpace(id)) }
