package utils

import (
	"github.com/twmb/murmur3"
)

func HashString(s string) uint64 {
	return HashBytes([]byte(s))
}

// HashBytes hashes the concatenation of its arguments.
func HashBytes(bytes ...[]byte) uint64 {
	hash := murmur3.New64()
	for _, b := range bytes {
		if _, err := hash.Write(b); err != nil {
			panic(err)
		}
	}
	return hash.Sum64()
}
