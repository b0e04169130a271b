package tool

import (
	"github.com/google/uuid"
)

func GenerateRandomUUID() string {
	return uuid.New().String()
}

// IsValidID reports whether s is a UUID generated by this process.
// Used to keep spool handles and session ids out of path tricks.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
