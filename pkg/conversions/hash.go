package conversions

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// HashEmail lowercases and trims the address before hashing.
func HashEmail(email string) string {
	return hashNormalized(strings.ToLower(strings.TrimSpace(email)))
}

// HashPhone keeps digits only before hashing.
func HashPhone(phone string) string {
	return hashNormalized(strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone))
}

// HashName lowercases and strips whitespace and punctuation before hashing.
func HashName(name string) string {
	return hashNormalized(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, name))
}

// HashCity normalizes like HashName.
func HashCity(city string) string {
	return HashName(city)
}

func hashNormalized(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// appendHashed appends h to list when non-empty.
func appendHashed(list []string, h string) []string {
	if h == "" {
		return list
	}
	return append(list, h)
}

// Customer is the raw, unhashed identity used to build UserData.
type Customer struct {
	Email     string
	Phone     string
	FirstName string
	City      string
	ClientIP  string
	UserAgent string
	FBP       string
	FBC       string
}

// UserDataFor hashes the personal fields of c.
func UserDataFor(c Customer) UserData {
	return UserData{
		Emails:     appendHashed(nil, HashEmail(c.Email)),
		Phones:     appendHashed(nil, HashPhone(c.Phone)),
		FirstNames: appendHashed(nil, HashName(c.FirstName)),
		Cities:     appendHashed(nil, HashCity(c.City)),
		ClientIP:   strings.TrimSpace(c.ClientIP),
		UserAgent:  strings.TrimSpace(c.UserAgent),
		FBP:        strings.TrimSpace(c.FBP),
		FBC:        strings.TrimSpace(c.FBC),
	}
}
