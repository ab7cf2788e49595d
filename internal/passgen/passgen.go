// Package passgen generates random site passwords from a configurable
// character set.
package passgen

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	Lower   = "abcdefghijklmnopqrstuvwxyz"
	Upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits  = "0123456789"
	Symbols = "!#$%&*+-.:;=?@^_~"

	DefaultLength  = 16
	DefaultCharset = Lower + Upper + Digits + Symbols
)

var (
	ErrInvalidLength  = errors.New("password length must be positive")
	ErrInvalidCharset = errors.New("password charset needs at least two distinct characters")
)

// Policy describes generated passwords.
type Policy struct {
	Length  int
	Charset string
}

// DefaultPolicy is 16 characters of mixed case letters, digits and symbols.
func DefaultPolicy() Policy {
	return Policy{Length: DefaultLength, Charset: DefaultCharset}
}

// Validate reports whether p can produce passwords.
func (p Policy) Validate() error {
	if p.Length <= 0 {
		return ErrInvalidLength
	}
	seen := make(map[rune]struct{})
	for _, r := range p.Charset {
		seen[r] = struct{}{}
	}
	if len(seen) < 2 {
		return ErrInvalidCharset
	}
	return nil
}

// Generate returns a password of p.Length characters drawn uniformly from
// p.Charset. When the charset contains characters of several classes
// (lower, upper, digit, symbol) and the length allows it, every class is
// represented at least once.
func Generate(p Policy) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	alphabet := dedupe(p.Charset)
	classes := splitClasses(alphabet)

	for {
		out := make([]rune, p.Length)
		for i := range out {
			r, err := pick(alphabet)
			if err != nil {
				return "", err
			}
			out[i] = r
		}
		if len(classes) > p.Length || coversAll(out, classes) {
			return string(out), nil
		}
	}
}

func pick(alphabet []rune) (rune, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[n.Int64()], nil
}

func dedupe(s string) []rune {
	seen := make(map[rune]struct{})
	var out []rune
	for _, r := range s {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

type class func(rune) bool

func inSet(set string) class {
	return func(r rune) bool {
		for _, c := range set {
			if c == r {
				return true
			}
		}
		return false
	}
}

func splitClasses(alphabet []rune) []class {
	known := []class{inSet(Lower), inSet(Upper), inSet(Digits)}
	other := func(r rune) bool {
		for _, c := range known {
			if c(r) {
				return false
			}
		}
		return true
	}
	candidates := append(known, other)

	var present []class
	for _, c := range candidates {
		for _, r := range alphabet {
			if c(r) {
				present = append(present, c)
				break
			}
		}
	}
	return present
}

func coversAll(pw []rune, classes []class) bool {
	for _, c := range classes {
		found := false
		for _, r := range pw {
			if c(r) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
