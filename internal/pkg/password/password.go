package password

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/crypto/bcrypt"
)

// ReadableAlphabet leaves out characters that are easy to confuse when read
// from an email: 0/O, 1/l/I.
const ReadableAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

const ambiguousCharacters = "0O1lI"

const strengthPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`

var (
	ErrWeakPassword      = errors.New("the password must be at least 8 characters and contain 1 letter and 1 number")
	ErrAmbiguousAlphabet = errors.New("alphabet contains ambiguous characters")
	ErrInvalidLength     = errors.New("temporary password length must be at least 6")
)

var strengthExp = regexp2.MustCompile(strengthPattern, regexp2.None)

func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func Matches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func CheckStrength(password string) error {
	ok, err := strengthExp.MatchString(password)
	if err != nil {
		return fmt.Errorf("strengthExp.MatchString -> %w", err)
	}
	if !ok {
		return ErrWeakPassword
	}

	return nil
}

// Policy is the rule for passwords a person chooses. The zero value accepts
// any password; RequireStrong adds the letter, digit and length rule.
type Policy struct {
	RequireStrong bool
}

func (p Policy) Check(password string) error {
	if !p.RequireStrong {
		return nil
	}

	return CheckStrength(password)
}

func ValidateAlphabet(alphabet string) error {
	if alphabet == "" || strings.ContainsAny(alphabet, ambiguousCharacters) {
		return ErrAmbiguousAlphabet
	}

	return nil
}

// Generator produces temporary passwords for new parents.
type Generator struct {
	length   int
	alphabet []rune
}

func NewGenerator(length int, alphabet string) (*Generator, error) {
	if length < 6 {
		return nil, ErrInvalidLength
	}
	if err := ValidateAlphabet(alphabet); err != nil {
		return nil, err
	}

	return &Generator{
		length:   length,
		alphabet: []rune(alphabet),
	}, nil
}

func (g *Generator) Generate() (string, error) {
	max := big.NewInt(int64(len(g.alphabet)))

	var b strings.Builder
	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("rand.Int -> %w", err)
		}
		b.WriteRune(g.alphabet[n.Int64()])
	}

	return b.String(), nil
}
