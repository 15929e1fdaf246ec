package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrPasswordTooLong bcrypt 只处理前 72 字节，超出直接拒绝
	ErrPasswordTooLong = bcrypt.ErrPasswordTooLong
)

// PasswordHasher 密码哈希
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher cost<=0 时使用 bcrypt.DefaultCost
func NewBcryptHasher(cost int) PasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *bcryptHasher) Compare(hashed, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
