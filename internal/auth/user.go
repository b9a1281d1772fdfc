package auth

import (
	"errors"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvUser = "PCD_USER"
	EnvPass = "PCD_PASS"
)

var InvalidAuth = errors.New("Invalid auth")

type PcdUser struct {
	Id       string
	Name     string
	Password []byte
}

func NewUser(name, password string) (*PcdUser, error) {
	if len(name) == 0 {
		return nil, errors.New("User name cannot be empty")
	}
	// password max size is 72 bytes because of bcrypt limit
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &PcdUser{uuid.New().String(), name, hashedPassword}, nil
}

func (u *PcdUser) ValidateUser(password string) bool {
	return bcrypt.CompareHashAndPassword(u.Password, []byte(password)) == nil
}

// UsersFromEnv returns the user configured through PCD_USER and PCD_PASS.
// No users means the server accepts every connection.
func UsersFromEnv() ([]*PcdUser, error) {
	name := os.Getenv(EnvUser)
	if len(name) == 0 {
		return nil, nil
	}
	u, err := NewUser(name, os.Getenv(EnvPass))
	if err != nil {
		return nil, err
	}
	return []*PcdUser{u}, nil
}

// Authenticate finds the user matching name and password.
func Authenticate(users []*PcdUser, name, password string) (*PcdUser, error) {
	for _, u := range users {
		if u.Name == name && u.ValidateUser(password) {
			return u, nil
		}
	}
	return nil, InvalidAuth
}
