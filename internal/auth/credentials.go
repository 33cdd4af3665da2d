package auth

import (
	"crypto/subtle"
	"errors"

	"github.com/Skotchmaster/medicart/internal/hash"
)

var ErrBadCredentials = errors.New("invalid username or password")

// Credentials is the single configured admin account.
type Credentials struct {
	username string
	passHash string
}

// NewCredentials accepts either a bcrypt hash or a plain password. A plain
// password is hashed once here and never kept.
func NewCredentials(username, password, passHash string) (*Credentials, error) {
	if username == "" {
		return nil, errors.New("admin username is empty")
	}
	if passHash == "" && hash.IsHash(password) {
		passHash = password
	}
	if passHash == "" {
		if password == "" {
			return nil, errors.New("admin password is empty")
		}
		h, err := hash.HashPassword(password)
		if err != nil {
			return nil, err
		}
		passHash = h
	}
	if !hash.IsHash(passHash) {
		return nil, errors.New("admin password hash is not a bcrypt hash")
	}
	return &Credentials{username: username, passHash: passHash}, nil
}

func (c *Credentials) Verify(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	passOK := hash.CheckPassword(c.passHash, password)
	if !userOK || !passOK {
		return ErrBadCredentials
	}
	return nil
}
