package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/medicart/internal/auth"
	"github.com/Skotchmaster/medicart/internal/logging"
)

type AdminService struct {
	Credentials *auth.Credentials
	Issuer      *auth.Issuer
}

// Login checks the admin credentials and returns a signed token for the
// session.
func (s *AdminService) Login(ctx context.Context, username, password string) (string, auth.Principal, error) {
	l := logging.FromContext(ctx).With("svc", "admin.login")

	if err := s.Credentials.Verify(username, password); err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			return "", auth.Principal{}, ErrInvalidCredentials
		}
		return "", auth.Principal{}, err
	}

	token, p, err := s.Issuer.Issue(username)
	if err != nil {
		return "", auth.Principal{}, fmt.Errorf("issue admin token: %w", err)
	}

	l.Info("admin_login_success", "username", username, "expires_at", p.ExpiresAt)
	return token, p, nil
}
