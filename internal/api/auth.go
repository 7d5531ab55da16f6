package api

import (
	"context"

	"github.com/meetly-app/meetly/pkg/models"
)

// AuthService covers /auth.
type AuthService struct {
	c *Client
}

// Login exchanges credentials for a token and user.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	res, err := call[models.AuthResult](ctx, s.c, post("/auth/login", req))
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	res, err := call[models.AuthResult](ctx, s.c, post("/auth/register", req))
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// SocialLogin signs in with a third-party identity token.
func (s *AuthService) SocialLogin(ctx context.Context, req models.SocialLoginRequest) (*models.AuthResult, error) {
	res, err := call[models.AuthResult](ctx, s.c, post("/auth/social-login", req))
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Me returns the user the current token belongs to.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	u, err := call[models.User](ctx, s.c, get("/auth/me", nil))
	if err != nil {
		return nil, err
	}
	return &u, nil
}
