package feed

import (
	"context"
	"net/http"
	"sync"

	"github.com/campus-mts/mts/internal/api/dto"
	"github.com/campus-mts/mts/internal/domain"
)

// Session supplies the signed-in user and the bearer token used for every feed request.
type Session interface {
	CurrentUser() *domain.User
	Token() string
}

// TokenSession is a Session backed by a JWT issued by POST /auth/login.
type TokenSession struct {
	token string

	mu   sync.RWMutex
	user *domain.User
}

// NewTokenSession wraps an already issued token. Call Load to resolve the user.
func NewTokenSession(token string) *TokenSession {
	return &TokenSession{token: token}
}

// Token returns the bearer token.
func (s *TokenSession) Token() string {
	return s.token
}

// CurrentUser returns the user resolved by Load, or nil before that.
func (s *TokenSession) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Load resolves the token owner through GET /auth/me.
func (s *TokenSession) Load(ctx context.Context, baseURL string, httpClient *http.Client) error {
	api := &apiClient{baseURL: baseURL, http: httpClient, session: s}
	var resp dto.UserResponse
	if err := api.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return err
	}
	s.mu.Lock()
	s.user = &domain.User{
		ID:         resp.ID,
		Name:       resp.Name,
		Department: resp.Department,
		Role:       resp.Role,
		CreatedAt:  resp.CreatedAt,
	}
	s.mu.Unlock()
	return nil
}

// Login exchanges credentials for a token through POST /auth/login and returns a loaded session.
func Login(ctx context.Context, baseURL string, httpClient *http.Client, name, password string) (*TokenSession, error) {
	api := &apiClient{baseURL: baseURL, http: httpClient}
	var resp dto.AuthResponse
	if err := api.do(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Name: name, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &TokenSession{
		token: resp.Token,
		user: &domain.User{
			ID:         resp.User.ID,
			Name:       resp.User.Name,
			Department: resp.User.Department,
			Role:       resp.User.Role,
			CreatedAt:  resp.User.CreatedAt,
		},
	}, nil
}
