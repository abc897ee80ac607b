package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"doorstep-clean/internal/middleware"
	"doorstep-clean/internal/models"
	"doorstep-clean/internal/policy"
)

const tokenTTL = 24 * time.Hour

// GoogleProfile is the subset of the userinfo response we use.
type GoogleProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleVerifier exchanges an OAuth authorization code for the user's
// profile. Split out so tests can stub Google.
type GoogleVerifier interface {
	Verify(ctx context.Context, code string) (*GoogleProfile, error)
}

// ServiceInterface defines the contract for the user service.
type ServiceInterface interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GoogleLogin(ctx context.Context, req models.GoogleLoginRequest) (*models.AuthResponse, error)
	CreateUser(ctx context.Context, actor policy.Actor, req models.CreateUserRequest) (*models.User, error)
	ListUsers(ctx context.Context, actor policy.Actor, role string, page, limit int) ([]*models.User, int, error)
}

// Service implements the ServiceInterface.
type Service struct {
	repo      RepositoryInterface
	google    GoogleVerifier
	jwtSecret string
	now       func() time.Time
}

// NewService creates a new user service.
func NewService(repo RepositoryInterface, google GoogleVerifier, jwtSecret string) *Service {
	return &Service{repo: repo, google: google, jwtSecret: jwtSecret, now: time.Now}
}

func (s *Service) signToken(user *models.User) (string, error) {
	now := s.now()
	claims := middleware.Claims{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) authResponse(user *models.User) (*models.AuthResponse, error) {
	token, err := s.signToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}

// Register creates a customer account from the public sign-up form.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
	})
	if err != nil {
		return nil, err
	}
	return s.authResponse(user)
}

// Login authenticates with email and password.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, models.ErrInvalidCredentials
	}
	return s.authResponse(user)
}

// GoogleLogin exchanges the OAuth code, then finds or creates the matching
// customer account.
func (s *Service) GoogleLogin(ctx context.Context, req models.GoogleLoginRequest) (*models.AuthResponse, error) {
	profile, err := s.google.Verify(ctx, req.Code)
	if err != nil {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, profile.Email)
	if errors.Is(err, models.ErrNotFound) {
		user, err = s.repo.Create(ctx, &models.User{
			Name:  profile.Name,
			Email: profile.Email,
			Role:  models.RoleCustomer,
		})
	}
	if err != nil {
		return nil, err
	}
	return s.authResponse(user)
}

// CreateUser lets an admin provision staff and rider accounts.
func (s *Service) CreateUser(ctx context.Context, actor policy.Actor, req models.CreateUserRequest) (*models.User, error) {
	if !policy.Allow(actor, policy.UserManage, policy.Resource{}) {
		return nil, models.ErrForbidden
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.Create(ctx, &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	})
}

// ListUsers returns accounts for the admin user screen.
func (s *Service) ListUsers(ctx context.Context, actor policy.Actor, role string, page, limit int) ([]*models.User, int, error) {
	if !policy.Allow(actor, policy.UserManage, policy.Resource{}) {
		return nil, 0, models.ErrForbidden
	}
	return s.repo.List(ctx, role, page, limit)
}

// GoogleClient verifies OAuth codes against Google's token and userinfo
// endpoints.
type GoogleClient struct {
	config *oauth2.Config
}

// NewGoogleClient builds the OAuth config for the web flow.
func NewGoogleClient(clientID, clientSecret, redirectURL string) *GoogleClient {
	return &GoogleClient{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Verify exchanges the authorization code and fetches the user's profile.
func (g *GoogleClient) Verify(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	client := g.config.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if profile.Email == "" {
		return nil, errors.New("userinfo response missing email")
	}
	return &profile, nil
}
