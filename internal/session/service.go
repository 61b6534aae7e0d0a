package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/basket-engine/internal/basket"
	pkgAuth "github.com/angelmondragon/basket-engine/pkg/auth"
	authsession "github.com/angelmondragon/basket-engine/pkg/auth/session"
	"github.com/angelmondragon/basket-engine/pkg/config"
	pkgerrors "github.com/angelmondragon/basket-engine/pkg/errors"
	"github.com/angelmondragon/basket-engine/pkg/logger"
)

const invalidCredentialsMessage = "Invalid username or password"

// Service is the session boundary: it starts sessions with an empty basket
// and clears the basket when a session ends.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, accessToken string, req RefreshRequest) (*LoginResponse, error)
	Logout(ctx context.Context, sessionID string) (string, error)
	Basket(ctx context.Context, sessionID string) (*basket.Store, error)
}

type credentialChecker interface {
	Matches(username, password string) (bool, error)
}

type sessionManager interface {
	Generate(ctx context.Context, sessionID string) (string, error)
	Rotate(ctx context.Context, sessionID, provided string) (string, error)
	Revoke(ctx context.Context, sessionID string) error
	HasSession(ctx context.Context, sessionID string) (bool, error)
}

// ServiceParams bundles the dependencies required to build a session service.
type ServiceParams struct {
	Credential     credentialChecker
	SessionManager sessionManager
	Baskets        basket.RepositoryFactory
	Catalog        basket.ProductSource
	Pricer         basket.Pricer
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
	Recorder       basket.Recorder
	Now            func() time.Time
}

type service struct {
	credential credentialChecker
	sessions   sessionManager
	baskets    basket.RepositoryFactory
	catalog    basket.ProductSource
	pricer     basket.Pricer
	jwtCfg     config.JWTConfig
	logg       *logger.Logger
	storeOpts  []basket.Option
	now        func() time.Time
}

// NewService constructs a session service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Credential == nil {
		return nil, fmt.Errorf("credential is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Baskets == nil {
		return nil, fmt.Errorf("basket repository factory is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if params.Pricer == nil {
		return nil, fmt.Errorf("pricer is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	var opts []basket.Option
	if params.Logger != nil {
		opts = append(opts, basket.WithLogger(params.Logger))
	}
	if params.Recorder != nil {
		opts = append(opts, basket.WithRecorder(params.Recorder))
	}

	return &service{
		credential: params.Credential,
		sessions:   params.SessionManager,
		baskets:    params.Baskets,
		catalog:    params.Catalog,
		pricer:     params.Pricer,
		jwtCfg:     params.JWTConfig,
		logg:       params.Logger,
		storeOpts:  opts,
		now:        now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	ok, err := s.credential.Matches(username, req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify credentials")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	sessionID := authsession.NewSessionID()
	if s.logg != nil {
		ctx = s.logg.WithSessionID(ctx, sessionID)
	}

	// A new session never inherits a basket.
	if err := s.baskets(sessionID).Save(ctx, []basket.LineItem{}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "initialize basket")
	}

	refreshToken, err := s.sessions.Generate(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	resp, err := s.issue(sessionID, username, refreshToken)
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(ctx, "session.login")
	}
	return resp, nil
}

func (s *service) Refresh(ctx context.Context, accessToken string, req RefreshRequest) (*LoginResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	sessionID := claims.SessionID()

	refreshToken, err := s.sessions.Rotate(ctx, sessionID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, authsession.ErrInvalidRefreshToken) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}
	return s.issue(sessionID, claims.Username, refreshToken)
}

// Logout clears the session's basket and then revokes the session. Both steps
// run even when the first fails.
func (s *service) Logout(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	if s.logg != nil {
		ctx = s.logg.WithSessionID(ctx, sessionID)
	}

	var errs error
	message := ""
	store, err := basket.Open(ctx, s.catalog, s.pricer, s.baskets(sessionID), s.storeOpts...)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else {
		message, err = store.Clear(ctx)
		errs = multierr.Append(errs, err)
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("revoke session: %w", err))
	}

	if errs != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "session.logout_failed", errs)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "logout incomplete")
	}
	if s.logg != nil {
		s.logg.Info(ctx, "session.logout")
	}
	return message, nil
}

func (s *service) Basket(ctx context.Context, sessionID string) (*basket.Store, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	active, err := s.sessions.HasSession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check session")
	}
	if !active {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
	}
	if s.logg != nil {
		ctx = s.logg.WithSessionID(ctx, sessionID)
	}
	return basket.Open(ctx, s.catalog, s.pricer, s.baskets(sessionID), s.storeOpts...)
}

func (s *service) issue(sessionID, username, refreshToken string) (*LoginResponse, error) {
	now := s.now()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		SessionID: sessionID,
		Username:  username,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &LoginResponse{
		SessionID:    sessionID,
		Username:     username,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute).UTC(),
	}, nil
}
