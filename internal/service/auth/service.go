package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/repository"
	"github.com/avelar/clinic-api/pkg/auth"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
	"github.com/avelar/clinic-api/pkg/security"
)

type Service struct {
	tenants       repository.TenantRepository
	tokens        repository.TokenRepository
	subscriptions repository.SubscriptionRepository
	jwtSvc        auth.JWTService
	hasher        security.PasswordHasher
	trialDays     int
	refreshExpiry time.Duration
	logger        zerolog.Logger
}

func NewService(
	tenants repository.TenantRepository,
	tokens repository.TokenRepository,
	subscriptions repository.SubscriptionRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	trialDays int,
	refreshExpiry time.Duration,
	logger zerolog.Logger,
) *Service {
	return &Service{
		tenants:       tenants,
		tokens:        tokens,
		subscriptions: subscriptions,
		jwtSvc:        jwtSvc,
		hasher:        hasher,
		trialDays:     trialDays,
		refreshExpiry: refreshExpiry,
		logger:        logger,
	}
}

// Register creates the tenant account, opens its trial subscription and
// returns a signed token pair.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.BadRequest("password does not meet requirements", err)
	}

	tenant := &model.Tenant{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.TenantRoleOwner,
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}

	now := time.Now()
	trial := &model.Subscription{
		TenantID: tenant.ID,
		Plan:     model.SubscriptionPlanTrial,
		Status:   model.SubscriptionStatusActive,
		StartsAt: now,
		EndsAt:   now.AddDate(0, 0, s.trialDays),
	}
	if err := s.subscriptions.Create(ctx, trial); err != nil {
		return nil, fmt.Errorf("failed to open trial subscription: %w", err)
	}

	s.logger.Info().
		Str("tenant_id", tenant.ID.String()).
		Str("email", tenant.Email).
		Msg("tenant registered")

	return s.issueTokens(ctx, tenant)
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	tenant, err := s.tenants.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
		}
		return nil, err
	}

	if err := s.hasher.Compare(tenant.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	now := time.Now()
	tenant.LastLoginAt = &now
	if err := s.tenants.Update(ctx, tenant); err != nil {
		s.logger.Warn().Err(err).
			Str("tenant_id", tenant.ID.String()).
			Msg("failed to record last login")
	}

	return s.issueTokens(ctx, tenant)
}

// Refresh rotates the refresh token: the presented token is revoked and a new
// pair is issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	tenantID, err := s.tokens.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if tenantID != claims.TenantID {
		return nil, apperrors.Unauthorized(fmt.Errorf("token tenant mismatch"))
	}

	tenant, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.InvalidateToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, tenant)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.InvalidateToken(ctx, refreshToken)
}

func (s *Service) issueTokens(ctx context.Context, tenant *model.Tenant) (*model.TokenResponse, error) {
	pair, err := s.jwtSvc.GenerateTokenPair(tenant.ID, tenant.Email, string(tenant.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	expiry := time.Now().Add(s.refreshExpiry)
	if err := s.tokens.StoreRefreshToken(ctx, tenant.ID, pair.RefreshToken, expiry); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Tenant:       tenant,
	}, nil
}
