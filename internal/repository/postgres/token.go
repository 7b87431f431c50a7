package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/avelar/clinic-api/pkg/errors"
)

func (r *tokenRepository) StoreRefreshToken(ctx context.Context, tenantID uuid.UUID, token string, expiry time.Time) error {
	query := `
		INSERT INTO tenant_tokens (tenant_id, token, type, expires_at, created_at)
		VALUES ($1, $2, 'refresh', $3, NOW())
	`
	_, err := r.db.ExecContext(ctx, query, tenantID, token, expiry)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *tokenRepository) ValidateRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	query := `
		SELECT tenant_id
		FROM tenant_tokens
		WHERE token = $1
		AND type = 'refresh'
		AND expires_at > NOW()
		AND revoked_at IS NULL
	`
	var tenantID uuid.UUID
	err := r.db.GetContext(ctx, &tenantID, query, token)
	if err != nil {
		return uuid.Nil, apperrors.Unauthorized(fmt.Errorf("invalid or expired token"))
	}
	return tenantID, nil
}

func (r *tokenRepository) InvalidateToken(ctx context.Context, token string) error {
	query := `
		UPDATE tenant_tokens
		SET revoked_at = NOW()
		WHERE token = $1 AND revoked_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	return nil
}

func (r *tokenRepository) InvalidateTenantTokens(ctx context.Context, tenantID uuid.UUID) error {
	query := `
		UPDATE tenant_tokens
		SET revoked_at = NOW()
		WHERE tenant_id = $1 AND revoked_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, tenantID)
	if err != nil {
		return fmt.Errorf("failed to invalidate tenant tokens: %w", err)
	}
	return nil
}
