package auth

import (
	"context"
	"errors"

	internalmodels "github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/models"
	"gorm.io/gorm"
)

// ErrCodeGrantUnsupported is returned when the manager tries to persist an
// authorization code; only the password grant is enabled.
var ErrCodeGrantUnsupported = errors.New("authorization codes are not supported")

// GormTokenStore implements oauth2.TokenStore on top of the auth_tokens table
type GormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

func (s *GormTokenStore) Create(ctx context.Context, info oauth2.TokenInfo) error {
	if info.GetCode() != "" {
		return ErrCodeGrantUnsupported
	}

	createdAt := info.GetAccessCreateAt()
	token := &internalmodels.AuthToken{
		ClientID:     info.GetClientID(),
		UserID:       info.GetUserID(),
		AccessToken:  info.GetAccess(),
		RefreshToken: info.GetRefresh(),
		Scopes:       info.GetScope(),
		CreatedAt:    createdAt,
		ExpiresAt:    createdAt.Add(info.GetAccessExpiresIn()),
	}

	return s.db.WithContext(ctx).Create(token).Error
}

func (s *GormTokenStore) RemoveByAccess(ctx context.Context, access string) error {
	return s.db.WithContext(ctx).Where("access_token = ?", access).Delete(&internalmodels.AuthToken{}).Error
}

func (s *GormTokenStore) RemoveByRefresh(ctx context.Context, refresh string) error {
	if refresh == "" {
		return nil
	}
	return s.db.WithContext(ctx).Where("refresh_token = ?", refresh).Delete(&internalmodels.AuthToken{}).Error
}

// GetByAccess returns nil without error for unknown tokens, which the
// manager reports as an invalid access token.
func (s *GormTokenStore) GetByAccess(ctx context.Context, access string) (oauth2.TokenInfo, error) {
	return s.find(ctx, "access_token = ?", access)
}

func (s *GormTokenStore) GetByRefresh(ctx context.Context, refresh string) (oauth2.TokenInfo, error) {
	if refresh == "" {
		return nil, nil
	}
	return s.find(ctx, "refresh_token = ?", refresh)
}

func (s *GormTokenStore) GetByCode(ctx context.Context, code string) (oauth2.TokenInfo, error) {
	return nil, ErrCodeGrantUnsupported
}

func (s *GormTokenStore) RemoveByCode(ctx context.Context, code string) error {
	return nil
}

func (s *GormTokenStore) find(ctx context.Context, query string, value string) (oauth2.TokenInfo, error) {
	var token internalmodels.AuthToken
	if err := s.db.WithContext(ctx).Where(query, value).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &models.Token{
		ClientID:        token.ClientID,
		UserID:          token.UserID,
		Access:          token.AccessToken,
		AccessCreateAt:  token.CreatedAt,
		AccessExpiresIn: token.ExpiresAt.Sub(token.CreatedAt),
		Refresh:         token.RefreshToken,
		Scope:           token.Scopes,
	}, nil
}
