package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/data/repos"
	"github.com/yungbote/idea2sns-backend/internal/platform/apierr"
	"github.com/yungbote/idea2sns-backend/internal/platform/dbctx"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
	"github.com/yungbote/idea2sns-backend/internal/platforms"
)

type SocialAccountInput struct {
	Platform       platforms.Platform `json:"platform" validate:"required,oneof=twitter linkedin threads reddit"`
	AccountName    *string            `json:"account_name" validate:"omitempty,max=100"`
	AccessToken    string             `json:"access_token" validate:"required,notblank,min=10,max=1000"`
	RefreshToken   *string            `json:"refresh_token" validate:"omitempty,min=10,max=1000"`
	TokenExpiresAt time.Time          `json:"token_expires_at" validate:"required"`
}

// SocialAccountView is the API shape of a stored account. Tokens are masked.
type SocialAccountView struct {
	ID             uuid.UUID `json:"id"`
	Platform       string    `json:"platform"`
	AccountName    *string   `json:"account_name,omitempty"`
	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token,omitempty"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type SocialAccountService interface {
	List(ctx context.Context, userID uuid.UUID) ([]SocialAccountView, error)
	Create(ctx context.Context, userID uuid.UUID, in SocialAccountInput) (*SocialAccountView, error)
	Update(ctx context.Context, userID, id uuid.UUID, in SocialAccountInput) (*SocialAccountView, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type socialAccountService struct {
	log    *logger.Logger
	repo   repos.SocialAccountRepo
	cipher *TokenCipher
	now    func() time.Time
}

func NewSocialAccountService(log *logger.Logger, repo repos.SocialAccountRepo, cipher *TokenCipher) SocialAccountService {
	return &socialAccountService{
		log:    log.With("service", "SocialAccountService"),
		repo:   repo,
		cipher: cipher,
		now:    time.Now,
	}
}

func (s *socialAccountService) List(ctx context.Context, userID uuid.UUID) ([]SocialAccountView, error) {
	rows, err := s.repo.ListForUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, apierr.Internal("", err)
	}
	out := make([]SocialAccountView, 0, len(rows))
	for _, row := range rows {
		v, err := s.view(row)
		if err != nil {
			return nil, apierr.Internal("", err)
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *socialAccountService) Create(ctx context.Context, userID uuid.UUID, in SocialAccountInput) (*SocialAccountView, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	acct := &types.SocialAccount{UserID: userID}
	if err := s.apply(acct, in); err != nil {
		return nil, apierr.Internal("", err)
	}
	if err := s.repo.Create(dbctx.Context{Ctx: ctx}, acct); err != nil {
		return nil, apierr.Internal("Failed to save social account", err)
	}
	s.log.Info("social account connected", "user_id", userID.String(), "platform", acct.Platform)
	return s.viewOrInternal(acct)
}

func (s *socialAccountService) Update(ctx context.Context, userID, id uuid.UUID, in SocialAccountInput) (*SocialAccountView, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	acct, err := s.repo.GetByIDForUser(dbc, id, userID)
	if err != nil {
		return nil, apierr.Internal("", err)
	}
	if acct == nil {
		return nil, apierr.NotFound("Social account not found")
	}
	if err := s.apply(acct, in); err != nil {
		return nil, apierr.Internal("", err)
	}
	acct.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(dbc, acct); err != nil {
		return nil, apierr.Internal("Failed to update social account", err)
	}
	return s.viewOrInternal(acct)
}

func (s *socialAccountService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.repo.DeleteForUser(dbctx.Context{Ctx: ctx}, id, userID)
	if err != nil {
		return apierr.Internal("", err)
	}
	if !ok {
		return apierr.NotFound("Social account not found")
	}
	return nil
}

func (s *socialAccountService) check(in SocialAccountInput) error {
	if !in.TokenExpiresAt.After(s.now()) {
		return invalidFields(map[string]string{"token_expires_at": "must be in the future"})
	}
	return nil
}

func (s *socialAccountService) apply(acct *types.SocialAccount, in SocialAccountInput) error {
	access, err := s.cipher.Encrypt(strings.TrimSpace(in.AccessToken))
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	acct.Platform = string(in.Platform)
	acct.AccountName = blankToNil(in.AccountName)
	acct.AccessToken = access
	acct.RefreshToken = nil
	if rt := blankToNil(in.RefreshToken); rt != nil {
		sealed, err := s.cipher.Encrypt(*rt)
		if err != nil {
			return fmt.Errorf("encrypt refresh token: %w", err)
		}
		acct.RefreshToken = &sealed
	}
	acct.TokenExpiresAt = in.TokenExpiresAt.UTC()
	return nil
}

func (s *socialAccountService) view(acct *types.SocialAccount) (*SocialAccountView, error) {
	access, err := s.cipher.Decrypt(acct.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("decrypt access token for %s: %w", acct.ID, err)
	}
	v := &SocialAccountView{
		ID:             acct.ID,
		Platform:       acct.Platform,
		AccountName:    acct.AccountName,
		AccessToken:    MaskToken(access),
		TokenExpiresAt: acct.TokenExpiresAt,
		CreatedAt:      acct.CreatedAt,
		UpdatedAt:      acct.UpdatedAt,
	}
	if acct.RefreshToken != nil {
		refresh, err := s.cipher.Decrypt(*acct.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("decrypt refresh token for %s: %w", acct.ID, err)
		}
		v.RefreshToken = MaskToken(refresh)
	}
	return v, nil
}

func (s *socialAccountService) viewOrInternal(acct *types.SocialAccount) (*SocialAccountView, error) {
	v, err := s.view(acct)
	if err != nil {
		return nil, apierr.Internal("", err)
	}
	return v, nil
}
