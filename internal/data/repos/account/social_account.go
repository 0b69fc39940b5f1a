package account

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/platform/dbctx"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type SocialAccountRepo interface {
	Create(dbc dbctx.Context, acct *types.SocialAccount) error
	GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.SocialAccount, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.SocialAccount, error)
	Update(dbc dbctx.Context, acct *types.SocialAccount) error
	DeleteForUser(dbc dbctx.Context, id, userID uuid.UUID) (bool, error)
}

type socialAccountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSocialAccountRepo(db *gorm.DB, baseLog *logger.Logger) SocialAccountRepo {
	repoLog := baseLog.With("repo", "SocialAccountRepo")
	return &socialAccountRepo{db: db, log: repoLog}
}

func (r *socialAccountRepo) Create(dbc dbctx.Context, acct *types.SocialAccount) error {
	return dbc.Conn(r.db).Create(acct).Error
}

func (r *socialAccountRepo) GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.SocialAccount, error) {
	var acct types.SocialAccount
	err := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).Take(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *socialAccountRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.SocialAccount, error) {
	var results []*types.SocialAccount
	if err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *socialAccountRepo) Update(dbc dbctx.Context, acct *types.SocialAccount) error {
	return dbc.Conn(r.db).
		Model(acct).
		Select("platform", "account_name", "access_token", "refresh_token", "token_expires_at", "updated_at").
		Updates(acct).Error
}

// DeleteForUser hard-deletes; credentials are not kept after disconnect.
func (r *socialAccountRepo) DeleteForUser(dbc dbctx.Context, id, userID uuid.UUID) (bool, error) {
	res := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&types.SocialAccount{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
