package account

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/platform/dbctx"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type BrandVoiceRepo interface {
	Create(dbc dbctx.Context, bv *types.BrandVoice) error
	GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.BrandVoice, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.BrandVoice, error)
	SoftDeleteForUser(dbc dbctx.Context, id, userID uuid.UUID) (bool, error)
}

type brandVoiceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBrandVoiceRepo(db *gorm.DB, baseLog *logger.Logger) BrandVoiceRepo {
	repoLog := baseLog.With("repo", "BrandVoiceRepo")
	return &brandVoiceRepo{db: db, log: repoLog}
}

func (r *brandVoiceRepo) Create(dbc dbctx.Context, bv *types.BrandVoice) error {
	return dbc.Conn(r.db).Create(bv).Error
}

// GetByIDForUser returns nil, nil unless the voice exists and belongs to userID.
func (r *brandVoiceRepo) GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.BrandVoice, error) {
	var bv types.BrandVoice
	err := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).Take(&bv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bv, nil
}

func (r *brandVoiceRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.BrandVoice, error) {
	var results []*types.BrandVoice
	if err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *brandVoiceRepo) SoftDeleteForUser(dbc dbctx.Context, id, userID uuid.UUID) (bool, error) {
	res := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&types.BrandVoice{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
