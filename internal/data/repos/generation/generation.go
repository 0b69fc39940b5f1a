package generation

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/platform/dbctx"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

// ListFilter narrows a history query. Zero values mean "any".
type ListFilter struct {
	Source      string
	VariantType string
	ParentID    *uuid.UUID
	Limit       int
	Offset      int
}

type GenerationRepo interface {
	Create(dbc dbctx.Context, rec *types.GenerationRecord) error
	GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.GenerationRecord, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID, filter ListFilter) ([]*types.GenerationRecord, int64, error)
	SoftDeleteForUser(dbc dbctx.Context, id, userID uuid.UUID) (bool, error)
}

type generationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRepo {
	repoLog := baseLog.With("repo", "GenerationRepo")
	return &generationRepo{db: db, log: repoLog}
}

func (r *generationRepo) Create(dbc dbctx.Context, rec *types.GenerationRecord) error {
	if rec == nil {
		return errors.New("nil generation record")
	}
	return dbc.Conn(r.db).Create(rec).Error
}

// GetByIDForUser returns nil, nil when the row is missing, deleted, or owned by someone else.
func (r *generationRepo) GetByIDForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.GenerationRecord, error) {
	var rec types.GenerationRecord
	err := dbc.Conn(r.db).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *generationRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID, filter ListFilter) ([]*types.GenerationRecord, int64, error) {
	q := dbc.Conn(r.db).Model(&types.GenerationRecord{}).Where("user_id = ?", userID)
	if filter.Source != "" {
		q = q.Where("source = ?", filter.Source)
	}
	if filter.VariantType != "" {
		q = q.Where("variant_type = ?", filter.VariantType)
	}
	if filter.ParentID != nil {
		q = q.Where("parent_generation_id = ?", *filter.ParentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var results []*types.GenerationRecord
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *generationRepo) SoftDeleteForUser(dbc dbctx.Context, id, userID uuid.UUID) (bool, error) {
	res := dbc.Conn(r.db).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.GenerationRecord{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
