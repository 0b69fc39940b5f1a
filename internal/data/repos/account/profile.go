package account

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/platform/dbctx"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type ProfileRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error)
	SetPlan(dbc dbctx.Context, userID uuid.UUID, plan types.Plan) (*types.Profile, error)
	SetLimits(dbc dbctx.Context, userID uuid.UUID, overrides datatypes.JSON) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

// GetByUserID returns nil, nil when the user has no profile row yet.
func (r *profileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	var p types.Profile
	err := dbc.Conn(r.db).Where("user_id = ?", userID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) SetPlan(dbc dbctx.Context, userID uuid.UUID, plan types.Plan) (*types.Profile, error) {
	p := &types.Profile{UserID: userID, Plan: string(plan)}
	err := dbc.Conn(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"plan", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(dbc, userID)
}

func (r *profileRepo) SetLimits(dbc dbctx.Context, userID uuid.UUID, overrides datatypes.JSON) error {
	p := &types.Profile{UserID: userID, Plan: string(types.PlanFree), Limits: overrides}
	return dbc.Conn(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"limits", "updated_at"}),
	}).Create(p).Error
}
