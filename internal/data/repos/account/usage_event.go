package account

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/platform/dbctx"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type UsageEventRepo interface {
	Create(dbc dbctx.Context, ev *types.UsageEvent) error
	// CountBetween counts events in [from, to). kinds narrows the count when non-empty.
	CountBetween(dbc dbctx.Context, userID uuid.UUID, from, to time.Time, kinds ...types.UsageKind) (int64, error)
}

type usageEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUsageEventRepo(db *gorm.DB, baseLog *logger.Logger) UsageEventRepo {
	repoLog := baseLog.With("repo", "UsageEventRepo")
	return &usageEventRepo{db: db, log: repoLog}
}

func (r *usageEventRepo) Create(dbc dbctx.Context, ev *types.UsageEvent) error {
	return dbc.Conn(r.db).Create(ev).Error
}

func (r *usageEventRepo) CountBetween(dbc dbctx.Context, userID uuid.UUID, from, to time.Time, kinds ...types.UsageKind) (int64, error) {
	q := dbc.Conn(r.db).Model(&types.UsageEvent{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from.UTC(), to.UTC())
	if len(kinds) > 0 {
		names := make([]string, 0, len(kinds))
		for _, k := range kinds {
			names = append(names, string(k))
		}
		q = q.Where("kind IN ?", names)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
