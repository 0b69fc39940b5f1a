package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/data/repos"
	"github.com/yungbote/idea2sns-backend/internal/platform/apierr"
	"github.com/yungbote/idea2sns-backend/internal/platform/dbctx"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type HistoryQuery struct {
	Source      string
	VariantType string
	ParentID    *uuid.UUID
	Limit       int
	Offset      int
}

type HistoryPage struct {
	Items  []*types.GenerationRecord `json:"items"`
	Total  int64                     `json:"total"`
	Limit  int                       `json:"limit"`
	Offset int                       `json:"offset"`
}

type HistoryService interface {
	List(ctx context.Context, userID uuid.UUID, q HistoryQuery) (*HistoryPage, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*types.GenerationRecord, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type historyService struct {
	log            *logger.Logger
	generationRepo repos.GenerationRepo
}

func NewHistoryService(log *logger.Logger, generationRepo repos.GenerationRepo) HistoryService {
	return &historyService{
		log:            log.With("service", "HistoryService"),
		generationRepo: generationRepo,
	}
}

func (s *historyService) List(ctx context.Context, userID uuid.UUID, q HistoryQuery) (*HistoryPage, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	items, total, err := s.generationRepo.ListForUser(dbctx.Context{Ctx: ctx}, userID, repos.GenerationListFilter{
		Source:      q.Source,
		VariantType: q.VariantType,
		ParentID:    q.ParentID,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return nil, apierr.Internal("", err)
	}
	if items == nil {
		items = []*types.GenerationRecord{}
	}
	return &HistoryPage{Items: items, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

func (s *historyService) Get(ctx context.Context, userID, id uuid.UUID) (*types.GenerationRecord, error) {
	rec, err := s.generationRepo.GetByIDForUser(dbctx.Context{Ctx: ctx}, id, userID)
	if err != nil {
		return nil, apierr.Internal("", err)
	}
	if rec == nil {
		return nil, apierr.NotFound("Generation not found")
	}
	return rec, nil
}

func (s *historyService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.generationRepo.SoftDeleteForUser(dbctx.Context{Ctx: ctx}, id, userID)
	if err != nil {
		return apierr.Internal("", err)
	}
	if !ok {
		return apierr.NotFound("Generation not found")
	}
	s.log.Info("generation deleted", "user_id", userID.String(), "generation_id", id.String())
	return nil
}
