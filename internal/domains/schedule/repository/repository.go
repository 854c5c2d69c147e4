package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"classbook/infras/otel"
	"classbook/infras/postgres"
	"classbook/internal/domains/schedule/model"
	gDto "classbook/shared/dto"
	"classbook/shared/failure"
	gRepo "classbook/shared/repository"
)

type Schedule interface {
	Insert(ctx context.Context, model model.ScheduleEntry) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.ScheduleEntry, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.ScheduleEntry, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.ScheduleEntry]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Schedule {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.ScheduleEntry](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// Insert stores an entry, translating the room-overlap exclusion constraint
// into the conflict failure the approval path already handles.
func (repo *repositoryImpl) Insert(ctx context.Context, entry model.ScheduleEntry) error {
	err := repo.Repository.Insert(ctx, entry)
	if err == nil {
		return nil
	}

	if gRepo.IsExclusionViolation(err) {
		return failure.Conflict("room is already booked for an overlapping confirmed slot")
	}

	return err
}
