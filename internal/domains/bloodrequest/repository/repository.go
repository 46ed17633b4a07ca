package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"hemobook/infras/otel"
	"hemobook/infras/postgres"
	"hemobook/internal/domains/bloodrequest/model"
	gDto "hemobook/shared/dto"
	gRepo "hemobook/shared/repository"
)

type BloodRequest interface {
	Insert(ctx context.Context, model model.BloodRequest) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.BloodRequest, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.BloodRequest, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.BloodRequest]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) BloodRequest {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.BloodRequest](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
