package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"hemobook/infras/otel"
	"hemobook/infras/postgres"
	"hemobook/internal/domains/appointment/model"
	donationModel "hemobook/internal/domains/donation/model"
	"hemobook/shared/constant"
	gDto "hemobook/shared/dto"
	gRepo "hemobook/shared/repository"
)

type Appointment interface {
	Insert(ctx context.Context, model model.AppointmentRequest) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.AppointmentRequest, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.AppointmentRequest, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateWithEvent(ctx context.Context, req map[string]any, filter gDto.FilterGroup, event donationModel.DonationEvent) error
}

type repositoryImpl struct {
	gRepo.Repository[model.AppointmentRequest]
	events gRepo.Repository[donationModel.DonationEvent]
	db     *postgres.Connection
	otel   otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Appointment {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.AppointmentRequest](model.EntityName, model.TableName, model.FieldID, db, otel),
		events:     gRepo.NewRepository[donationModel.DonationEvent](donationModel.EntityName, donationModel.TableName, donationModel.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// UpdateWithEvent updates the appointment and inserts its donation event in
// one transaction, so check-in never leaves an appointment without an event.
func (r *repositoryImpl) UpdateWithEvent(ctx context.Context, req map[string]any, filter gDto.FilterGroup, event donationModel.DonationEvent) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".AppointmentRequest.UpdateWithEvent")
	defer scope.End()
	defer scope.TraceIfError(err)

	tx, err := r.db.Write.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.UpdateTx(ctx, tx, req, filter); err != nil {
		return fmt.Errorf("failed to update appointment request: %w", err)
	}

	if err = r.events.InsertTx(ctx, tx, event); err != nil {
		return fmt.Errorf("failed to insert donation event: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
