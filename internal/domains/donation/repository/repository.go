package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"hemobook/infras/otel"
	"hemobook/infras/postgres"
	appointmentModel "hemobook/internal/domains/appointment/model"
	"hemobook/internal/domains/donation/model"
	"hemobook/shared/constant"
	gDto "hemobook/shared/dto"
	gRepo "hemobook/shared/repository"
)

type Donation interface {
	Insert(ctx context.Context, model model.DonationEvent) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.DonationEvent, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.DonationEvent, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateWithAppointment(ctx context.Context, eventReq map[string]any, eventFilter gDto.FilterGroup, appointmentReq map[string]any, appointmentFilter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.DonationEvent]
	appointments gRepo.Repository[appointmentModel.AppointmentRequest]
	db           *postgres.Connection
	otel         otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Donation {
	return &repositoryImpl{
		Repository:   gRepo.NewRepository[model.DonationEvent](model.EntityName, model.TableName, model.FieldID, db, otel),
		appointments: gRepo.NewRepository[appointmentModel.AppointmentRequest](appointmentModel.EntityName, appointmentModel.TableName, appointmentModel.FieldID, db, otel),
		db:           db,
		otel:         otel,
	}
}

// UpdateWithAppointment applies an event update and its parent appointment
// update in one transaction. Terminal workflow steps use it so a reader can
// never observe the event closed while the appointment is still open.
func (r *repositoryImpl) UpdateWithAppointment(ctx context.Context, eventReq map[string]any, eventFilter gDto.FilterGroup, appointmentReq map[string]any, appointmentFilter gDto.FilterGroup) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".DonationEvent.UpdateWithAppointment")
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

	if err = r.UpdateTx(ctx, tx, eventReq, eventFilter); err != nil {
		return fmt.Errorf("failed to update donation event: %w", err)
	}

	if err = r.appointments.UpdateTx(ctx, tx, appointmentReq, appointmentFilter); err != nil {
		return fmt.Errorf("failed to update appointment request: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
