package events

//go:generate go run go.uber.org/mock/mockgen -source=./events.go -destination=./mocks/events_mock.go -package=mocks

import (
	"context"

	"github.com/rs/zerolog/log"

	"hemobook/config"
	"hemobook/infras/kafka"
	"hemobook/infras/otel"
	"hemobook/shared/constant"
)

// UnitsCollectedEvent is handed off to the inventory collaborator after a
// completed donation, or after a complication whose yield is still usable.
type UnitsCollectedEvent struct {
	DonationEventID string  `json:"donation_event_id"`
	DonorID         string  `json:"donor_id"`
	BloodGroupID    string  `json:"blood_group_id"`
	ComponentTypeID string  `json:"component_type_id"`
	QuantityDonated float64 `json:"quantity_donated"`
	QuantityUnits   int     `json:"quantity_units"`
}

// UrgentAssignmentEvent notifies connected staff clients of a new urgent
// staff assignment. Delivery is best effort.
type UrgentAssignmentEvent struct {
	AppointmentRequestID string `json:"appointment_request_id"`
	DonorID              string `json:"donor_id"`
	LocationID           string `json:"location_id"`
	BloodRequestID       string `json:"blood_request_id"`
	Priority             int    `json:"priority"`
}

// BloodRequestStatusEvent announces a blood request status rollup.
type BloodRequestStatusEvent struct {
	BloodRequestID string `json:"blood_request_id"`
	Status         string `json:"status"`
	Note           string `json:"note"`
}

type Publisher interface {
	UnitsCollected(ctx context.Context, event UnitsCollectedEvent)
	UrgentAssignment(ctx context.Context, event UrgentAssignmentEvent)
	BloodRequestStatusChanged(ctx context.Context, event BloodRequestStatusEvent)
}

type publisherImpl struct {
	client kafka.Client
	cfg    *config.Config
	otel   otel.Otel
}

func NewPublisher(client kafka.Client, cfg *config.Config, ot otel.Otel) Publisher {
	return &publisherImpl{
		client: client,
		cfg:    cfg,
		otel:   ot,
	}
}

func (p *publisherImpl) UnitsCollected(ctx context.Context, event UnitsCollectedEvent) {
	p.send(ctx, p.cfg.Kafka.Topics.UnitsCollected, event.DonationEventID, event)
}

func (p *publisherImpl) UrgentAssignment(ctx context.Context, event UrgentAssignmentEvent) {
	p.send(ctx, p.cfg.Kafka.Topics.UrgentAssignment, event.AppointmentRequestID, event)
}

func (p *publisherImpl) BloodRequestStatusChanged(ctx context.Context, event BloodRequestStatusEvent) {
	p.send(ctx, p.cfg.Kafka.Topics.BloodRequestStatus, event.BloodRequestID, event)
}

// send publishes fire-and-forget; the engine never depends on delivery.
func (p *publisherImpl) send(ctx context.Context, topic, key string, value any) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".send")
	defer scope.End()

	scope.SetAttribute("topic", topic)

	err := p.client.SendMessages(ctx, topic, kafka.Message{Key: key, Value: value})
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Str("key", key).Msg("failed to publish event")
		scope.TraceError(err)
	}
}
