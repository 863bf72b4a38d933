package audit

import (
	"context"

	id "skillmint/pkg/domain"
)

type Store interface {
	Append(ctx context.Context, event Event) error
	ListByParticipant(ctx context.Context, participant id.ParticipantID) ([]Event, error)
}
