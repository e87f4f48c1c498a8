package ports

import (
	"context"

	"github.com/roamnest/roamnest-core/internal/domain"
)

// NotificationGateway abstracts the platform's local-notification subsystem:
// permission handling, scheduling with identifier-replacement semantics, and
// pending/delivered bookkeeping plus the application badge counter.
type NotificationGateway interface {
	AuthorizationStatus(ctx context.Context) (domain.AuthorizationStatus, error)
	RequestAuthorization(ctx context.Context, opts domain.AuthorizationOptions) (domain.AuthorizationStatus, error)

	Schedule(ctx context.Context, req domain.NotificationRequest) error
	Pending(ctx context.Context) ([]domain.NotificationRequest, error)
	RemovePending(ctx context.Context, ids ...string) error
	RemoveAllPending(ctx context.Context) error
	RemoveAllDelivered(ctx context.Context) error

	SetBadgeCount(ctx context.Context, count int) error
}
