package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roamnest/roamnest-core/internal/domain"
)

// Authorizer decides a permission request, standing in for the platform's
// user prompt. The default grants full authorization.
type Authorizer func(ctx context.Context, opts domain.AuthorizationOptions) (domain.AuthorizationStatus, error)

// LocalGateway is an in-process notification subsystem: it holds pending
// requests on timers, collects delivered notifications, tracks the badge
// counter, and hands fired notifications to the host over a channel.
// Scheduling with an identifier that is already pending or delivered replaces
// the earlier notification.
type LocalGateway struct {
	mu        sync.Mutex
	status    domain.AuthorizationStatus
	pending   map[string]*pendingEntry
	delivered map[string]domain.DeliveredNotification
	badge     int
	closed    bool

	authorize  Authorizer
	deliveries chan domain.DeliveredNotification
	now        func() time.Time
}

type pendingEntry struct {
	req   domain.NotificationRequest
	timer *time.Timer
}

type GatewayOption func(*LocalGateway)

// WithAuthorizer replaces the default always-grant permission decision.
func WithAuthorizer(a Authorizer) GatewayOption {
	return func(g *LocalGateway) {
		g.authorize = a
	}
}

func NewLocalGateway(opts ...GatewayOption) *LocalGateway {
	g := &LocalGateway{
		status:    domain.AuthorizationNotDetermined,
		pending:   make(map[string]*pendingEntry),
		delivered: make(map[string]domain.DeliveredNotification),
		authorize: func(context.Context, domain.AuthorizationOptions) (domain.AuthorizationStatus, error) {
			return domain.AuthorizationAuthorized, nil
		},
		deliveries: make(chan domain.DeliveredNotification, 64),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Deliveries exposes fired notifications for host integrations. Slow readers
// lose deliveries instead of blocking timers.
func (g *LocalGateway) Deliveries() <-chan domain.DeliveredNotification {
	return g.deliveries
}

func (g *LocalGateway) AuthorizationStatus(ctx context.Context) (domain.AuthorizationStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status, nil
}

// RequestAuthorization returns the already-decided status immediately, or
// consults the authorizer once and records its decision.
func (g *LocalGateway) RequestAuthorization(ctx context.Context, opts domain.AuthorizationOptions) (domain.AuthorizationStatus, error) {
	g.mu.Lock()
	if g.status != domain.AuthorizationNotDetermined {
		status := g.status
		g.mu.Unlock()
		return status, nil
	}
	g.mu.Unlock()

	status, err := g.authorize(ctx, opts)
	if err != nil {
		return domain.AuthorizationNotDetermined, err
	}

	g.mu.Lock()
	g.status = status
	g.mu.Unlock()
	return status, nil
}

func (g *LocalGateway) Schedule(ctx context.Context, req domain.NotificationRequest) error {
	if req.ID == "" {
		return errors.New("notify: request needs an identifier")
	}

	delay := req.Trigger.Delay
	if req.Trigger.At != nil {
		delay = req.Trigger.At.Sub(g.now())
	}
	if delay < 0 {
		delay = 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return errors.New("notify: gateway closed")
	}

	if prev, ok := g.pending[req.ID]; ok {
		prev.timer.Stop()
	}
	delete(g.delivered, req.ID)

	entry := &pendingEntry{req: req}
	entry.timer = time.AfterFunc(delay, func() {
		g.deliver(req.ID, entry)
	})
	g.pending[req.ID] = entry
	return nil
}

// deliver moves a fired entry from pending to delivered. The entry pointer
// guards against a timer firing for a request that was since replaced.
func (g *LocalGateway) deliver(id string, entry *pendingEntry) {
	g.mu.Lock()
	current, ok := g.pending[id]
	if !ok || current != entry || g.closed {
		g.mu.Unlock()
		return
	}
	delete(g.pending, id)

	delivered := domain.DeliveredNotification{
		NotificationRequest: entry.req,
		DeliveredAt:         g.now(),
	}
	g.delivered[id] = delivered
	g.badge += entry.req.BadgeDelta
	g.mu.Unlock()

	select {
	case g.deliveries <- delivered:
	default:
	}
}

func (g *LocalGateway) Pending(ctx context.Context) ([]domain.NotificationRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]domain.NotificationRequest, 0, len(g.pending))
	for _, entry := range g.pending {
		out = append(out, entry.req)
	}
	return out, nil
}

func (g *LocalGateway) RemovePending(ctx context.Context, ids ...string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, id := range ids {
		if entry, ok := g.pending[id]; ok {
			entry.timer.Stop()
			delete(g.pending, id)
		}
	}
	return nil
}

func (g *LocalGateway) RemoveAllPending(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for id, entry := range g.pending {
		entry.timer.Stop()
		delete(g.pending, id)
	}
	return nil
}

func (g *LocalGateway) RemoveAllDelivered(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.delivered = make(map[string]domain.DeliveredNotification)
	return nil
}

func (g *LocalGateway) SetBadgeCount(ctx context.Context, count int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.badge = count
	return nil
}

// BadgeCount reads the current badge value, mainly for host integrations and
// the status endpoint.
func (g *LocalGateway) BadgeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.badge
}

// Close stops every pending timer. Delivered notifications already sent on
// the channel stay readable.
func (g *LocalGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true
	for id, entry := range g.pending {
		entry.timer.Stop()
		delete(g.pending, id)
	}
	return nil
}
