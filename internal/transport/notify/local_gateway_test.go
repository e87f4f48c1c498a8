package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roamnest/roamnest-core/internal/domain"
)

func TestScheduleDeliversAndIncrementsBadge(t *testing.T) {
	gateway := NewLocalGateway()
	defer gateway.Close()

	req := domain.NotificationRequest{
		ID:         "nearby-1",
		Title:      "A place worth a detour",
		BadgeDelta: 1,
		Trigger:    domain.NotificationTrigger{Delay: 5 * time.Millisecond},
	}
	if err := gateway.Schedule(context.Background(), req); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	select {
	case delivered := <-gateway.Deliveries():
		if delivered.ID != "nearby-1" {
			t.Fatalf("unexpected delivery %q", delivered.ID)
		}
		if delivered.DeliveredAt.IsZero() {
			t.Fatal("expected delivery timestamp")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	if badge := gateway.BadgeCount(); badge != 1 {
		t.Fatalf("expected badge 1, got %d", badge)
	}
	pending, err := gateway.Pending(context.Background())
	if err != nil {
		t.Fatalf("Pending returned error: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending notifications after delivery, got %d", len(pending))
	}
}

func TestScheduleReplacesSameIdentifier(t *testing.T) {
	gateway := NewLocalGateway()
	defer gateway.Close()
	ctx := context.Background()

	first := domain.NotificationRequest{
		ID:      "nearby-9",
		Body:    "Sagrada Família is only 300m away. Tap to explore!",
		Trigger: domain.NotificationTrigger{Delay: time.Hour},
	}
	second := first
	second.Body = "Sagrada Família is only 80m away. Tap to explore!"

	if err := gateway.Schedule(ctx, first); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if err := gateway.Schedule(ctx, second); err != nil {
		t.Fatalf("second Schedule returned error: %v", err)
	}

	pending, err := gateway.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending returned error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected exactly one pending notification, got %d", len(pending))
	}
	if pending[0].Body != second.Body {
		t.Fatalf("expected latest content to win, got %q", pending[0].Body)
	}
}

func TestScheduleRequiresIdentifier(t *testing.T) {
	gateway := NewLocalGateway()
	defer gateway.Close()

	err := gateway.Schedule(context.Background(), domain.NotificationRequest{})
	if err == nil {
		t.Fatal("expected error for missing identifier")
	}
}

func TestRemovePendingStopsTimer(t *testing.T) {
	gateway := NewLocalGateway()
	defer gateway.Close()
	ctx := context.Background()

	req := domain.NotificationRequest{
		ID:      "trip-reminder-x",
		Trigger: domain.NotificationTrigger{Delay: 10 * time.Millisecond},
	}
	if err := gateway.Schedule(ctx, req); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if err := gateway.RemovePending(ctx, req.ID); err != nil {
		t.Fatalf("RemovePending returned error: %v", err)
	}

	select {
	case delivered := <-gateway.Deliveries():
		t.Fatalf("expected no delivery after removal, got %q", delivered.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRemoveAllPending(t *testing.T) {
	gateway := NewLocalGateway()
	defer gateway.Close()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		req := domain.NotificationRequest{ID: id, Trigger: domain.NotificationTrigger{Delay: time.Hour}}
		if err := gateway.Schedule(ctx, req); err != nil {
			t.Fatalf("Schedule %q returned error: %v", id, err)
		}
	}
	if err := gateway.RemoveAllPending(ctx); err != nil {
		t.Fatalf("RemoveAllPending returned error: %v", err)
	}

	pending, err := gateway.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending returned error: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending notifications, got %d", len(pending))
	}
}

func TestAbsoluteTriggerInPastFiresImmediately(t *testing.T) {
	gateway := NewLocalGateway()
	defer gateway.Close()

	past := time.Now().Add(-time.Minute)
	req := domain.NotificationRequest{
		ID:      "trip-reminder-past",
		Trigger: domain.NotificationTrigger{At: &past},
	}
	if err := gateway.Schedule(context.Background(), req); err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}

	select {
	case delivered := <-gateway.Deliveries():
		if delivered.ID != req.ID {
			t.Fatalf("unexpected delivery %q", delivered.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for immediate delivery")
	}
}

func TestRequestAuthorizationDefaultGrant(t *testing.T) {
	gateway := NewLocalGateway()
	defer gateway.Close()
	ctx := context.Background()

	status, err := gateway.RequestAuthorization(ctx, domain.AuthorizationOptions{Alert: true})
	if err != nil {
		t.Fatalf("RequestAuthorization returned error: %v", err)
	}
	if status != domain.AuthorizationAuthorized {
		t.Fatalf("expected authorized, got %q", status)
	}

	got, err := gateway.AuthorizationStatus(ctx)
	if err != nil {
		t.Fatalf("AuthorizationStatus returned error: %v", err)
	}
	if got != domain.AuthorizationAuthorized {
		t.Fatalf("expected recorded status, got %q", got)
	}
}

func TestRequestAuthorizationCustomDenial(t *testing.T) {
	gateway := NewLocalGateway(WithAuthorizer(func(context.Context, domain.AuthorizationOptions) (domain.AuthorizationStatus, error) {
		return domain.AuthorizationDenied, nil
	}))
	defer gateway.Close()
	ctx := context.Background()

	status, err := gateway.RequestAuthorization(ctx, domain.AuthorizationOptions{})
	if err != nil {
		t.Fatalf("RequestAuthorization returned error: %v", err)
	}
	if status != domain.AuthorizationDenied {
		t.Fatalf("expected denied, got %q", status)
	}

	// A decided status is returned without consulting the authorizer again.
	status, err = gateway.RequestAuthorization(ctx, domain.AuthorizationOptions{})
	if err != nil {
		t.Fatalf("second RequestAuthorization returned error: %v", err)
	}
	if status != domain.AuthorizationDenied {
		t.Fatalf("expected sticky denial, got %q", status)
	}
}

func TestRequestAuthorizationError(t *testing.T) {
	wantErr := errors.New("prompt unavailable")
	gateway := NewLocalGateway(WithAuthorizer(func(context.Context, domain.AuthorizationOptions) (domain.AuthorizationStatus, error) {
		return domain.AuthorizationNotDetermined, wantErr
	}))
	defer gateway.Close()

	_, err := gateway.RequestAuthorization(context.Background(), domain.AuthorizationOptions{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected authorizer error, got %v", err)
	}

	status, err := gateway.AuthorizationStatus(context.Background())
	if err != nil {
		t.Fatalf("AuthorizationStatus returned error: %v", err)
	}
	if status != domain.AuthorizationNotDetermined {
		t.Fatalf("expected status to stay undetermined, got %q", status)
	}
}

func TestSetBadgeCount(t *testing.T) {
	gateway := NewLocalGateway()
	defer gateway.Close()

	if err := gateway.SetBadgeCount(context.Background(), 4); err != nil {
		t.Fatalf("SetBadgeCount returned error: %v", err)
	}
	if got := gateway.BadgeCount(); got != 4 {
		t.Fatalf("expected badge 4, got %d", got)
	}
	if err := gateway.SetBadgeCount(context.Background(), 0); err != nil {
		t.Fatalf("SetBadgeCount returned error: %v", err)
	}
	if got := gateway.BadgeCount(); got != 0 {
		t.Fatalf("expected badge 0, got %d", got)
	}
}
