package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/roamnest/roamnest-core/internal/domain"
)

type fakeGateway struct {
	mu sync.Mutex

	status     domain.AuthorizationStatus
	requestErr error
	statusErr  error

	scheduled   []domain.NotificationRequest
	scheduleErr error

	removedPending   []string
	clearedPending   bool
	clearedDelivered bool
	badge            int
}

func newFakeGateway(status domain.AuthorizationStatus) *fakeGateway {
	return &fakeGateway{status: status, badge: -1}
}

func (f *fakeGateway) AuthorizationStatus(context.Context) (domain.AuthorizationStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return domain.AuthorizationNotDetermined, f.statusErr
	}
	return f.status, nil
}

func (f *fakeGateway) RequestAuthorization(context.Context, domain.AuthorizationOptions) (domain.AuthorizationStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requestErr != nil {
		return domain.AuthorizationNotDetermined, f.requestErr
	}
	return f.status, nil
}

func (f *fakeGateway) Schedule(_ context.Context, req domain.NotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scheduleErr != nil {
		return f.scheduleErr
	}
	f.scheduled = append(f.scheduled, req)
	return nil
}

func (f *fakeGateway) Pending(context.Context) ([]domain.NotificationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.NotificationRequest(nil), f.scheduled...), nil
}

func (f *fakeGateway) RemovePending(_ context.Context, ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removedPending = append(f.removedPending, ids...)
	return nil
}

func (f *fakeGateway) RemoveAllPending(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearedPending = true
	return nil
}

func (f *fakeGateway) RemoveAllDelivered(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearedDelivered = true
	return nil
}

func (f *fakeGateway) SetBadgeCount(_ context.Context, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.badge = count
	return nil
}

func (f *fakeGateway) scheduledCopy() []domain.NotificationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.NotificationRequest(nil), f.scheduled...)
}

func enabledService(t *testing.T, gateway *fakeGateway) *NotificationService {
	t.Helper()
	svc := NewNotificationService(gateway)
	t.Cleanup(svc.Close)
	if !svc.RequestAuthorization(context.Background()) {
		t.Fatal("expected authorization to be granted")
	}
	return svc
}

func TestSchedulingNoopsWhileDisabled(t *testing.T) {
	gateway := newFakeGateway(domain.AuthorizationAuthorized)
	svc := NewNotificationService(gateway)
	defer svc.Close()

	svc.ScheduleNearbyPlace(context.Background(), domain.Place{ID: 1, Name: "Alcázar"}, 120)
	svc.ScheduleTripReminder(context.Background(), domain.Trip{
		ID:        uuid.New(),
		StartDate: time.Now().AddDate(0, 0, 30),
	})

	if calls := gateway.scheduledCopy(); len(calls) != 0 {
		t.Fatalf("expected no gateway calls while disabled, got %d", len(calls))
	}
}

func TestRequestAuthorizationUpdatesState(t *testing.T) {
	gateway := newFakeGateway(domain.AuthorizationAuthorized)
	svc := NewNotificationService(gateway)
	defer svc.Close()

	if svc.Enabled() {
		t.Fatal("expected service to start disabled")
	}
	if !svc.RequestAuthorization(context.Background()) {
		t.Fatal("expected grant")
	}

	state := svc.State()
	if !state.Enabled || state.AuthorizationStatus != domain.AuthorizationAuthorized {
		t.Fatalf("unexpected state after grant: %+v", state)
	}
}

func TestRequestAuthorizationFailureLeavesState(t *testing.T) {
	gateway := newFakeGateway(domain.AuthorizationAuthorized)
	gateway.requestErr = errors.New("platform unavailable")
	svc := NewNotificationService(gateway)
	defer svc.Close()

	if svc.RequestAuthorization(context.Background()) {
		t.Fatal("expected failure to report false")
	}
	state := svc.State()
	if state.Enabled || state.AuthorizationStatus != domain.AuthorizationNotDetermined {
		t.Fatalf("expected untouched state, got %+v", state)
	}
}

func TestRequestAuthorizationDenied(t *testing.T) {
	gateway := newFakeGateway(domain.AuthorizationDenied)
	svc := NewNotificationService(gateway)
	defer svc.Close()

	if svc.RequestAuthorization(context.Background()) {
		t.Fatal("expected denial to report false")
	}
	state := svc.State()
	if state.Enabled {
		t.Fatal("expected service to stay disabled after denial")
	}
	if state.AuthorizationStatus != domain.AuthorizationDenied {
		t.Fatalf("expected denied status recorded, got %q", state.AuthorizationStatus)
	}
}

func TestScheduleNearbyPlaceRequest(t *testing.T) {
	gateway := newFakeGateway(domain.AuthorizationAuthorized)
	svc := enabledService(t, gateway)

	place := domain.Place{ID: 77, Name: "Mirador de San Nicolás"}
	svc.ScheduleNearbyPlace(context.Background(), place, 249.7)

	calls := gateway.scheduledCopy()
	if len(calls) != 1 {
		t.Fatalf("expected one schedule call, got %d", len(calls))
	}
	req := calls[0]
	if req.ID != "nearby-77" {
		t.Fatalf("expected identifier nearby-77, got %q", req.ID)
	}
	if !strings.Contains(req.Body, "249m") {
		t.Fatalf("expected truncated distance in body, got %q", req.Body)
	}
	if !strings.Contains(req.Body, place.Name) {
		t.Fatalf("expected place name in body, got %q", req.Body)
	}
	if req.BadgeDelta != 1 || !req.Sound {
		t.Fatalf("expected badge increment and default sound, got %+v", req)
	}
	if req.Payload["place_id"] != "77" {
		t.Fatalf("expected place payload, got %v", req.Payload)
	}
	if req.Trigger.Delay != time.Second || req.Trigger.At != nil {
		t.Fatalf("expected 1s delay trigger, got %+v", req.Trigger)
	}
}

func TestScheduleNearbyPlaceReplacesSameIdentifier(t *testing.T) {
	gateway := newFakeGateway(domain.AuthorizationAuthorized)
	svc := enabledService(t, gateway)

	place := domain.Place{ID: 5, Name: "Ponte Vecchio"}
	svc.ScheduleNearbyPlace(context.Background(), place, 300)
	svc.ScheduleNearbyPlace(context.Background(), place, 80)

	calls := gateway.scheduledCopy()
	if len(calls) != 2 {
		t.Fatalf("expected two schedule calls, got %d", len(calls))
	}
	if calls[0].ID != calls[1].ID {
		t.Fatalf("expected identical identifiers, got %q and %q", calls[0].ID, calls[1].ID)
	}
	if !strings.Contains(calls[1].Body, "80m") {
		t.Fatalf("expected latest distance in body, got %q", calls[1].Body)
	}
}

func TestScheduleTripReminderTiming(t *testing.T) {
	now := time.Date(2026, time.August, 26, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		name      string
		startDate time.Time
		scheduled bool
	}{
		{"trip starts tomorrow, reminder already passed", now.AddDate(0, 0, 1).Add(-time.Hour), false},
		{"trip started yesterday", now.AddDate(0, 0, -1), false},
		{"reminder exactly now", now.AddDate(0, 0, 1), false},
		{"trip starts in a week", now.AddDate(0, 0, 7), true},
		{"reminder one minute from now", now.AddDate(0, 0, 1).Add(time.Minute), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := newFakeGateway(domain.AuthorizationAuthorized)
			svc := enabledService(t, gateway)
			svc.now = func() time.Time { return now }

			trip := domain.Trip{
				ID:          uuid.New(),
				Destination: "Reykjavík",
				StartDate:   tc.startDate,
				EndDate:     tc.startDate.AddDate(0, 0, 5),
			}
			svc.ScheduleTripReminder(context.Background(), trip)

			calls := gateway.scheduledCopy()
			if tc.scheduled && len(calls) != 1 {
				t.Fatalf("expected a reminder, got %d calls", len(calls))
			}
			if !tc.scheduled && len(calls) != 0 {
				t.Fatalf("expected no reminder, got %d calls", len(calls))
			}
			if !tc.scheduled {
				return
			}

			req := calls[0]
			if req.ID != "trip-reminder-"+trip.ID.String() {
				t.Fatalf("unexpected identifier %q", req.ID)
			}
			if req.Trigger.At == nil {
				t.Fatal("expected absolute trigger")
			}
			wantAt := tc.startDate.AddDate(0, 0, -1).Truncate(time.Minute)
			if !req.Trigger.At.Equal(wantAt) {
				t.Fatalf("expected trigger at %v, got %v", wantAt, *req.Trigger.At)
			}
			if !strings.Contains(req.Body, trip.Destination) {
				t.Fatalf("expected destination in body, got %q", req.Body)
			}
		})
	}
}

func TestClearAllAndBadge(t *testing.T) {
	gateway := newFakeGateway(domain.AuthorizationAuthorized)
	svc := enabledService(t, gateway)

	svc.ClearAll(context.Background())
	svc.ClearBadge(context.Background())

	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	if !gateway.clearedPending || !gateway.clearedDelivered {
		t.Fatal("expected pending and delivered notifications cleared")
	}
	if gateway.badge != 0 {
		t.Fatalf("expected badge reset to 0, got %d", gateway.badge)
	}
}

func TestCheckAuthorizationStatusAsync(t *testing.T) {
	gateway := newFakeGateway(domain.AuthorizationProvisional)
	svc := NewNotificationService(gateway)
	defer svc.Close()

	sub := svc.Subscribe()
	<-sub // initial snapshot

	svc.CheckAuthorizationStatus(context.Background())

	select {
	case state := <-sub:
		if state.AuthorizationStatus != domain.AuthorizationProvisional || !state.Enabled {
			t.Fatalf("unexpected state after check: %+v", state)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state update")
	}
}
