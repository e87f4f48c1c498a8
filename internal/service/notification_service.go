package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/roamnest/roamnest-core/internal/domain"
	"github.com/roamnest/roamnest-core/internal/repository/ports"
)

const (
	nearbyIdentifierPrefix       = "nearby-"
	tripReminderIdentifierPrefix = "trip-reminder-"

	nearbyTitle       = "A place worth a detour"
	tripReminderTitle = "Your trip starts tomorrow"

	// Proximity alerts fire shortly after the location layer reports a hit so
	// rapid re-triggers for the same place collapse into one notification.
	nearbyTriggerDelay = time.Second
)

// NotificationState is the scheduler state observed by UI consumers.
type NotificationState struct {
	Enabled             bool                       `json:"enabled"`
	AuthorizationStatus domain.AuthorizationStatus `json:"authorization_status"`
}

// NotificationService wraps the notification gateway with domain scheduling:
// proximity alerts and trip reminders, identifier-based replacement, and
// enablement gating. All state mutations funnel through one loop goroutine so
// observers always read consistent snapshots.
type NotificationService struct {
	gateway ports.NotificationGateway
	now     func() time.Time

	updates chan domain.AuthorizationStatus
	reads   chan chan NotificationState
	joins   chan chan NotificationState
	done    chan struct{}
}

func NewNotificationService(gateway ports.NotificationGateway) *NotificationService {
	s := &NotificationService{
		gateway: gateway,
		now:     time.Now,
		updates: make(chan domain.AuthorizationStatus),
		reads:   make(chan chan NotificationState),
		joins:   make(chan chan NotificationState),
		done:    make(chan struct{}),
	}
	go s.loop()
	return s
}

// loop is the single writer for observable state.
func (s *NotificationService) loop() {
	state := NotificationState{AuthorizationStatus: domain.AuthorizationNotDetermined}
	var subscribers []chan NotificationState

	for {
		select {
		case status := <-s.updates:
			state.AuthorizationStatus = status
			state.Enabled = status.Granted()
			for _, sub := range subscribers {
				select {
				case sub <- state:
				default:
				}
			}
		case reply := <-s.reads:
			reply <- state
		case sub := <-s.joins:
			subscribers = append(subscribers, sub)
			select {
			case sub <- state:
			default:
			}
		case <-s.done:
			return
		}
	}
}

// Close stops the state loop. Scheduling calls after Close are still valid;
// only state observation shuts down.
func (s *NotificationService) Close() {
	close(s.done)
}

func (s *NotificationService) applyStatus(status domain.AuthorizationStatus) {
	select {
	case s.updates <- status:
	case <-s.done:
	}
}

func (s *NotificationService) snapshot() NotificationState {
	reply := make(chan NotificationState, 1)
	select {
	case s.reads <- reply:
		return <-reply
	case <-s.done:
		return NotificationState{AuthorizationStatus: domain.AuthorizationNotDetermined}
	}
}

// State returns the current observable state.
func (s *NotificationService) State() NotificationState {
	return s.snapshot()
}

func (s *NotificationService) Enabled() bool {
	return s.snapshot().Enabled
}

func (s *NotificationService) AuthorizationStatus() domain.AuthorizationStatus {
	return s.snapshot().AuthorizationStatus
}

// Subscribe registers an observer of state snapshots. The channel receives
// the current state immediately and then every change; slow consumers miss
// intermediate snapshots rather than blocking the loop.
func (s *NotificationService) Subscribe() <-chan NotificationState {
	sub := make(chan NotificationState, 1)
	select {
	case s.joins <- sub:
	case <-s.done:
		close(sub)
	}
	return sub
}

// RequestAuthorization asks the user for alert, sound and badge permission.
// It blocks until the gateway reports a decision. On success both state
// fields are updated through the loop; on failure the error is logged and
// state stays untouched.
func (s *NotificationService) RequestAuthorization(ctx context.Context) bool {
	status, err := s.gateway.RequestAuthorization(ctx, domain.AuthorizationOptions{
		Alert: true,
		Sound: true,
		Badge: true,
	})
	if err != nil {
		log.Printf("notifications: authorization request failed: %v", err)
		return false
	}
	s.applyStatus(status)
	return status.Granted()
}

// CheckAuthorizationStatus refreshes the observable state from the gateway.
// Fire-and-forget: the caller does not block on the query.
func (s *NotificationService) CheckAuthorizationStatus(ctx context.Context) {
	go func() {
		status, err := s.gateway.AuthorizationStatus(ctx)
		if err != nil {
			log.Printf("notifications: status check failed: %v", err)
			return
		}
		s.applyStatus(status)
	}()
}

// ScheduleNearbyPlace schedules a proximity alert for a place the user is
// close to. No-op while notifications are disabled. Scheduling again for the
// same place replaces the earlier notification, so repeated proximity hits
// end up as one alert carrying the latest distance.
func (s *NotificationService) ScheduleNearbyPlace(ctx context.Context, place domain.Place, distanceMeters float64) {
	if !s.Enabled() {
		return
	}

	req := domain.NotificationRequest{
		ID:         nearbyIdentifierPrefix + strconv.FormatInt(int64(place.ID), 10),
		Title:      nearbyTitle,
		Body:       fmt.Sprintf("%s is only %dm away. Tap to explore!", place.Name, int64(distanceMeters)),
		Sound:      true,
		BadgeDelta: 1,
		Payload:    map[string]string{"place_id": strconv.FormatInt(int64(place.ID), 10)},
		Trigger:    domain.NotificationTrigger{Delay: nearbyTriggerDelay},
	}
	if err := s.gateway.Schedule(ctx, req); err != nil {
		log.Printf("notifications: schedule nearby %s: %v", req.ID, err)
	}
}

// ScheduleTripReminder schedules a reminder one calendar day before the trip
// starts. No-op while disabled, and no-op when the reminder moment is not
// strictly in the future (a trip starting tomorrow reminds today, which may
// already have passed).
func (s *NotificationService) ScheduleTripReminder(ctx context.Context, trip domain.Trip) {
	if !s.Enabled() {
		return
	}

	reminderAt := trip.StartDate.AddDate(0, 0, -1)
	if !reminderAt.After(s.now()) {
		return
	}
	// Calendar triggers carry minute precision, matching platform behavior.
	reminderAt = reminderAt.Truncate(time.Minute)

	req := domain.NotificationRequest{
		ID:      tripReminderIdentifierPrefix + trip.ID.String(),
		Title:   tripReminderTitle,
		Body:    fmt.Sprintf("Pack your bags! Your trip to %s starts tomorrow.", trip.Destination),
		Sound:   true,
		Payload: map[string]string{"trip_id": trip.ID.String()},
		Trigger: domain.NotificationTrigger{At: &reminderAt},
	}
	if err := s.gateway.Schedule(ctx, req); err != nil {
		log.Printf("notifications: schedule trip reminder %s: %v", req.ID, err)
	}
}

// Pending lists notifications scheduled but not yet fired.
func (s *NotificationService) Pending(ctx context.Context) ([]domain.NotificationRequest, error) {
	return s.gateway.Pending(ctx)
}

// CancelTripReminder removes a pending reminder, typically after the trip is
// deleted.
func (s *NotificationService) CancelTripReminder(ctx context.Context, trip domain.Trip) {
	if err := s.gateway.RemovePending(ctx, tripReminderIdentifierPrefix+trip.ID.String()); err != nil {
		log.Printf("notifications: cancel trip reminder: %v", err)
	}
}

// ClearAll cancels every pending notification and removes every delivered
// one. Global and unscoped.
func (s *NotificationService) ClearAll(ctx context.Context) {
	if err := s.gateway.RemoveAllPending(ctx); err != nil {
		log.Printf("notifications: clear pending: %v", err)
	}
	if err := s.gateway.RemoveAllDelivered(ctx); err != nil {
		log.Printf("notifications: clear delivered: %v", err)
	}
}

// ClearBadge resets the application badge counter to zero.
func (s *NotificationService) ClearBadge(ctx context.Context) {
	if err := s.gateway.SetBadgeCount(ctx, 0); err != nil {
		log.Printf("notifications: clear badge: %v", err)
	}
}
