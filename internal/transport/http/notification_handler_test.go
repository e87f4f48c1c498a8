package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-core/internal/domain"
	"github.com/roamnest/roamnest-core/internal/service"
	"github.com/roamnest/roamnest-core/internal/transport/notify"
)

func newNotificationAPI(t *testing.T) (*echo.Echo, *service.PreferenceService, *notify.LocalGateway) {
	t.Helper()
	prefs := service.NewPreferenceService(newMemorySettings())
	gateway := notify.NewLocalGateway()
	t.Cleanup(func() { gateway.Close() })
	notifications := service.NewNotificationService(gateway)
	t.Cleanup(notifications.Close)

	e := echo.New()
	RegisterNotifications(e, "", prefs, notifications)
	return e, prefs, gateway
}

func TestAuthorizationRequestEndpoint(t *testing.T) {
	e, _, _ := newNotificationAPI(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/notifications/authorization/request", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Granted bool `json:"granted"`
		Status  struct {
			Enabled             bool   `json:"enabled"`
			AuthorizationStatus string `json:"authorization_status"`
		} `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Granted {
		t.Fatal("default gateway must grant authorization")
	}
	if !resp.Status.Enabled {
		t.Fatal("granted authorization must enable notifications")
	}
	if resp.Status.AuthorizationStatus != string(domain.AuthorizationAuthorized) {
		t.Fatalf("unexpected status %q", resp.Status.AuthorizationStatus)
	}
}

func TestScheduleNearbyEndpoint(t *testing.T) {
	e, prefs, gateway := newNotificationAPI(t)
	ctx := context.Background()

	if err := prefs.SetProximityNotificationsEnabled(ctx, true); err != nil {
		t.Fatalf("enable proximity notifications: %v", err)
	}
	rec := doJSON(t, e, http.MethodPost, "/api/v1/notifications/authorization/request", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("authorize: expected 200, got %d", rec.Code)
	}

	body := `{"place":{"id":42,"name":"Park Güell","latitude":41.4,"longitude":2.15},"distance_meters":249.9}`
	rec = doJSON(t, e, http.MethodPost, "/api/v1/notifications/nearby", body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d (%s)", rec.Code, rec.Body.String())
	}

	pending, err := gateway.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending returned error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending notification, got %d", len(pending))
	}
	if pending[0].ID != "nearby-42" {
		t.Fatalf("unexpected identifier %q", pending[0].ID)
	}
}

func TestScheduleNearbySkippedWhenOptedOut(t *testing.T) {
	e, _, gateway := newNotificationAPI(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/notifications/authorization/request", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("authorize: expected 200, got %d", rec.Code)
	}

	// Proximity alerts are opt-in; without the preference nothing is scheduled.
	body := `{"place":{"id":7,"name":"Louvre"},"distance_meters":100}`
	rec = doJSON(t, e, http.MethodPost, "/api/v1/notifications/nearby", body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	pending, err := gateway.Pending(context.Background())
	if err != nil {
		t.Fatalf("Pending returned error: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending notifications, got %d", len(pending))
	}
}

func TestScheduleNearbyValidation(t *testing.T) {
	e, _, _ := newNotificationAPI(t)

	cases := []struct {
		name, body string
	}{
		{"missing place id", `{"place":{"name":"Louvre"},"distance_meters":10}`},
		{"missing name", `{"place":{"id":7},"distance_meters":10}`},
		{"negative distance", `{"place":{"id":7,"name":"Louvre"},"distance_meters":-1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/api/v1/notifications/nearby", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestTripReminderEndpointUnknownTrip(t *testing.T) {
	e, _, _ := newNotificationAPI(t)
	rec := doJSON(t, e, http.MethodPost, "/api/v1/notifications/trips/6f1e1a52-0000-4000-8000-000000000000/reminder", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestClearAllEndpoint(t *testing.T) {
	e, prefs, gateway := newNotificationAPI(t)
	ctx := context.Background()

	if err := prefs.SetProximityNotificationsEnabled(ctx, true); err != nil {
		t.Fatalf("enable proximity notifications: %v", err)
	}
	if rec := doJSON(t, e, http.MethodPost, "/api/v1/notifications/authorization/request", ""); rec.Code != http.StatusOK {
		t.Fatalf("authorize: expected 200, got %d", rec.Code)
	}
	body := `{"place":{"id":1,"name":"Alhambra"},"distance_meters":400}`
	if rec := doJSON(t, e, http.MethodPost, "/api/v1/notifications/nearby", body); rec.Code != http.StatusAccepted {
		t.Fatalf("schedule: expected 202, got %d", rec.Code)
	}

	rec := doJSON(t, e, http.MethodDelete, "/api/v1/notifications", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear: expected 204, got %d", rec.Code)
	}

	pending, err := gateway.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending returned error: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending notifications survived clear: %v", pending)
	}
}
