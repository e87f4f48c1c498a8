package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-core/internal/domain"
	"github.com/roamnest/roamnest-core/internal/service"
)

func newNoteAPI(t *testing.T) *echo.Echo {
	t.Helper()
	prefs := service.NewPreferenceService(newMemorySettings())
	e := echo.New()
	RegisterNotes(e, "", prefs, nil)
	return e
}

func TestNoteLifecycle(t *testing.T) {
	e := newNoteAPI(t)

	rec := doJSON(t, e, http.MethodPut, "/api/v1/notes/42", `{"text":"try the rooftop terrace"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Note domain.PlaceNote `json:"note"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Note.Text != "try the rooftop terrace" {
		t.Fatalf("unexpected note text %q", resp.Note.Text)
	}
	if resp.Note.UpdatedAt.IsZero() {
		t.Fatal("expected update timestamp")
	}

	rec = doJSON(t, e, http.MethodGet, "/api/v1/notes/42", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	// Rewriting replaces the text; a place has at most one note.
	rec = doJSON(t, e, http.MethodPut, "/api/v1/notes/42", `{"text":"closed on mondays"}`)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Note.Text != "closed on mondays" {
		t.Fatalf("expected replaced text, got %q", resp.Note.Text)
	}

	rec = doJSON(t, e, http.MethodDelete, "/api/v1/notes/42", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	rec = doJSON(t, e, http.MethodGet, "/api/v1/notes/42", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestSetNoteRequiresText(t *testing.T) {
	e := newNoteAPI(t)
	rec := doJSON(t, e, http.MethodPut, "/api/v1/notes/42", `{"text":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteUnknownNote(t *testing.T) {
	e := newNoteAPI(t)
	rec := doJSON(t, e, http.MethodDelete, "/api/v1/notes/404", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAttachPhotoWithoutMediaStore(t *testing.T) {
	e := newNoteAPI(t)
	rec := doJSON(t, e, http.MethodPost, "/api/v1/notes/42/photo", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
