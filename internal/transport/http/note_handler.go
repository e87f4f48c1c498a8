package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roamnest/roamnest-core/internal/domain"
	"github.com/roamnest/roamnest-core/internal/service"
	"github.com/roamnest/roamnest-core/internal/util"
)

type NoteHandler struct {
	prefs *service.PreferenceService
	media *service.NoteMediaService
}

// RegisterNotes wires the place-note endpoints. media may be nil when no
// media store is configured; photo attachment then reports unavailable.
func RegisterNotes(e *echo.Echo, deviceToken string, prefs *service.PreferenceService, media *service.NoteMediaService) {
	handler := &NoteHandler{prefs: prefs, media: media}

	g := e.Group("/api/v1/notes", RequireDeviceToken(deviceToken))
	g.GET("", handler.listNotes)
	g.GET("/:place_id", handler.getNote)
	g.PUT("/:place_id", handler.setNote)
	g.DELETE("/:place_id", handler.deleteNote)
	g.POST("/:place_id/photo", handler.attachPhoto)
}

func (h *NoteHandler) listNotes(c echo.Context) error {
	notes, err := h.prefs.Notes(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read notes"))
	}
	out := make([]domain.PlaceNote, 0, len(notes))
	for _, note := range notes {
		out = append(out, note)
	}
	return c.JSON(http.StatusOK, util.Data("notes", out))
}

func (h *NoteHandler) getNote(c echo.Context) error {
	id, err := parsePlaceID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("place_id must be an integer"))
	}
	note, err := h.prefs.Note(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("no note for this place"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not read note"))
	}
	return c.JSON(http.StatusOK, util.Data("note", note))
}

func (h *NoteHandler) setNote(c echo.Context) error {
	id, err := parsePlaceID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("place_id must be an integer"))
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, util.Error("text is required"))
	}

	ctx := c.Request().Context()
	note := domain.PlaceNote{PlaceID: id, Text: req.Text}
	if existing, err := h.prefs.Note(ctx, id); err == nil {
		note.PhotoURL = existing.PhotoURL
	}
	if err := h.prefs.SetNote(ctx, note); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not save note"))
	}

	saved, err := h.prefs.Note(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not read note"))
	}
	return c.JSON(http.StatusOK, util.Data("note", saved))
}

func (h *NoteHandler) deleteNote(c echo.Context) error {
	id, err := parsePlaceID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("place_id must be an integer"))
	}
	if err := h.prefs.DeleteNote(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("no note for this place"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not delete note"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NoteHandler) attachPhoto(c echo.Context) error {
	if h.media == nil {
		return c.JSON(http.StatusServiceUnavailable, util.Error("media storage is not configured"))
	}

	id, err := parsePlaceID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("place_id must be an integer"))
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("photo file is required"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("could not open photo upload"))
	}
	defer file.Close()

	note, err := h.media.AttachPhoto(c.Request().Context(), id, service.NotePhotoUpload{
		Reader:      file,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
	})
	if err != nil {
		if errors.Is(err, service.ErrPhotoValidation) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not attach photo"))
	}
	return c.JSON(http.StatusCreated, util.Data("note", note))
}
