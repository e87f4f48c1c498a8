package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/roamnest/roamnest-core/internal/domain"
	"github.com/roamnest/roamnest-core/internal/media"
	"github.com/roamnest/roamnest-core/internal/repository/ports"
)

var ErrPhotoValidation = errors.New("photo validation failed")

// NotePhotoUpload is one photo attached to a place note.
type NotePhotoUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type NoteMediaServiceConfig struct {
	Bucket            string
	PublicBaseURL     string
	MaxPhotoBytes     int64
	ImageMaxDimension int
}

// NoteMediaService attaches photos to place notes: the image is downscaled,
// uploaded to the backend's media store, and the resulting URL is written
// into the note.
type NoteMediaService struct {
	prefs     *PreferenceService
	storage   ports.ObjectStorage
	processor media.Processor
	cfg       NoteMediaServiceConfig
}

func NewNoteMediaService(prefs *PreferenceService, storage ports.ObjectStorage, processor media.Processor, cfg NoteMediaServiceConfig) *NoteMediaService {
	return &NoteMediaService{
		prefs:     prefs,
		storage:   storage,
		processor: processor,
		cfg:       cfg,
	}
}

var allowedPhotoMIMEs = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// AttachPhoto uploads the photo and stores its URL on the place note,
// creating an empty note when the place has none yet.
func (s *NoteMediaService) AttachPhoto(ctx context.Context, placeID domain.PlaceID, upload NotePhotoUpload) (*domain.PlaceNote, error) {
	if err := s.validatePhoto(upload); err != nil {
		return nil, err
	}

	reader, size, contentType, err := prepareImageForUpload(ctx, s.processor, media.Upload{
		Reader:      upload.Reader,
		Size:        upload.Size,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
	}, s.cfg.ImageMaxDimension)
	if err != nil {
		return nil, err
	}

	ext := safePhotoExtension(contentType, upload.FileName)
	objectKey := fmt.Sprintf("notes/%d/%s%s", placeID, uuid.NewString(), ext)

	url, err := s.storage.Upload(ctx, s.cfg.Bucket, objectKey, contentType, reader, size)
	if err != nil {
		return nil, err
	}
	if s.cfg.PublicBaseURL != "" {
		url = strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + strings.TrimLeft(objectKey, "/")
	}

	note, err := s.prefs.Note(ctx, placeID)
	if err != nil {
		if !errors.Is(err, ErrNoteNotFound) {
			return nil, err
		}
		note = &domain.PlaceNote{PlaceID: placeID}
	}
	note.PhotoURL = &url
	if err := s.prefs.SetNote(ctx, *note); err != nil {
		return nil, err
	}
	return s.prefs.Note(ctx, placeID)
}

func (s *NoteMediaService) validatePhoto(upload NotePhotoUpload) error {
	if upload.Reader == nil || upload.Size <= 0 {
		return fmt.Errorf("%w: photo is empty", ErrPhotoValidation)
	}
	if s.cfg.MaxPhotoBytes > 0 && upload.Size > s.cfg.MaxPhotoBytes {
		return fmt.Errorf("%w: photo exceeds size limit (%d bytes)", ErrPhotoValidation, s.cfg.MaxPhotoBytes)
	}
	contentType := strings.ToLower(strings.TrimSpace(upload.ContentType))
	if _, ok := allowedPhotoMIMEs[contentType]; !ok {
		return fmt.Errorf("%w: unsupported content type %s", ErrPhotoValidation, upload.ContentType)
	}
	return nil
}

func safePhotoExtension(contentType, fileName string) string {
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" {
		return ext
	}
	return ".jpg"
}
