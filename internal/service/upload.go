package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"log/slog"

	"github.com/omnidash/omnidash/internal/audit"
	"github.com/omnidash/omnidash/internal/metrics"
	"github.com/omnidash/omnidash/internal/model"
	"github.com/omnidash/omnidash/internal/store"
)

// TokenResolver resolves an access token to the user record it belongs to.
type TokenResolver interface {
	Resolve(token string) (model.User, error)
}

// UploadService persists profile photos to local disk and records the
// resulting path on the user record.
type UploadService struct {
	store    *store.Store
	resolver TokenResolver
	dir      string
	logger   *slog.Logger
	metrics  metrics.Recorder
	audit    audit.Publisher
}

// NewUploadService creates a new UploadService writing into dir.
func NewUploadService(st *store.Store, resolver TokenResolver, dir string, logger *slog.Logger, recorder metrics.Recorder, publisher audit.Publisher) *UploadService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = audit.NewNoop()
	}
	return &UploadService{
		store:    st,
		resolver: resolver,
		dir:      dir,
		logger:   logger.With("component", "service.upload"),
		metrics:  recorder,
		audit:    publisher,
	}
}

// UploadPhoto writes the file bytes under {dir}/{userID}_{fileName} and
// updates the record's photo reference. The id prefix keeps uploads from
// different users apart; a repeated upload of the same name by the same user
// silently overwrites the previous file (last write wins).
func (s *UploadService) UploadPhoto(ctx context.Context, token string, data []byte, fileName string) (string, error) {
	user, err := s.resolver.Resolve(token)
	if err != nil {
		return "", err
	}

	// Base strips any client-supplied directory components.
	name := fmt.Sprintf("%s_%s", user.ID, filepath.Base(fileName))
	path := filepath.Join(s.dir, name)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}

	if _, err := s.store.Update(user.Email, func(u *model.User) error {
		u.Photo = path
		return nil
	}); err != nil {
		return "", ErrInvalidToken
	}

	s.metrics.IncPhotoUploaded()
	s.audit.EmitAsync(audit.Event{Action: audit.ActionPhotoUpload, UserID: user.ID, Email: user.Email})
	s.logger.Info("photo uploaded",
		"user_id", user.ID,
		"path", path,
		"size_bytes", len(data),
	)

	return path, nil
}
