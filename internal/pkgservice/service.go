// Package pkgservice orchestrates package builds against the storage root.
package pkgservice

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/askeladd/deckforge/internal/anki"
	"github.com/askeladd/deckforge/internal/apperr"
	"github.com/askeladd/deckforge/internal/models"
	"github.com/askeladd/deckforge/internal/storage"
)

// ArtifactSuffix is the extension of generated package files.
const ArtifactSuffix = ".apkg"

// Service builds package artifacts and stores media files. Each call works
// on its own data; the only shared state is the storage directory.
type Service struct {
	store *storage.Dir
}

// NewService creates a Service writing into store.
func NewService(store *storage.Dir) *Service {
	return &Service{store: store}
}

// Generate builds pkg into a new artifact and returns its generated
// filename. The name is collision-resistant and returned only after the
// artifact is fully written, so a returned name always refers to a
// complete file. A failed build leaves no visible file behind.
func (s *Service) Generate(ctx context.Context, pkg models.Package) (string, error) {
	name := "flashcards_" + randomHex() + ArtifactSuffix
	err := s.store.WriteAtomic(name, func(w io.Writer) error {
		return anki.WritePackage(ctx, w, pkg, s.resolveMedia)
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// resolveMedia maps a media filename referenced by a build request to its
// path under the storage root. The file must have been uploaded before.
func (s *Service) resolveMedia(name string) (string, error) {
	abs, err := s.store.Resolve(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperr.ErrInvalidName, name)
	}
	if !s.store.Exists(name) {
		return "", fmt.Errorf("media file %s: %w", name, apperr.ErrNotFound)
	}
	return abs, nil
}

// SaveMedia stores an uploaded media file verbatim under its original
// name, overwriting any previous file with that name.
func (s *Service) SaveMedia(name string, r io.Reader) (int64, error) {
	return s.store.SaveMedia(name, r)
}

// ArtifactPath resolves a download request to an absolute file path.
// Returns apperr.ErrInvalidName for unsafe names and apperr.ErrNotFound
// when no such file exists.
func (s *Service) ArtifactPath(name string) (string, error) {
	abs, err := s.store.Resolve(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperr.ErrInvalidName, name)
	}
	if !s.store.Exists(name) {
		return "", apperr.ErrNotFound
	}
	return abs, nil
}

// ListArtifacts returns the names of all generated packages in the
// storage root, sorted.
func (s *Service) ListArtifacts() ([]string, error) {
	names, err := s.store.List()
	if err != nil {
		return nil, err
	}
	artifacts := make([]string, 0, len(names))
	for _, n := range names {
		if strings.HasSuffix(n, ArtifactSuffix) {
			artifacts = append(artifacts, n)
		}
	}
	return artifacts, nil
}

func randomHex() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
