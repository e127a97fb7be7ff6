package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/compotron/compose/internal/domain"
)

// Store persists a Manifest to and loads it from an output directory.
type Store struct {
	fs domain.FS
}

// NewStore builds a filesystem-backed manifest Store.
func NewStore(vfs domain.FS) *Store {
	return &Store{fs: vfs}
}

// Load reads the manifest at <targetDir>/.composer.manifest. A missing file
// is not an error — it yields an empty Manifest, matching spec.md §6's "no
// manifest present" precondition for a first-time composition.
func (s *Store) Load(ctx context.Context, targetDir domain.AbsPath) domain.Result[Manifest] {
	path := targetDir.Join(FileName).String()

	data, err := s.fs.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Ok(New())
		}
		return domain.Err[Manifest](fmt.Errorf("read manifest: %w", err))
	}

	m, err := Unmarshal(data)
	if err != nil {
		return domain.Err[Manifest](fmt.Errorf("parse manifest: %w", err))
	}
	return domain.Ok(m)
}

// Save atomically writes manifest to <targetDir>/.composer.manifest via a
// temp file plus rename, the same pattern the teacher's manifest store
// uses, so a crash mid-write never leaves a half-written manifest behind.
func (s *Store) Save(ctx context.Context, targetDir domain.AbsPath, m Manifest) error {
	data, err := m.MarshalPretty()
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	path := targetDir.Join(FileName).String()
	tempPath := path + ".tmp"

	if err := s.fs.WriteFile(ctx, tempPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := s.fs.Rename(ctx, tempPath, path); err != nil {
		_ = s.fs.Remove(ctx, tempPath)
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}
