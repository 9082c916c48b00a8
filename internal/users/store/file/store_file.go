package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"userdir/internal/users/models"
	"userdir/internal/users/store"
)

var tracer = otel.Tracer("userdir/internal/users/store/file")

const defaultFileMode fs.FileMode = 0o644

// Store keeps users in a JSON list on disk. Every call re-reads the file and
// every mutation rewrites it whole. There is no locking between calls, so two
// concurrent writers can lose an update; the last rename wins.
type Store struct {
	path   string
	logger *slog.Logger
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New returns a store backed by the file at path. The file does not need to
// exist yet.
func New(path string, opts ...Option) *Store {
	s := &Store{path: path, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// All never fails: a missing, empty or unparsable file reads as no users.
func (s *Store) All(ctx context.Context) (*models.Snapshot, error) {
	return s.read(ctx), nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*models.User, error) {
	return store.FindByID(s.read(ctx), id)
}

func (s *Store) FindByNickname(ctx context.Context, nickname string) (*models.User, error) {
	return store.FindByNickname(s.read(ctx), nickname)
}

func (s *Store) Save(ctx context.Context, user *models.User) error {
	users := s.read(ctx)
	users.Put(*user)
	return s.write(ctx, users)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	users := s.read(ctx)
	users.Delete(id)
	return s.write(ctx, users)
}

func (s *Store) read(ctx context.Context) *models.Snapshot {
	ctx, span := tracer.Start(ctx, "users.file.read",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("file.path", s.path)),
	)
	defer span.End()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "users file unreadable, treating as empty",
				"path", s.path,
				"error", err,
			)
		}
		return models.NewSnapshot()
	}
	if len(data) == 0 {
		return models.NewSnapshot()
	}

	var users models.Snapshot
	if err := json.Unmarshal(data, &users); err != nil {
		s.logger.WarnContext(ctx, "users file corrupt, treating as empty",
			"path", s.path,
			"error", err,
		)
		return models.NewSnapshot()
	}
	span.SetAttributes(attribute.Int("users.count", users.Len()))
	return &users
}

func (s *Store) write(ctx context.Context, users *models.Snapshot) error {
	_, span := tracer.Start(ctx, "users.file.write",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("file.path", s.path),
			attribute.Int("users.count", users.Len()),
		),
	)
	defer span.End()

	if err := s.writeFile(users); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *Store) writeFile(users *models.Snapshot) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create users dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp users file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Chmod(s.fileMode()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod users file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write users file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close users file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace users file: %w", err)
	}
	return nil
}

// fileMode keeps the mode of an existing users file, else defaultFileMode.
func (s *Store) fileMode() fs.FileMode {
	if info, err := os.Stat(s.path); err == nil {
		return info.Mode().Perm()
	}
	return defaultFileMode
}
