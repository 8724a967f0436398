package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	storagedomain "github.com/saransh1220/filelink/internal/modules/filestorage/domain"
	"github.com/saransh1220/filelink/internal/modules/links/domain"
	"go.uber.org/zap"
)

// Files is the storage backend seen from the links module.
type Files interface {
	domain.Resolver
	Upload(ctx context.Context, body io.Reader, filename, contentType string) (string, error)
	Purge(ctx context.Context, stableRef string) error
}

// IDSource draws candidate short ids.
type IDSource interface {
	New() (string, error)
}

type Config struct {
	IDDigits       int
	IDMaxAttempts  int
	MaxFileSize    uint64
	StoreTimeout   time.Duration
	ResolveTimeout time.Duration
	PurgeBackend   bool
}

// RegisterInput describes bytes the backend has already stored durably.
type RegisterInput struct {
	StableRef   string `json:"stable_ref"`
	DisplayName string `json:"display_name"`
	SizeBytes   uint64 `json:"size_bytes"`
	MimeOrExt   string `json:"mime_type"`
	OwnerID     string `json:"-"`
}

// UploadInput is a file to push to the backend before registering it.
type UploadInput struct {
	Body        io.Reader
	Filename    string
	ContentType string
	SizeBytes   uint64
	OwnerID     string
}

type LinkService struct {
	store  domain.Store
	files  Files
	ids    IDSource
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*LinkService)

// WithIDSource replaces the crypto/rand id generator.
func WithIDSource(src IDSource) Option {
	return func(s *LinkService) { s.ids = src }
}

// WithClock replaces time.Now for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *LinkService) { s.now = now }
}

func NewLinkService(store domain.Store, files Files, cfg Config, logger *zap.Logger, opts ...Option) *LinkService {
	if cfg.IDMaxAttempts < 1 {
		cfg.IDMaxAttempts = 8
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 3 * time.Second
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &LinkService{
		store:  store,
		files:  files,
		ids:    domain.NewShortIDGenerator(cfg.IDDigits),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve runs the full public flow for one path segment: decode, look up,
// ask the backend for a fresh URL, decide. Errors are ErrMalformedSlug,
// ErrNotFound or ErrStoreUnavailable; a backend failure is an
// OutcomeUnavailable, not an error.
func (s *LinkService) Resolve(ctx context.Context, segment string, mode domain.Mode) (Outcome, error) {
	rec, err := s.Exists(ctx, segment)
	if err != nil {
		resolutionsTotal.WithLabelValues(string(mode), errorLabel(err)).Inc()
		return Outcome{}, err
	}

	directURL, resolveErr := s.directURL(ctx, rec.StableRef)
	if resolveErr != nil {
		s.logger.Warn("serving fallback page",
			zap.String("short_id", rec.ShortID),
			zap.String("mode", string(mode)),
			zap.Error(resolveErr),
		)
	}

	out := Decide(mode, rec, directURL, resolveErr)
	resolutionsTotal.WithLabelValues(string(mode), out.Kind.String()).Inc()
	return out, nil
}

// Exists decodes the segment and looks the record up without touching the backend.
func (s *LinkService) Exists(ctx context.Context, segment string) (*domain.FileRecord, error) {
	_, shortID, err := domain.DecodeSlug(segment)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, shortID)
}

// Register allocates a fresh id and persists the record.
func (s *LinkService) Register(ctx context.Context, in RegisterInput) (*domain.FileRecord, error) {
	rec, err := s.register(ctx, in)
	if err != nil {
		registrationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	registrationsTotal.WithLabelValues("ok").Inc()
	return rec, nil
}

func (s *LinkService) register(ctx context.Context, in RegisterInput) (*domain.FileRecord, error) {
	in.StableRef = strings.TrimSpace(in.StableRef)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.OwnerID = strings.TrimSpace(in.OwnerID)

	switch {
	case in.StableRef == "":
		return nil, fmt.Errorf("%w: stable_ref is required", domain.ErrInvalidRecord)
	case in.DisplayName == "":
		return nil, fmt.Errorf("%w: display_name is required", domain.ErrInvalidRecord)
	case in.OwnerID == "":
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidRecord)
	}
	if err := s.checkSize(in.SizeBytes); err != nil {
		return nil, err
	}

	shortID, err := s.allocateID(ctx)
	if err != nil {
		return nil, err
	}

	rec := &domain.FileRecord{
		ShortID:     shortID,
		StableRef:   in.StableRef,
		DisplayName: in.DisplayName,
		SizeBytes:   in.SizeBytes,
		MimeOrExt:   in.MimeOrExt,
		OwnerID:     in.OwnerID,
		CreatedAt:   s.now().UTC(),
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.store.Put(storeCtx, rec); err != nil {
		return nil, storeError(err)
	}

	s.logger.Info("link registered",
		zap.String("short_id", rec.ShortID),
		zap.String("owner_id", rec.OwnerID),
		zap.Uint64("size_bytes", rec.SizeBytes),
	)
	return rec, nil
}

// Upload sends the bytes to the backend and registers the result.
func (s *LinkService) Upload(ctx context.Context, in UploadInput) (*domain.FileRecord, error) {
	if err := s.checkSize(in.SizeBytes); err != nil {
		return nil, err
	}

	ref, err := s.files.Upload(ctx, in.Body, in.Filename, in.ContentType)
	if errors.Is(err, storagedomain.ErrNotSupported) {
		return nil, domain.ErrUploadUnsupported
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	hint := in.ContentType
	if hint == "" || hint == "application/octet-stream" {
		hint = strings.TrimPrefix(strings.ToLower(filepath.Ext(in.Filename)), ".")
	}

	rec, err := s.Register(ctx, RegisterInput{
		StableRef:   ref,
		DisplayName: filepath.Base(in.Filename),
		SizeBytes:   in.SizeBytes,
		MimeOrExt:   hint,
		OwnerID:     in.OwnerID,
	})
	if err != nil {
		if perr := s.files.Purge(context.WithoutCancel(ctx), ref); perr != nil {
			s.logger.Warn("failed to remove unregistered upload", zap.String("ref", ref), zap.Error(perr))
		}
		return nil, err
	}
	return rec, nil
}

func (s *LinkService) ListByOwner(ctx context.Context, ownerID string) ([]domain.FileRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	recs, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError(err)
	}
	return recs, nil
}

// Revoke deletes the mapping for an owner's record. With purging enabled the
// backend object is removed afterwards, best effort.
func (s *LinkService) Revoke(ctx context.Context, shortID, ownerID string) error {
	var ref string
	if s.cfg.PurgeBackend {
		rec, err := s.get(ctx, shortID)
		if err != nil {
			return err
		}
		if rec.OwnerID != ownerID {
			return domain.ErrForbidden
		}
		ref = rec.StableRef
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.store.Delete(storeCtx, shortID, ownerID); err != nil {
		return storeError(err)
	}
	s.logger.Info("link revoked", zap.String("short_id", shortID), zap.String("owner_id", ownerID))

	if ref != "" {
		purgeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ResolveTimeout)
		defer cancel()
		err := s.files.Purge(purgeCtx, ref)
		switch {
		case errors.Is(err, storagedomain.ErrNotSupported):
			s.logger.Debug("backend cannot purge objects", zap.String("short_id", shortID))
		case err != nil:
			s.logger.Warn("failed to purge backend object", zap.String("short_id", shortID), zap.Error(err))
		}
	}
	return nil
}

func (s *LinkService) get(ctx context.Context, shortID string) (*domain.FileRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	rec, err := s.store.Get(ctx, shortID)
	if err != nil {
		return nil, storeError(err)
	}
	return rec, nil
}

func (s *LinkService) directURL(ctx context.Context, ref string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ResolveTimeout)
	defer cancel()

	u, err := s.files.DirectURL(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrResolutionFailed, err)
	}
	if u == "" {
		return "", fmt.Errorf("%w: backend returned an empty url", domain.ErrResolutionFailed)
	}
	return u, nil
}

// allocateID draws ids until one is neither live nor retired.
func (s *LinkService) allocateID(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= s.cfg.IDMaxAttempts; attempt++ {
		id, err := s.ids.New()
		if err != nil {
			return "", err
		}

		storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
		taken, err := s.store.IDTaken(storeCtx, id)
		cancel()
		if err != nil {
			return "", storeError(err)
		}
		if !taken {
			return id, nil
		}
		s.logger.Debug("short id collision", zap.String("short_id", id), zap.Int("attempt", attempt))
	}
	return "", domain.ErrIDSpaceExhausted
}

func (s *LinkService) checkSize(size uint64) error {
	if size > math.MaxInt64 {
		return fmt.Errorf("%w: size_bytes %d out of range", domain.ErrInvalidRecord, size)
	}
	if s.cfg.MaxFileSize > 0 && size > s.cfg.MaxFileSize {
		return fmt.Errorf("%w: %s > %s", domain.ErrFileTooLarge, domain.HumanSize(size), domain.HumanSize(s.cfg.MaxFileSize))
	}
	return nil
}

// storeError makes sure every unexpected store failure reads as ErrStoreUnavailable.
func storeError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrStoreUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedSlug):
		return "malformed"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "store_error"
	}
}
