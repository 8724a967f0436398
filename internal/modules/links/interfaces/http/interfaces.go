package http

import (
	"context"

	"github.com/saransh1220/filelink/internal/modules/links/application"
	"github.com/saransh1220/filelink/internal/modules/links/domain"
)

// LinkService is what the handlers need from the application layer.
type LinkService interface {
	Resolve(ctx context.Context, segment string, mode domain.Mode) (application.Outcome, error)
	Exists(ctx context.Context, segment string) (*domain.FileRecord, error)
	Register(ctx context.Context, in application.RegisterInput) (*domain.FileRecord, error)
	Upload(ctx context.Context, in application.UploadInput) (*domain.FileRecord, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.FileRecord, error)
	Revoke(ctx context.Context, shortID, ownerID string) error
}

// LinkBuilder turns a record into absolute links.
type LinkBuilder interface {
	Build(rec *domain.FileRecord) application.LinkSet
}
