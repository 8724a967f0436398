package http

import (
	"time"

	"github.com/saransh1220/filelink/internal/modules/links/application"
	"github.com/saransh1220/filelink/internal/modules/links/domain"
)

// FileResponse is a record plus its public links.
type FileResponse struct {
	ShortID     string    `json:"short_id"`
	DisplayName string    `json:"display_name"`
	SizeBytes   uint64    `json:"size_bytes"`
	Size        string    `json:"size"`
	MimeType    string    `json:"mime_type"`
	Streamable  bool      `json:"streamable"`
	CreatedAt   time.Time `json:"created_at"`
	application.LinkSet
}

type FileListResponse struct {
	Files []FileResponse `json:"files"`
	Count int            `json:"count"`
}

func toFileResponse(rec *domain.FileRecord, links LinkBuilder) FileResponse {
	return FileResponse{
		ShortID:     rec.ShortID,
		DisplayName: rec.DisplayName,
		SizeBytes:   rec.SizeBytes,
		Size:        domain.HumanSize(rec.SizeBytes),
		MimeType:    rec.MimeOrExt,
		Streamable:  rec.Media().Streamable(),
		CreatedAt:   rec.CreatedAt,
		LinkSet:     links.Build(rec),
	}
}
