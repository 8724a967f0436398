package domain

import (
	"sort"
	"time"
)

// SchemaVersion is written into every persisted record so stores can
// recognise the layout they are reading.
const SchemaVersion = 1

// FileRecord maps a public short id to the backend reference of the stored bytes.
// Records are immutable once written.
type FileRecord struct {
	ShortID     string    `json:"short_id" db:"short_id"`
	StableRef   string    `json:"stable_ref" db:"stable_ref"`
	DisplayName string    `json:"display_name" db:"display_name"`
	SizeBytes   uint64    `json:"size_bytes" db:"size_bytes"`
	MimeOrExt   string    `json:"mime_type" db:"mime_type"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Mode is the public access mode of a link.
type Mode string

const (
	ModeDownload Mode = "download"
	ModeStream   Mode = "stream"
)

// Sibling returns the other access mode.
func (m Mode) Sibling() Mode {
	if m == ModeStream {
		return ModeDownload
	}
	return ModeStream
}

// Slug is the public path segment of the record.
func (r *FileRecord) Slug() string {
	return EncodeSlug(r.DisplayName, r.ShortID)
}

// Media classifies the record for stream eligibility.
func (r *FileRecord) Media() MediaKind {
	return ClassifyMedia(r.MimeOrExt, r.DisplayName)
}

// SortNewestFirst orders records by creation time, newest first, ties by id.
func SortNewestFirst(recs []FileRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ShortID < recs[j].ShortID
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
}
