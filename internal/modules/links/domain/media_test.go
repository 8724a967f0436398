package domain_test

import (
	"testing"

	"github.com/saransh1220/filelink/internal/modules/links/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassifyMedia(t *testing.T) {
	tests := []struct {
		name        string
		mimeOrExt   string
		displayName string
		expected    domain.MediaKind
	}{
		{"mime_video", "video/mp4", "x.bin", domain.MediaVideo},
		{"bare_video_hint", "video", "clip", domain.MediaVideo},
		{"mime_audio", "audio/mpeg", "x", domain.MediaAudio},
		{"extension_hint", ".mkv", "noext", domain.MediaVideo},
		{"extension_hint_no_dot", "flac", "noext", domain.MediaAudio},
		{"name_fallback", "document", "Song.MP3", domain.MediaAudio},
		{"document", "application/pdf", "report.pdf", domain.MediaOther},
		{"photo", "photo", "photo_123.jpg", domain.MediaOther},
		{"empty", "", "", domain.MediaOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ClassifyMedia(tt.mimeOrExt, tt.displayName)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.expected != domain.MediaOther, got.Streamable())
		})
	}
}

func TestMediaKind_String(t *testing.T) {
	assert.Equal(t, "video", domain.MediaVideo.String())
	assert.Equal(t, "audio", domain.MediaAudio.String())
	assert.Equal(t, "other", domain.MediaOther.String())
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		in       uint64
		expected string
	}{
		{0, "Unknown"},
		{1, "1.00 B"},
		{1023, "1023.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1572864000, "1.46 GB"},
		{5 * 1024 * 1024 * 1024 * 1024, "5.00 TB"},
		{3 * 1024 * 1024 * 1024 * 1024 * 1024, "3072.00 TB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, domain.HumanSize(tt.in))
	}
}

func TestMode_Sibling(t *testing.T) {
	assert.Equal(t, domain.ModeDownload, domain.ModeStream.Sibling())
	assert.Equal(t, domain.ModeStream, domain.ModeDownload.Sibling())
}
