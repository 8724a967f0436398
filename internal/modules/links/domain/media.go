package domain

import (
	"fmt"
	"path"
	"strings"
)

// MediaKind decides whether a record can be played in the browser.
type MediaKind int

const (
	MediaOther MediaKind = iota
	MediaVideo
	MediaAudio
)

var streamableExtensions = map[string]MediaKind{
	"mp4":  MediaVideo,
	"m4v":  MediaVideo,
	"mkv":  MediaVideo,
	"mov":  MediaVideo,
	"avi":  MediaVideo,
	"wmv":  MediaVideo,
	"webm": MediaVideo,
	"mp3":  MediaAudio,
	"m4a":  MediaAudio,
	"wav":  MediaAudio,
	"aac":  MediaAudio,
	"ogg":  MediaAudio,
	"opus": MediaAudio,
	"flac": MediaAudio,
}

// Streamable reports whether the kind is audio or video.
func (k MediaKind) Streamable() bool {
	return k == MediaVideo || k == MediaAudio
}

func (k MediaKind) String() string {
	switch k {
	case MediaVideo:
		return "video"
	case MediaAudio:
		return "audio"
	default:
		return "other"
	}
}

// ClassifyMedia inspects a MIME type, a bare type hint ("video", "audio",
// "document") or an extension, then falls back to the display name's extension.
func ClassifyMedia(mimeOrExt, displayName string) MediaKind {
	hint := strings.ToLower(strings.TrimSpace(mimeOrExt))
	switch {
	case strings.HasPrefix(hint, "video"):
		return MediaVideo
	case strings.HasPrefix(hint, "audio"):
		return MediaAudio
	}

	if kind, ok := streamableExtensions[strings.TrimPrefix(hint, ".")]; ok {
		return kind
	}

	ext := strings.TrimPrefix(strings.ToLower(path.Ext(displayName)), ".")
	if kind, ok := streamableExtensions[ext]; ok {
		return kind
	}
	return MediaOther
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// HumanSize renders a byte count with 1024 steps and two decimals.
// Zero means the size is unknown.
func HumanSize(sizeBytes uint64) string {
	if sizeBytes == 0 {
		return "Unknown"
	}
	size := float64(sizeBytes)
	i := 0
	for size >= 1024 && i < len(sizeUnits)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[i])
}
