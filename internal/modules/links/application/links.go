package application

import (
	"fmt"
	"strings"

	"github.com/saransh1220/filelink/internal/modules/links/domain"
)

// LinkSet is the set of public links for one record.
type LinkSet struct {
	Download string `json:"download_url"`
	Stream   string `json:"stream_url,omitempty"`
	Share    string `json:"share_url,omitempty"`
}

// LinkBuilder turns records into absolute public links.
type LinkBuilder struct {
	baseURL     string
	botUsername string
}

// NewLinkBuilder creates a builder rooted at baseURL. Share links are only
// produced when botUsername is set.
func NewLinkBuilder(baseURL, botUsername string) LinkBuilder {
	return LinkBuilder{
		baseURL:     strings.TrimRight(baseURL, "/"),
		botUsername: strings.TrimPrefix(botUsername, "@"),
	}
}

func (b LinkBuilder) Build(rec *domain.FileRecord) LinkSet {
	links := LinkSet{Download: b.baseURL + Path(domain.ModeDownload, rec)}
	if rec.Media().Streamable() {
		links.Stream = b.baseURL + Path(domain.ModeStream, rec)
	}
	if b.botUsername != "" {
		links.Share = fmt.Sprintf("https://t.me/%s?start=file_%s", b.botUsername, rec.ShortID)
	}
	return links
}
