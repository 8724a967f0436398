package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/saransh1220/filelink/internal/modules/links/application"
	"github.com/saransh1220/filelink/internal/modules/links/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageData is everything a page template can show.
type pageData struct {
	Title        string
	Heading      string
	Message      string
	Name         string
	Size         string
	Kind         string
	ShortID      string
	DirectURL    string
	DownloadPath string
	RetryPath    string
	UploadURL    string
}

// Pages renders the HTML bodies of the public routes. Every page links back
// to the upload entry point.
type Pages struct {
	tmpl      *template.Template
	uploadURL string
}

func NewPages(uploadURL string) (*Pages, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Pages{tmpl: tmpl, uploadURL: uploadURL}, nil
}

func (p *Pages) Player(w http.ResponseWriter, out application.Outcome) {
	data := p.recordData(out.Record)
	data.Title = "Stream " + out.Record.DisplayName
	data.DirectURL = out.DirectURL
	p.render(w, http.StatusOK, "player.html", data)
}

func (p *Pages) Unavailable(w http.ResponseWriter, out application.Outcome) {
	data := p.recordData(out.Record)
	data.Title = out.Record.DisplayName
	data.RetryPath = application.Path(out.Mode, out.Record)
	p.render(w, http.StatusOK, "unavailable.html", data)
}

func (p *Pages) NotFound(w http.ResponseWriter, shortID string) {
	p.render(w, http.StatusNotFound, "notfound.html", pageData{
		Title:     "File not found",
		ShortID:   shortID,
		UploadURL: p.uploadURL,
	})
}

func (p *Pages) BadRequest(w http.ResponseWriter) {
	p.render(w, http.StatusBadRequest, "error.html", pageData{
		Title:     "Invalid link",
		Heading:   "Invalid link",
		Message:   "This link is not in the expected format.",
		UploadURL: p.uploadURL,
	})
}

func (p *Pages) Error(w http.ResponseWriter) {
	p.render(w, http.StatusInternalServerError, "error.html", pageData{
		Title:     "Something went wrong",
		Heading:   "Something went wrong",
		Message:   "We could not look up this link right now. Please try again shortly.",
		UploadURL: p.uploadURL,
	})
}

func (p *Pages) recordData(rec *domain.FileRecord) pageData {
	return pageData{
		Name:         rec.DisplayName,
		Size:         domain.HumanSize(rec.SizeBytes),
		Kind:         rec.Media().String(),
		ShortID:      rec.ShortID,
		DownloadPath: application.Path(domain.ModeDownload, rec),
		UploadURL:    p.uploadURL,
	}
}

// render buffers the page so a template error can still become a clean 500.
func (p *Pages) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
