package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/saransh1220/filelink/internal/gateway/middleware"
	"github.com/saransh1220/filelink/internal/modules/links/application"
	"github.com/saransh1220/filelink/internal/modules/links/domain"
	"github.com/saransh1220/filelink/internal/shared/utils"
	"go.uber.org/zap"
)

// multipartOverhead is the allowance for form boundaries and headers on top
// of the file itself.
const multipartOverhead = 1 << 20

// PublicHandler serves /download and /stream.
type PublicHandler struct {
	service        LinkService
	pages          *Pages
	redirectMaxAge time.Duration
	logger         *zap.Logger
}

func NewPublicHandler(service LinkService, pages *Pages, redirectMaxAge time.Duration, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{
		service:        service,
		pages:          pages,
		redirectMaxAge: redirectMaxAge,
		logger:         logger,
	}
}

// Download handles GET and HEAD /download/{slug}.
func (h *PublicHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.ModeDownload)
}

// Stream handles GET and HEAD /stream/{slug}.
func (h *PublicHandler) Stream(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.ModeStream)
}

func (h *PublicHandler) serve(w http.ResponseWriter, r *http.Request, mode domain.Mode) {
	segment := slugSegment(r)

	if r.Method == http.MethodHead {
		h.head(w, r, segment)
		return
	}

	out, err := h.service.Resolve(r.Context(), segment, mode)
	if err != nil {
		h.fail(w, r, segment, err)
		return
	}

	switch out.Kind {
	case application.OutcomeRedirect:
		if cd := contentDisposition(out.Record.DisplayName); cd != "" {
			w.Header().Set("Content-Disposition", cd)
		}
		if secs := int(h.redirectMaxAge.Seconds()); secs > 0 {
			w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", secs))
		} else {
			w.Header().Set("Cache-Control", "no-store")
		}
		http.Redirect(w, r, out.DirectURL, http.StatusFound)
	case application.OutcomeFallbackRedirect:
		http.Redirect(w, r, out.Location, http.StatusFound)
	case application.OutcomePlayer:
		h.pages.Player(w, out)
	default:
		h.pages.Unavailable(w, out)
	}
}

// InternalError renders the 500 page; the panic recovery middleware uses it.
func (h *PublicHandler) InternalError(w http.ResponseWriter, _ *http.Request) {
	h.pages.Error(w)
}

// head answers existence only; the backend is never contacted.
func (h *PublicHandler) head(w http.ResponseWriter, r *http.Request, segment string) {
	_, err := h.service.Exists(r.Context(), segment)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, domain.ErrMalformedSlug):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	default:
		h.logger.Error("store lookup failed", zap.String("segment", segment), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (h *PublicHandler) fail(w http.ResponseWriter, r *http.Request, segment string, err error) {
	switch {
	case errors.Is(err, domain.ErrMalformedSlug):
		h.pages.BadRequest(w)
	case errors.Is(err, domain.ErrNotFound):
		_, shortID, _ := domain.DecodeSlug(segment)
		h.pages.NotFound(w, shortID)
	default:
		h.logger.Error("store lookup failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.pages.Error(w)
	}
}

// slugSegment returns the last path segment still percent-encoded, so that a
// literal "-" in a name is told apart from an encoded one only by the codec.
func slugSegment(r *http.Request) string {
	p := r.URL.EscapedPath()
	return p[strings.LastIndexByte(p, '/')+1:]
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// contentDisposition formats an attachment header with the display name.
// Non-ASCII names go out in RFC 2231 form.
func contentDisposition(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] < 0x20 || name[i] > 0x7e {
			return mime.FormatMediaType("attachment", map[string]string{"filename": name})
		}
	}
	return `attachment; filename="` + quoteEscaper.Replace(name) + `"`
}

// ManagementHandler serves the owner-scoped /api routes.
type ManagementHandler struct {
	service     LinkService
	links       LinkBuilder
	maxFileSize uint64
	logger      *zap.Logger
}

func NewManagementHandler(service LinkService, links LinkBuilder, maxFileSize uint64, logger *zap.Logger) *ManagementHandler {
	return &ManagementHandler{
		service:     service,
		links:       links,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Register handles POST /api/files for bytes already stored by the backend.
func (h *ManagementHandler) Register(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "owner not authenticated", nil)
		return
	}

	var in application.RegisterInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	in.OwnerID = owner

	rec, err := h.service.Register(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, toFileResponse(rec, h.links))
}

// Upload handles POST /api/uploads with a multipart "file" field.
func (h *ManagementHandler) Upload(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "owner not authenticated", nil)
		return
	}

	if h.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(h.maxFileSize)+multipartOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.WriteError(w, http.StatusRequestEntityTooLarge, "file too large", nil)
			return
		}
		utils.WriteError(w, http.StatusBadRequest, "invalid multipart form", err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "file field is required", err)
		return
	}
	defer file.Close()

	rec, err := h.service.Upload(r.Context(), application.UploadInput{
		Body:        file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   uint64(header.Size),
		OwnerID:     owner,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, toFileResponse(rec, h.links))
}

// List handles GET /api/files.
func (h *ManagementHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "owner not authenticated", nil)
		return
	}

	recs, err := h.service.ListByOwner(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := FileListResponse{Files: make([]FileResponse, 0, len(recs)), Count: len(recs)}
	for i := range recs {
		resp.Files = append(resp.Files, toFileResponse(&recs[i], h.links))
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// Revoke handles DELETE /api/files/{id}.
func (h *ManagementHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.OwnerID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "owner not authenticated", nil)
		return
	}

	if err := h.service.Revoke(r.Context(), r.PathValue("id"), owner); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ManagementHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRecord):
		utils.WriteError(w, http.StatusBadRequest, "invalid file record", err)
	case errors.Is(err, domain.ErrFileTooLarge):
		utils.WriteError(w, http.StatusRequestEntityTooLarge, "file too large", err)
	case errors.Is(err, domain.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "file not found", nil)
	case errors.Is(err, domain.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, "file belongs to another owner", nil)
	case errors.Is(err, domain.ErrUploadUnsupported):
		utils.WriteError(w, http.StatusNotImplemented, "storage backend does not accept uploads", nil)
	case errors.Is(err, domain.ErrIDSpaceExhausted):
		h.logger.Error("short id allocation failed", zap.Error(err))
		utils.WriteError(w, http.StatusServiceUnavailable, "could not allocate a link, try again", nil)
	default:
		h.logger.Error("management request failed", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "internal error", nil)
	}
}
