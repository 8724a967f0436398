package application

import "github.com/saransh1220/filelink/internal/modules/links/domain"

// OutcomeKind is what the HTTP layer should emit for a resolved request.
type OutcomeKind int

const (
	// OutcomeRedirect sends the client to the direct URL.
	OutcomeRedirect OutcomeKind = iota
	// OutcomePlayer renders the in-browser player.
	OutcomePlayer
	// OutcomeFallbackRedirect sends a stream request for a non-media file to its download link.
	OutcomeFallbackRedirect
	// OutcomeUnavailable renders the metadata page with the download disabled.
	OutcomeUnavailable
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRedirect:
		return "redirect"
	case OutcomePlayer:
		return "player"
	case OutcomeFallbackRedirect:
		return "fallback"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Outcome is the decision for one request.
type Outcome struct {
	Kind   OutcomeKind
	Mode   domain.Mode
	Record *domain.FileRecord
	// DirectURL is set when resolution succeeded.
	DirectURL string
	// Location is the sibling path for OutcomeFallbackRedirect.
	Location string
}

// Decide maps a found record and the result of resolving it to an outcome.
// A resolution failure always yields OutcomeUnavailable, whatever the mode.
func Decide(mode domain.Mode, rec *domain.FileRecord, directURL string, resolveErr error) Outcome {
	out := Outcome{Mode: mode, Record: rec}

	if resolveErr != nil || directURL == "" {
		out.Kind = OutcomeUnavailable
		return out
	}
	out.DirectURL = directURL

	if mode == domain.ModeStream {
		if !rec.Media().Streamable() {
			out.Kind = OutcomeFallbackRedirect
			out.Location = Path(domain.ModeDownload, rec)
			return out
		}
		out.Kind = OutcomePlayer
		return out
	}

	out.Kind = OutcomeRedirect
	return out
}

// Path is the public path of rec in the given mode.
func Path(mode domain.Mode, rec *domain.FileRecord) string {
	return "/" + string(mode) + "/" + rec.Slug()
}
