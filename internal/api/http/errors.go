package http

import (
	"errors"
	"net/http"

	"github.com/skillforge/skillforge/internal/genai"
	"github.com/skillforge/skillforge/internal/quiz"
)

// writeErr maps domain errors to status codes. Anything unrecognized is a 500
// with a generic body so internals never leak to clients.
func writeErr(w http.ResponseWriter, err error) {
	var (
		nf *quiz.NotFoundError
		na *quiz.NotAssignedError
		cf *quiz.ConflictError
		ge *genai.GenerationError
	)
	switch {
	case errors.As(err, &nf):
		http.Error(w, nf.Error(), http.StatusNotFound)
	case errors.As(err, &na):
		http.Error(w, na.Error(), http.StatusForbidden)
	case errors.As(err, &cf):
		http.Error(w, cf.Error(), http.StatusConflict)
	case errors.As(err, &ge):
		http.Error(w, ge.Error(), http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
