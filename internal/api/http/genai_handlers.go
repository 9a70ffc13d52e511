package http

import (
	"encoding/json"
	"net/http"

	"github.com/skillforge/skillforge/internal/genai"
)

// GET /generator/health lets instructors check the provider before kicking off
// a quiz creation, instead of paying for a full failed generation.
func GeneratorHealthHandler(gen genai.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]bool{
			"available": gen.IsAvailable(r.Context()),
		})
	}
}
