package api

import (
	"encoding/json"
	"net/http"

	domainerrors "github.com/reychango/reychango-server/internal/errors"
	"github.com/reychango/reychango-server/internal/http/response"
)

// maxBodyBytes caps request bodies. Post content is markdown, so this is generous.
const maxBodyBytes = 2 << 20

// decodeJSON reads the request body into v. On failure it writes a 400 envelope
// and returns false.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.HandleError(w, domainerrors.Validation("Cuerpo de la petición no válido").WithCause(err), s.logger)
		return false
	}
	return true
}
