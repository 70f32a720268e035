package http

import (
	"errors"
	"net/http"

	"github.com/goodcast/goodapi/pkg/schema"
	"github.com/goodcast/goodapi/pkg/webhooks"
)

var signupSchema = schema.Schema{
	"event": schema.Required(schema.Object(schema.Schema{
		"activity": schema.Optional(schema.Any()),
	})),
}

// PostSignup handles the POST /webhooks/signup request.
func (s *Server) PostSignup(w http.ResponseWriter, r *http.Request) {
	if err := s.Signup.CheckSecret(r.URL.Query().Get("secret")); err != nil {
		s.writeError(w, http.StatusBadRequest, msgSecret)
		return
	}

	var ev webhooks.SignupEvent
	if !s.decodeBody(w, r, signupSchema, &ev) {
		return
	}

	if err := s.Signup.Handle(r.Context(), ev); err != nil {
		if errors.Is(err, webhooks.ErrNoActivity) {
			s.invalidBody(w)
			return
		}
		s.catchedError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
