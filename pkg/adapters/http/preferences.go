package http

import (
	"net/http"

	"github.com/goodcast/goodapi/pkg/auth"
	"github.com/goodcast/goodapi/pkg/domain"
	"github.com/goodcast/goodapi/pkg/schema"
)

var updatePreferencesSchema = schema.Schema{
	"appIcon":                      schema.Optional(schema.Int()),
	"highSignalNotificationFilter": schema.Optional(schema.Bool()),
	"id":                           schema.Optional(schema.String()),
}

// GetPreferences handles the GET /preferences/get request.
func (s *Server) GetPreferences(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.ParseToken(auth.FromRequest(r).Access)
	if err != nil || owner.ID == "" {
		s.notAllowed(w, http.StatusUnauthorized)
		return
	}

	pref, err := s.Preferences.GetPreference(r.Context(), owner.ID)
	if err != nil {
		if !isNotFound(err) {
			s.catchedError(w, r, err)
			return
		}
		def := domain.DefaultPreference(owner.ID)
		pref = &def
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"result": pref, "success": true})
}

// UpdatePreferences handles the POST /preferences/update request.
// The stored row is keyed by the caller's token, never by the body id.
func (s *Server) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var update domain.PreferenceUpdate
	if !s.decodeBody(w, r, updatePreferencesSchema, &update) {
		return
	}
	tokens, ok := s.authorize(w, r)
	if !ok {
		return
	}
	owner, err := auth.ParseToken(tokens.Access)
	if err != nil || owner.ID == "" {
		s.notAllowed(w, http.StatusUnauthorized)
		return
	}

	pref, err := s.Preferences.UpsertPreference(r.Context(), owner.ID, update)
	if err != nil {
		s.catchedError(w, r, err)
		return
	}

	s.logger().Info("Updated preferences", "id", owner.ID)
	s.writeJSON(w, http.StatusOK, map[string]any{"result": pref, "success": true})
}
