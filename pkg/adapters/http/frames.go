package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goodcast/goodapi/pkg/domain"
	"github.com/goodcast/goodapi/pkg/frames"
	"github.com/goodcast/goodapi/pkg/schema"
)

var frameActionSchema = schema.Schema{
	"buttonAction": schema.Optional(schema.String()),
	"buttonIndex":  schema.Required(schema.Int()),
	"inputText":    schema.Optional(schema.String()),
	"postUrl":      schema.Required(schema.String()),
	"pubId":        schema.Required(schema.String()),
	"state":        schema.Optional(schema.String()),
}

// PostFrame handles the POST /frames/post request.
func (s *Server) PostFrame(w http.ResponseWriter, r *http.Request) {
	var req domain.FrameActionRequest
	if !s.decodeBody(w, r, frameActionSchema, &req) {
		return
	}

	tokens, ok := s.authorize(w, r)
	if !ok {
		return
	}
	identity, err := actor(tokens)
	if err != nil {
		s.notAllowed(w, http.StatusUnauthorized)
		return
	}

	res, err := s.Frames.Post(r.Context(), identity, tokens, req)
	if err != nil {
		if errors.Is(err, frames.ErrInvalidPostURL) {
			s.invalidBody(w)
			return
		}
		s.catchedError(w, r, err)
		return
	}

	s.logger().Info("Proxied frame action", "actor", identity.ID, "button", req.ButtonIndex, "action", req.ButtonAction)

	if res.Transaction != nil {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"frame":   map[string]json.RawMessage{"transaction": res.Transaction},
			"success": true,
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"frame": res.Frame, "success": true})
}

// GetOEmbed handles the GET /oembed/get request.
func (s *Server) GetOEmbed(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		s.invalidBody(w)
		return
	}

	oembed, err := s.Frames.FetchOEmbed(r.Context(), target)
	if err != nil {
		if errors.Is(err, frames.ErrInvalidPostURL) {
			s.invalidBody(w)
			return
		}
		s.catchedError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"oembed": oembed, "success": true})
}
