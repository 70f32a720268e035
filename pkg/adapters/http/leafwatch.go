package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goodcast/goodapi/pkg/auth"
	"github.com/goodcast/goodapi/pkg/leafwatch"
	"github.com/goodcast/goodapi/pkg/schema"
)

// sseKeepAlive is the interval of comment lines that keep idle proxies open.
const sseKeepAlive = 25 * time.Second

var eventSchema = schema.Schema{
	"fingerprint": schema.Nullish(schema.String()),
	"name":        schema.Required(schema.MinString(1)),
	"platform":    schema.Required(schema.String()),
	"properties":  schema.Optional(schema.Any()),
	"referrer":    schema.Nullish(schema.String()),
	"url":         schema.Required(schema.String()),
	"version":     schema.Nullish(schema.String()),
}

type eventRequest struct {
	Fingerprint string `json:"fingerprint"`
	Name        string `json:"name"`
	Platform    string `json:"platform"`
	Properties  any    `json:"properties"`
	Referrer    string `json:"referrer"`
	URL         string `json:"url"`
	Version     string `json:"version"`
}

// PostEvent handles the POST /leafwatch/events request.
func (s *Server) PostEvent(w http.ResponseWriter, r *http.Request) {
	var body eventRequest
	if !s.decodeBody(w, r, eventSchema, &body) {
		return
	}

	// Events from signed-out visitors carry no identity.
	identity, _ := auth.ParseToken(auth.FromRequest(r).Identity)

	id, err := s.Leafwatch.Ingest(r.Context(), leafwatch.Request{
		Fingerprint: body.Fingerprint,
		Name:        body.Name,
		Platform:    body.Platform,
		Properties:  body.Properties,
		Referrer:    body.Referrer,
		URL:         body.URL,
		Version:     body.Version,
	}, leafwatch.ClientInfo{
		IP:        leafwatch.ClientIP(r),
		UserAgent: r.UserAgent(),
		Actor:     identity,
	})
	if err != nil {
		if errors.Is(err, leafwatch.ErrUnknownEvent) {
			s.writeError(w, http.StatusBadRequest, msgInvalidEvent)
			return
		}
		s.catchedError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"id": id, "success": true})
}

// GetStream handles the GET /leafwatch/stream request.
func (s *Server) GetStream(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.invalidBody(w)
			return
		}
		limit = n
	}

	events, err := s.Leafwatch.Recent(r.Context(), limit)
	if err != nil {
		s.catchedError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"result": events, "success": true})
}

// SubscribeEvents handles the GET /leafwatch/sse request.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger().Error("SubscribeEvents: Streaming not supported")
		return
	}

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger().Info("SSE: Client subscribed", "subscribers", s.Streams.Len())

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger().Info("SSE Client Disconnected")
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
