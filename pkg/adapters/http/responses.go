package http

import (
	"encoding/json"
	"net/http"
)

const (
	msgNoBody       = "No body provided!"
	msgInvalidBody  = "Invalid body!"
	msgNotAllowed   = "You are not allowed to do this!"
	msgInvalidEvent = "Invalid event!"
	msgPollLength   = "Poll length should be between 1 and 30 days."
	msgSecret       = "Invalid secret!"
	msgNotFound     = "Not found!"
	msgGeneric      = "Something went wrong!"
)

type errorBody struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger().Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorBody{Error: msg, Success: false})
}

func (s *Server) noBody(w http.ResponseWriter) {
	s.writeError(w, http.StatusBadRequest, msgNoBody)
}

func (s *Server) invalidBody(w http.ResponseWriter) {
	s.writeError(w, http.StatusBadRequest, msgInvalidBody)
}

func (s *Server) notAllowed(w http.ResponseWriter, status int) {
	s.writeError(w, status, msgNotAllowed)
}

// catchedError logs err and answers with the generic 500 envelope.
func (s *Server) catchedError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger().Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	s.writeError(w, http.StatusInternalServerError, msgGeneric)
}
