package http

import (
	"errors"
	"net/http"

	"github.com/goodcast/goodapi/pkg/auth"
	"github.com/goodcast/goodapi/pkg/domain"
	"github.com/goodcast/goodapi/pkg/schema"
)

const msgPollEnded = "Poll has ended!"

var createPollSchema = schema.Schema{
	"length":  schema.Required(schema.Number()),
	"options": schema.Required(schema.Slice(schema.String())),
}

type createPollRequest struct {
	Length  float64  `json:"length"`
	Options []string `json:"options"`
}

var actPollSchema = schema.Schema{
	"poll":   schema.Required(schema.MinString(1)),
	"option": schema.Required(schema.MinString(1)),
}

type actPollRequest struct {
	Poll   string `json:"poll"`
	Option string `json:"option"`
}

// CreatePoll handles the POST /polls/create request.
func (s *Server) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var body createPollRequest
	if !s.decodeBody(w, r, createPollSchema, &body) {
		return
	}
	if _, ok := s.authorize(w, r); !ok {
		return
	}

	poll, err := domain.NewPoll(body.Length, body.Options, s.Now())
	if err != nil {
		if errors.Is(err, domain.ErrPollLength) {
			s.writeError(w, http.StatusBadRequest, msgPollLength)
			return
		}
		s.catchedError(w, r, err)
		return
	}

	if err := s.Polls.CreatePoll(r.Context(), poll); err != nil {
		s.catchedError(w, r, err)
		return
	}

	s.logger().Info("Created a poll", "id", poll.ID, "options", len(poll.Options))
	s.writeJSON(w, http.StatusOK, map[string]any{"poll": poll, "success": true})
}

// GetPoll handles the GET /polls/get request.
func (s *Server) GetPoll(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		s.invalidBody(w)
		return
	}

	viewer, _ := actor(auth.FromRequest(r))
	poll, err := s.Polls.GetPoll(r.Context(), id, viewer.ID)
	if err != nil {
		if isNotFound(err) {
			s.writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		s.catchedError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"result": poll, "success": true})
}

// ActPoll handles the POST /polls/act request.
func (s *Server) ActPoll(w http.ResponseWriter, r *http.Request) {
	var body actPollRequest
	if !s.decodeBody(w, r, actPollSchema, &body) {
		return
	}
	tokens, ok := s.authorize(w, r)
	if !ok {
		return
	}
	voter, err := actor(tokens)
	if err != nil || voter.ID == "" {
		s.notAllowed(w, http.StatusUnauthorized)
		return
	}

	poll, err := s.Polls.GetPoll(r.Context(), body.Poll, "")
	if err != nil {
		if isNotFound(err) {
			s.writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		s.catchedError(w, r, err)
		return
	}
	now := s.Now()
	if poll.Ended(now) {
		s.writeError(w, http.StatusBadRequest, msgPollEnded)
		return
	}

	err = s.Polls.RespondPoll(r.Context(), domain.PollResponse{
		PollID:    poll.ID,
		OptionID:  body.Option,
		ActorID:   voter.ID,
		CreatedAt: now.UTC(),
	})
	switch {
	case errors.Is(err, domain.ErrInvalidOption):
		s.invalidBody(w)
		return
	case isNotFound(err):
		s.writeError(w, http.StatusNotFound, msgNotFound)
		return
	case err != nil:
		s.catchedError(w, r, err)
		return
	}

	s.logger().Info("Responded to poll", "poll", poll.ID, "actor", voter.ID)
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
