package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mitchellh/mapstructure"

	"github.com/goodcast/goodapi/pkg/schema"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

var (
	errNoBody      = errors.New("no body")
	errInvalidBody = errors.New("invalid body")
)

// decodeBody reads a JSON object, checks it against sch and decodes it into
// out using the json tags of out. It writes the 400 response itself and
// reports whether the handler may continue.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, sch schema.Schema, out any) bool {
	raw, err := readObject(r)
	switch {
	case errors.Is(err, errNoBody):
		s.noBody(w)
		return false
	case err != nil:
		s.invalidBody(w)
		return false
	}

	if err := schema.Validate(sch, raw); err != nil {
		s.logger().Debug("Rejected request body", "path", r.URL.Path, "fields", schema.InvalidKeys(err))
		s.invalidBody(w)
		return false
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		s.invalidBody(w)
		return false
	}
	if err := decoder.Decode(raw); err != nil {
		s.invalidBody(w)
		return false
	}
	return true
}

func readObject(r *http.Request) (map[string]any, error) {
	if r.Body == nil {
		return nil, errNoBody
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil || len(data) > maxBodySize {
		return nil, errInvalidBody
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, errNoBody
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errInvalidBody
	}
	return raw, nil
}
