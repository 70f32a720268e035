package frames_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goodcast/goodapi/pkg/auth"
	"github.com/goodcast/goodapi/pkg/domain"
	"github.com/goodcast/goodapi/pkg/frames"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSigner struct {
	got   domain.FrameAction
	token string
	err   error
}

func (f *fakeSigner) SignFrameAction(_ context.Context, action domain.FrameAction, token string) (*domain.SignedFrameAction, error) {
	f.got = action
	f.token = token
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SignedFrameAction{
		Signature: "0xsig",
		SignedTypedData: domain.TypedData{
			Value: map[string]any{"profileId": action.ProfileID, "buttonIndex": action.ButtonIndex, "deadline": 42},
		},
	}, nil
}

type results []string

func (r *results) FrameAction(result string) { *r = append(*r, result) }

var tokens = auth.Tokens{Access: "access", Identity: "identity"}

func TestService_PostHTML(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Goodcast/1.0", r.UserAgent())
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(framePage))
	}))
	defer srv.Close()

	signer := &fakeSigner{}
	var seen results
	svc := frames.NewService(signer,
		frames.WithUserAgent("Goodcast/1.0"),
		frames.WithObserver(&seen),
		frames.WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
	)

	res, err := svc.Post(context.Background(), domain.Identity{ID: "0x05"}, tokens, domain.FrameActionRequest{
		ButtonIndex: 2, PostURL: srv.URL, PubID: "0x05-0x01", InputText: "hi",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Frame)
	assert.Nil(t, res.Transaction)
	assert.Equal(t, "https://frame.example/post", res.Frame.PostURL)

	assert.Equal(t, "access", signer.token)
	assert.Equal(t, "0x05", signer.got.ProfileID)
	assert.Equal(t, "1.0.0", signer.got.SpecVersion)
	assert.Equal(t, "", signer.got.ActionResponse)

	assert.Equal(t, "lens@1.0.0", received["clientProtocol"])
	assert.Equal(t, map[string]any{"messageBytes": "0xsig"}, received["trustedData"])
	untrusted := received["untrustedData"].(map[string]any)
	assert.Equal(t, "identity", untrusted["identityToken"])
	assert.EqualValues(t, 1700000000, untrusted["unixTimestamp"])
	assert.Equal(t, "0x05", untrusted["profileId"])
	assert.EqualValues(t, 42, untrusted["deadline"])

	assert.Equal(t, results{"html"}, seen)
}

func TestService_PostTransaction(t *testing.T) {
	reply := `{"chainId":"eip155:8453","method":"eth_sendTransaction","params":{"data":"0x","to":"0xabc","value":"0"}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	defer srv.Close()

	svc := frames.NewService(&fakeSigner{})
	res, err := svc.Post(context.Background(), domain.Identity{ID: "0x05"}, tokens, domain.FrameActionRequest{
		ButtonAction: "tx", ButtonIndex: 1, PostURL: srv.URL, PubID: "0x05-0x01",
	})
	require.NoError(t, err)
	assert.Nil(t, res.Frame)
	assert.JSONEq(t, reply, string(res.Transaction))
}

func TestService_PostTransactionPassthrough(t *testing.T) {
	replies := []string{
		`{"chainId":8453,"method":"eth_sendTransaction","params":{"data":"0x","to":"0xabc","value":"0"}}`,
		`{"chainId":"eip155:8453","method":"eth_sendTransaction","params":{"abi":[],"data":"0x","to":"0xabc","value":"0"},"attribution":false}`,
		`[1,2,3]`,
	}
	for _, reply := range replies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(reply))
		}))

		res, err := frames.NewService(&fakeSigner{}).Post(context.Background(), domain.Identity{ID: "0x05"}, tokens, domain.FrameActionRequest{
			ButtonAction: "tx", ButtonIndex: 1, PostURL: srv.URL, PubID: "0x05-0x01",
		})
		srv.Close()
		require.NoError(t, err, reply)
		assert.JSONEq(t, reply, string(res.Transaction))
	}
}

func TestService_PostTransactionNotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	_, err := frames.NewService(&fakeSigner{}).Post(context.Background(), domain.Identity{ID: "0x05"}, tokens, domain.FrameActionRequest{
		ButtonAction: "tx", ButtonIndex: 1, PostURL: srv.URL, PubID: "0x05-0x01",
	})
	assert.ErrorIs(t, err, frames.ErrInvalidTransaction)
}

func TestService_PostNoFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>nothing here</body></html>"))
	}))
	defer srv.Close()

	res, err := frames.NewService(&fakeSigner{}).Post(context.Background(), domain.Identity{}, tokens, domain.FrameActionRequest{PostURL: srv.URL})
	require.NoError(t, err)
	assert.Nil(t, res.Frame)
}

func TestService_PostRejectsURL(t *testing.T) {
	signer := &fakeSigner{}
	svc := frames.NewService(signer)

	for _, raw := range []string{"", "ftp://frame.example", "/relative", "javascript:alert(1)"} {
		_, err := svc.Post(context.Background(), domain.Identity{ID: "0x01"}, tokens, domain.FrameActionRequest{PostURL: raw})
		assert.ErrorIs(t, err, frames.ErrInvalidPostURL, raw)
	}
	assert.Empty(t, signer.token, "signer must not be called for rejected urls")
}

func TestService_PostSignerError(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	boom := errors.New("boom")
	var seen results
	svc := frames.NewService(&fakeSigner{err: boom}, frames.WithObserver(&seen))
	_, err := svc.Post(context.Background(), domain.Identity{ID: "0x01"}, tokens, domain.FrameActionRequest{PostURL: srv.URL})
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
	assert.Equal(t, results{"sign_error"}, seen)
}

func TestService_PostUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"too large", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", frames.MaxResponseSize+10)))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := frames.NewService(&fakeSigner{}).Post(context.Background(), domain.Identity{}, tokens, domain.FrameActionRequest{PostURL: srv.URL})
			assert.Error(t, err)
		})
	}
}

func TestService_FetchOEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(framePage))
	}))
	defer srv.Close()

	oembed, err := frames.NewService(&fakeSigner{}).FetchOEmbed(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Counter", oembed.Title)
	require.NotNil(t, oembed.Frame)
	assert.Len(t, oembed.Frame.Buttons, 3)
}
