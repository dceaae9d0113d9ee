package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(opts Options) *Server {
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = 1 << 10
	}
	return New(opts, log.New(io.Discard))
}

type testResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, contentType, body string) (int, testResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp testResponse
	if rec.Code != http.StatusMethodNotAllowed {
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func TestHandler_Unpack(t *testing.T) {
	h := newTestServer(Options{}).Handler()

	code, resp := do(t, h, http.MethodPost, "/unpack", "application/json", `{"input":"a3[bc]4[d]e"}`)
	require.Equal(t, http.StatusOK, code)

	var res unpackResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	assert.Equal(t, "a3[bc]4[d]e", res.Input)
	assert.Equal(t, "abcbcbcdddde", res.Output)
	assert.Equal(t, 2, res.Stats.Groups)
	assert.Equal(t, uint64(12), res.Stats.UnpackedLen)
}

func TestHandler_UnpackForm(t *testing.T) {
	h := newTestServer(Options{}).Handler()

	form := url.Values{"input": {"2[3[x]y]"}}.Encode()
	code, resp := do(t, h, http.MethodPost, "/unpack", "application/x-www-form-urlencoded", form)
	require.Equal(t, http.StatusOK, code)

	var res unpackResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	assert.Equal(t, "xxxyxxxy", res.Output)
}

func TestHandler_UnpackInvalid(t *testing.T) {
	h := newTestServer(Options{}).Handler()

	tests := []struct {
		body string
		want string
	}{
		{`{"input":""}`, "must contain non-whitespace characters"},
		{`{"input":"[abc]"}`, "first character must be a letter or digit"},
		{`{"input":"a1[b]!"}`, "unsupported character"},
		{`{"input":"2[a"}`, "invalid bracket positioning"},
		{`{"input":"a3"}`, "invalid character positioning"},
		{`{}`, "must contain non-whitespace characters"},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			code, resp := do(t, h, http.MethodPost, "/unpack", "application/json", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.want, resp.Error)
		})
	}
}

func TestHandler_UnpackTooLarge(t *testing.T) {
	h := newTestServer(Options{MaxUnpackedLen: 10}).Handler()

	code, resp := do(t, h, http.MethodPost, "/unpack", "application/json", `{"input":"11[a]"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Equal(t, "unpacked text too large", resp.Error)

	code, _ = do(t, h, http.MethodPost, "/unpack", "application/json", `{"input":"10[a]"}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestHandler_BadBody(t *testing.T) {
	h := newTestServer(Options{MaxBodyBytes: 16}).Handler()

	code, resp := do(t, h, http.MethodPost, "/unpack", "application/json", `{"input":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid request body", resp.Error)

	code, resp = do(t, h, http.MethodPost, "/unpack", "application/json", `{"input":"`+strings.Repeat("a", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Equal(t, "request body too large", resp.Error)
}

func TestHandler_Validate(t *testing.T) {
	h := newTestServer(Options{}).Handler()

	code, resp := do(t, h, http.MethodPost, "/validate", "application/json; charset=utf-8", `{"input":"2a[b]"}`)
	require.Equal(t, http.StatusOK, code)

	var res validateResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	assert.Equal(t, validateResult{
		Valid:   false,
		Kind:    "character_adjacency",
		Message: "invalid character positioning",
	}, res)

	_, resp = do(t, h, http.MethodPost, "/validate", "application/json", `{"input":"3[a]"}`)
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	assert.Equal(t, validateResult{Valid: true, Kind: "none"}, res)
}

func TestHandler_HealthAndMethods(t *testing.T) {
	h := newTestServer(Options{}).Handler()

	code, resp := do(t, h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `"ok"`, string(resp.Result))

	code, _ = do(t, h, http.MethodGet, "/unpack", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := newTestServer(Options{MaxConns: 2, ReadTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/unpack", "application/json", strings.NewReader(`{"input":"3[a]"}`))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"output":"aaa"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
