package web

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/qrbatch/internal/render"
	"github.com/rshade/qrbatch/internal/style"
)

func newTestServer(t *testing.T, r render.Renderer) *Server {
	t.Helper()
	return NewServer(Options{
		Style:    style.Default(),
		Renderer: r,
		Version:  "1.2.3",
	}, zerolog.Nop())
}

func multipartBody(t *testing.T, file string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != "" {
		part, err := w.CreateFormFile("file", file)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.2.3"}`, rec.Body.String())

	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err, "every response carries a request id")
}

func TestRequestID_ReusesIncoming(t *testing.T) {
	s := newTestServer(t, nil)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}

func TestQR(t *testing.T) {
	s := newTestServer(t, nil)

	body := `{"data":"https://example.com","style":{"format":"svg","dots":"dots"},"size":200}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/qr", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `width="200"`)
}

func TestQR_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed", `{"data":`, http.StatusBadRequest},
		{"no data", `{"data":""}`, http.StatusBadRequest},
		{"bad style", `{"data":"x","style":{"dots":"hearts"}}`, http.StatusBadRequest},
		{"too long", `{"data":"` + strings.Repeat("9", 8000) + `"}`, http.StatusUnprocessableEntity},
	}

	s := newTestServer(t, nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/qr", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
}

func TestBulk(t *testing.T) {
	var seen []style.Config
	s := newTestServer(t, render.RendererFunc(func(_ context.Context, req render.Request) ([]byte, error) {
		seen = append(seen, req.Style)
		return []byte(req.Data), nil
	}))

	body, ct := multipartBody(t, "people.csv", []byte("Name,Data\nAlice,111\nBob,222\n"), map[string]string{
		"color":  "#ED6A33",
		"format": "jpeg",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bulk", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qr-codes.zip"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "0", rec.Header().Get("X-QRBatch-Skipped"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Alice.jpeg", "Bob.jpeg"}, names)

	require.Len(t, seen, 2)
	assert.Equal(t, "#ED6A33", seen[0].Color)
}

func TestBulk_NoFile(t *testing.T) {
	s := newTestServer(t, nil)

	body, ct := multipartBody(t, "", nil, map[string]string{"color": "#000000"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bulk", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgNoFile, decodeError(t, rec).Error)
}

func TestBulk_EmptyInput(t *testing.T) {
	s := newTestServer(t, nil)

	body, ct := multipartBody(t, "people.csv", []byte("Name,Data\n"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bulk", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "No records found in file.", decodeError(t, rec).Error)
}

func TestBulk_RenderFailure(t *testing.T) {
	s := newTestServer(t, render.RendererFunc(func(_ context.Context, req render.Request) ([]byte, error) {
		if strings.HasPrefix(req.Data, "Bob") {
			return nil, errors.New("boom")
		}
		return []byte("ok"), nil
	}))

	body, ct := multipartBody(t, "people.csv", []byte("Name,Data\nAlice,1\nBob,2\nCarol,3\n"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bulk", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, 2, resp.Index)
	assert.Equal(t, "Bob", resp.Name)
	assert.True(t, strings.HasPrefix(resp.Status, "❌ "))
	assert.NotEmpty(t, resp.RunID)
}

func TestBulk_InvalidStyleField(t *testing.T) {
	s := newTestServer(t, nil)

	body, ct := multipartBody(t, "people.csv", []byte("Name\nA\n"), map[string]string{"dots": "hearts"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bulk", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "hearts")
}

func TestBulk_OneAtATime(t *testing.T) {
	s := newTestServer(t, nil)
	s.bulkMu.Lock()
	defer s.bulkMu.Unlock()

	body, ct := multipartBody(t, "people.csv", []byte("Name\nA\n"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bulk", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBulk_TooLarge(t *testing.T) {
	s := NewServer(Options{Style: style.Default(), MaxUploadMB: 1}, zerolog.Nop())

	body, ct := multipartBody(t, "big.csv", bytes.Repeat([]byte("a,b\n"), 1<<19), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bulk", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := NewServer(Options{Addr: "127.0.0.1:0", Style: style.Default()}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Run(ctx))
}
