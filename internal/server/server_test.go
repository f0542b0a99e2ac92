package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdara/siteops/internal/chat"
	"github.com/verdara/siteops/internal/config"
	"github.com/verdara/siteops/pkg/types"
)

type mockBlob struct {
	puts []string
	err  error
}

func (m *mockBlob) Put(_ context.Context, name, _ string, _ []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.puts = append(m.puts, name)
	return "https://cdn.example.com/" + name, nil
}

type mockCompleter struct {
	lastMessages []chat.Message
	reply        string
	err          error
}

func (m *mockCompleter) Complete(_ context.Context, messages []chat.Message) (string, error) {
	m.lastMessages = messages
	return m.reply, m.err
}

type stubExtractor struct{}

func (stubExtractor) Extract(data []byte) (string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return "", types.ErrExtraction
	}
	return "extracted pdf text", nil
}

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *mockBlob, *mockCompleter) {
	t.Helper()
	cfg := &config.Config{
		Port:         "0",
		AdminToken:   "secret-token",
		LeadsCSVPath: filepath.Join(t.TempDir(), "leads.csv"),
	}
	if mutate != nil {
		mutate(cfg)
	}
	b := &mockBlob{}
	cm := &mockCompleter{reply: "hello from the assistant"}
	return New(cfg, b, cm, stubExtractor{}, nil), b, cm
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody(t, resp)["status"])
}

func TestAdminGating(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	t.Run("missing token", func(t *testing.T) {
		resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/leads", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
		req.Header.Set("X-Admin-Token", "guess")
		resp, err := s.App().Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("correct token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
		req.Header.Set("X-Admin-Token", "secret-token")
		resp, err := s.App().Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("no token configured disables route", func(t *testing.T) {
		unconfigured, _, _ := newTestServer(t, func(c *config.Config) { c.AdminToken = "" })
		req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
		req.Header.Set("X-Admin-Token", "")
		resp, err := unconfigured.App().Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestLeads(t *testing.T) {
	s, _, _ := newTestServer(t, nil)
	csv := "name,email,company\nAda,ada@example.com,Lovelace Ltd\nAlan,alan@example.com,Turing Co\n"
	require.NoError(t, os.WriteFile(s.cfg.LeadsCSVPath, []byte(csv), 0o644))

	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	req.Header.Set("X-Admin-Token", "secret-token")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 2, body["count"])
	headers := body["headers"].([]any)
	assert.Equal(t, "name", headers[0])
	rows := body["rows"].([]any)
	require.Len(t, rows, 2)
}

func TestLeadsMissingFile(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	req.Header.Set("X-Admin-Token", "secret-token")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, decodeBody(t, resp)["count"])
}

func TestUpload(t *testing.T) {
	s, b, _ := newTestServer(t, nil)

	body, contentType := multipartBody(t, "evidence.pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Admin-Token", "secret-token")

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	url := out["url"].(string)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/"), "url = %s", url)
	assert.True(t, strings.HasSuffix(url, "-evidence.pdf"))
	require.Len(t, b.puts, 1)
}

func TestUploadBlobFailure(t *testing.T) {
	s, b, _ := newTestServer(t, nil)
	b.err = fmt.Errorf("store offline")

	body, contentType := multipartBody(t, "evidence.pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Admin-Token", "secret-token")

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestChat(t *testing.T) {
	s, _, cm := newTestServer(t, nil)

	payload := `{"message":"what is a scope 3 audit?","history":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello from the assistant", decodeBody(t, resp)["reply"])

	require.Len(t, cm.lastMessages, 3, "history plus the new message")
	assert.Equal(t, "what is a scope 3 audit?", cm.lastMessages[2].Content)
}

func TestChatValidation(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExtract(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	send := func(t *testing.T, filename string, content []byte) *http.Response {
		t.Helper()
		body, contentType := multipartBody(t, filename, content)
		req := httptest.NewRequest(http.MethodPost, "/api/extract", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := s.App().Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("pdf", func(t *testing.T) {
		resp := send(t, "doc.pdf", []byte("%PDF-1.4 fake"))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "extracted pdf text", decodeBody(t, resp)["text"])
	})

	t.Run("broken pdf", func(t *testing.T) {
		resp := send(t, "doc.pdf", []byte("garbage"))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("csv preview", func(t *testing.T) {
		resp := send(t, "leads.csv", []byte("a,b\n1,2\n"))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "a,b\n1,2", decodeBody(t, resp)["text"])
	})

	t.Run("plain text", func(t *testing.T) {
		resp := send(t, "about.txt", []byte("  our services \r\n"))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "our services", decodeBody(t, resp)["text"])
	})
}
