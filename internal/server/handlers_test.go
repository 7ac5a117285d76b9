package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/farol-inclusivo/farol-matcher/internal/compatibility"
	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

const frontendJobJSON = `{"id":10,"title":"Desenvolvedor Frontend","description":"React, TypeScript","remote_work":true,"is_active":true,"company":{"id":1,"name":"Acme","is_inclusive":true}}`

func newTestServer(t *testing.T, upstream *farol.Client) (*Server, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zap.InfoLevel)
	return New(Config{}, nil, upstream, zap.New(core)), logs
}

func do(t *testing.T, s *Server, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndRequestID(t *testing.T) {
	s, logs := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	generated := rec.Header().Get(headerRequestID)
	assert.Len(t, generated, 36)

	const supplied = "6f1c2b8e-3a7d-4c55-9d0e-2b1f4a6c8e90"
	rec = do(t, s, http.MethodGet, "/healthz", "", map[string]string{headerRequestID: supplied})
	assert.Equal(t, supplied, rec.Header().Get(headerRequestID))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, supplied, entries[1].ContextMap()["request_id"])
	assert.Equal(t, "/healthz", entries[1].ContextMap()["path"])
}

func TestScoreJob(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/compatibility", `{"job":`+frontendJobJSON+`}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[scoreResponse](t, rec)
	assert.Equal(t, 10, resp.JobID)
	assert.Equal(t, 72, resp.Score.Score)
	assert.Equal(t, compatibility.BandMedium, resp.Band)
	assert.Equal(t, "Compatibilidade média", resp.Label)
	assert.Equal(t, 75, resp.Factors.Accessibility)

	withDisability := `{"profile":{"has_disability":true,"experience_summary":"React júnior"},"job":` +
		strings.Replace(frontendJobJSON, `"is_inclusive":true`, `"is_inclusive":false`, 1) + `}`
	rec = do(t, s, http.MethodPost, "/api/v1/compatibility", withDisability, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 40, decode[scoreResponse](t, rec).Factors.Accessibility)
}

func TestScoreJobValidation(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/compatibility", `{"profile":{}}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[errorResponse](t, rec)
	assert.Equal(t, codeBadRequest, resp.Code)
	assert.Equal(t, "request validation failed", resp.Message)
	assert.NotEmpty(t, resp.RequestID)

	rec = do(t, s, http.MethodPost, "/api/v1/compatibility", `{"job":`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeBadRequest, decode[errorResponse](t, rec).Code)
}

func TestScoreBatch(t *testing.T) {
	s, _ := newTestServer(t, nil)

	body := `{
		"jobs": [
			{"id": 1, "title": "Designer", "description": "Figma"},
			{"id": 2, "title": "Desenvolvedor Python", "description": "Vaga para backend com Django e Docker", "location": "São Paulo, SP"},
			` + frontendJobJSON + `
		],
		"min_score": 71,
		"sort": true
	}`

	rec := do(t, s, http.MethodPost, "/api/v1/compatibility/batch", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[jobsResponse](t, rec)
	assert.Equal(t, profileSourceDefault, resp.ProfileSource)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, 2, resp.Jobs[0].ID)
	assert.Equal(t, 91, resp.Jobs[0].ScoreValue())
	assert.Equal(t, 10, resp.Jobs[1].ID)

	rec = do(t, s, http.MethodPost, "/api/v1/compatibility/batch", `{"jobs": [], "min_score": 101}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/compatibility/batch", `{"jobs": []}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[jobsResponse](t, rec).Count)
}

func newUpstream(t *testing.T, profileStatus int) (*farol.Client, func() []string) {
	t.Helper()

	var (
		mu     sync.Mutex
		tokens []string
	)
	record := func(r *http.Request) {
		mu.Lock()
		tokens = append(tokens, r.Header.Get("Authorization"))
		mu.Unlock()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/profile/me", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if profileStatus != http.StatusOK {
			w.WriteHeader(profileStatus)
			_, _ = w.Write([]byte(`{"detail":"no profile"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"location":"Recife, PE","has_disability":true,"experience_summary":"Desenvolvedora júnior React"}`))
	})
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if r.URL.Query().Get("offset") != "0" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[
			{"id":1,"title":"Frontend júnior","description":"React","location":"Recife, PE","is_active":true,"company":{"id":1,"name":"Acme","is_inclusive":true}},
			{"id":2,"title":"Backend sênior","description":"Java","location":"Porto Alegre, RS","is_active":true},
			{"id":3,"title":"Frontend","description":"React","is_active":false}
		]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := farol.New(zap.NewNop(), "")
	client.APIURL = srv.URL

	seen := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), tokens...)
	}
	return client, seen
}

func TestMatchesForwardsToken(t *testing.T) {
	upstream, tokens := newUpstream(t, http.StatusOK)
	s, _ := newTestServer(t, upstream)

	rec := do(t, s, http.MethodGet, "/api/v1/matches?limit=1", "", map[string]string{"Authorization": "Bearer user-token"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[jobsResponse](t, rec)
	assert.Equal(t, profileSourceAPI, resp.ProfileSource)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, 1, resp.Jobs[0].ID)
	assert.Equal(t, 100, resp.Jobs[0].Compatibility.Factors.Accessibility)

	require.NotEmpty(t, tokens())
	for _, token := range tokens() {
		assert.Equal(t, "Bearer user-token", token)
	}
}

func TestMatchesFallsBackToDefaultPersona(t *testing.T) {
	upstream, _ := newUpstream(t, http.StatusNotFound)
	s, _ := newTestServer(t, upstream)

	rec := do(t, s, http.MethodGet, "/api/v1/matches", "", map[string]string{"Authorization": "Bearer t"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[jobsResponse](t, rec)
	assert.Equal(t, profileSourceDefault, resp.ProfileSource)
	assert.Equal(t, 2, resp.Count, "inactive jobs are dropped")
}

func TestMatchesErrors(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/api/v1/matches", "", map[string]string{"Authorization": "Bearer t"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	upstream, _ := newUpstream(t, http.StatusUnauthorized)
	s, _ = newTestServer(t, upstream)

	rec = do(t, s, http.MethodGet, "/api/v1/matches", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "bearer token is required", decode[errorResponse](t, rec).Message)

	rec = do(t, s, http.MethodGet, "/api/v1/matches", "", map[string]string{"Authorization": "Bearer expired"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, codeUnauthorized, decode[errorResponse](t, rec).Code)

	rec = do(t, s, http.MethodGet, "/api/v1/matches?min_score=150", "", map[string]string{"Authorization": "Bearer t"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}
