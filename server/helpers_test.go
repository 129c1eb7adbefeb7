package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/gomega"

	"github.com/existflow/toedo/internal/store/storetest"
	"github.com/existflow/toedo/server"
)

type harness struct {
	backend *storetest.Backend
	srv     *server.Server
}

func newHarness() *harness {
	backend := storetest.NewBackend()
	return &harness{
		backend: backend,
		srv:     server.New(backend, server.Config{ExposeMagicToken: true}),
	}
}

type request struct {
	method   string
	path     string
	body     any
	token    string
	password string
}

func (h *harness) do(r request) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if r.body != nil {
		Expect(json.NewEncoder(&buf).Encode(r.body)).To(Succeed())
	}
	req := httptest.NewRequest(r.method, r.path, &buf)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.password != "" {
		req.Header.Set(server.HeaderWorkspacePassword, r.password)
	}
	rec := httptest.NewRecorder()
	h.srv.Router().ServeHTTP(rec, req)
	return rec
}

// register signs up a user and returns the auth response
func (h *harness) register(email string) server.AuthResponse {
	rec := h.do(request{
		method: http.MethodPost,
		path:   "/api/v1/register",
		body:   map[string]string{"email": email, "password": "secret123"},
	})
	Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

	var auth server.AuthResponse
	decode(rec, &auth)
	return auth
}

func decode(rec *httptest.ResponseRecorder, v any) {
	Expect(json.Unmarshal(rec.Body.Bytes(), v)).To(Succeed(), rec.Body.String())
}

func errorOf(rec *httptest.ResponseRecorder) string {
	var body map[string]string
	decode(rec, &body)
	return body["error"]
}
