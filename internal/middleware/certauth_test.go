package middleware

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// recordingHandler records whether it was called and the context it received.
type recordingHandler struct {
	called bool
	ctx    context.Context
}

func (d *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

func TestCertAuth_OptionalWithoutCertificate(t *testing.T) {
	next := &recordingHandler{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/get_all", nil)

	CertAuth(false)(next).ServeHTTP(rec, req)

	if !next.called {
		t.Fatal("expected next handler to be called")
	}
	if got := ClientFromContext(next.ctx); got != "" {
		t.Errorf("expected empty client, got %q", got)
	}
}

func TestCertAuth_RequiredWithoutCertificate(t *testing.T) {
	next := &recordingHandler{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/get_all", nil)

	CertAuth(true)(next).ServeHTTP(rec, req)

	if next.called {
		t.Error("did not expect next handler to be called when no certificate provided")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 Unauthorized, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"unauthorized"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestCertAuth_ValidCertificate(t *testing.T) {
	cert := &x509.Certificate{Subject: pkix.Name{CommonName: "xenon-client"}}
	next := &recordingHandler{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/get_all", nil)
	req.TLS = &tls.ConnectionState{PeerCertificates: []*x509.Certificate{cert}}

	CertAuth(true)(next).ServeHTTP(rec, req)

	if !next.called {
		t.Fatal("expected next handler to be called when valid certificate provided")
	}
	if got := ClientFromContext(next.ctx); got != "xenon-client" {
		t.Errorf("expected client 'xenon-client', got %q", got)
	}
}

func TestClientFromContext(t *testing.T) {
	if got := ClientFromContext(context.Background()); got != "" {
		t.Errorf("expected empty string for missing client, got %q", got)
	}
	ctx := context.WithValue(context.Background(), clientKey, "bob")
	if got := ClientFromContext(ctx); got != "bob" {
		t.Errorf("expected 'bob', got %q", got)
	}
}
