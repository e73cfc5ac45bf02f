package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/atinyakov/xenon/internal/backend"
	"github.com/atinyakov/xenon/internal/backend/memory"
	"github.com/atinyakov/xenon/internal/certgen"
	"github.com/atinyakov/xenon/internal/models"
	server "github.com/atinyakov/xenon/internal/server/handler/http"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const masterpw = "master"

var (
	secret = []byte("12345678901234567890")
	now    = time.Unix(1111111109, 0)
)

func newStore() *memory.Store {
	return memory.New(
		memory.WithCost(bcrypt.MinCost),
		memory.WithRandom(bytes.NewReader(secret)),
		memory.WithClock(func() time.Time { return now }),
	)
}

func newServer(t *testing.T, be backend.Backend) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(server.NewRouter(&server.CommandHandler{Backend: be}, zap.NewNop(), false))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RoundTrip(t *testing.T) {
	srv := newServer(t, newStore())
	c := New(srv.URL + "/")
	ctx := context.Background()

	reg, err := c.Register(ctx, masterpw)
	require.NoError(t, err)
	require.True(t, reg.Success)
	assert.NotEmpty(t, reg.QRCode)

	ok, err := c.Login(ctx, masterpw, memory.Code(secret, now))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Login(ctx, masterpw, "000000")
	require.NoError(t, err)
	assert.False(t, ok)

	id, err := c.Add(ctx, models.Entry{Website: "example.com", Username: "alice", Password: "Tr0ub4dor&3", Notes: "n"}, masterpw)
	require.NoError(t, err)
	require.NoError(t, uuid.Validate(id))
	_, err = c.Add(ctx, models.Entry{Website: "other.org", Username: "bob"}, masterpw)
	require.NoError(t, err)

	rows, err := c.GetAll(ctx, masterpw)
	require.NoError(t, err)
	require.NoError(t, rows.Validate())
	assert.Equal(t, []string{"example.com", "other.org"}, rows.Websites)

	rows, err = c.GetOnly(ctx, "bo", models.FilterUsername, masterpw)
	require.NoError(t, err)
	assert.Equal(t, []string{"other.org"}, rows.Websites)

	require.NoError(t, c.Edit(ctx, id, models.Entry{Website: "example.net", Username: "alice"}, masterpw))
	e, err := c.GetRow(ctx, id, masterpw)
	require.NoError(t, err)
	assert.Equal(t, models.Entry{ID: id, Website: "example.net", Username: "alice"}, e)

	require.NoError(t, c.Delete(ctx, id, masterpw))
	require.NoError(t, c.Print(ctx, "hello"))

	require.NoError(t, c.ChangeMasterPassword(ctx, masterpw, "rotated"))
	rows, err = c.GetAll(ctx, "rotated")
	require.NoError(t, err)
	assert.Equal(t, 1, rows.Len())
}

func TestClient_ErrorsMapToSentinels(t *testing.T) {
	store := newStore()
	_, err := store.Register(context.Background(), masterpw)
	require.NoError(t, err)
	c := New(newServer(t, store).URL)
	ctx := context.Background()

	_, err = c.GetAll(ctx, "wrong")
	assert.ErrorIs(t, err, backend.ErrUnauthorized)

	_, err = c.GetRow(ctx, "missing", masterpw)
	assert.ErrorIs(t, err, backend.ErrNotFound)

	_, err = c.GetOnly(ctx, "x", "notes", masterpw)
	assert.ErrorIs(t, err, models.ErrUnknownFilterField)

	err = c.ChangeMasterPassword(ctx, masterpw, "")
	assert.ErrorIs(t, err, backend.ErrEmptyPassword)

	err = c.Delete(ctx, "", masterpw)
	assert.ErrorIs(t, err, backend.ErrBadRequest)
}

func TestClient_SendsRequestID(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get(RequestIDHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "/api/print", r.URL.Path)

		var req backend.Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ping", req.Msg)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.Print(context.Background(), "ping"))
	require.NoError(t, c.Print(context.Background(), "ping"))

	require.Len(t, got, 2)
	assert.NoError(t, uuid.Validate(got[0]))
	assert.NotEqual(t, got[0], got[1])
}

func TestClient_UnstructuredError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetAll(context.Background(), masterpw)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, backend.CmdGetAll, se.Command)
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.Equal(t, "bad gateway", se.Message)
}

func TestClient_InternalErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(backend.ErrorResponse{Error: backend.CodeInternal, Message: "internal error"})
	}))
	defer srv.Close()

	err := New(srv.URL).Print(context.Background(), "x")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, backend.CodeInternal, se.Code)
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := newServer(t, newStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL).GetAll(ctx, masterpw)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_MutualTLS(t *testing.T) {
	dir := t.TempDir()
	ca, err := certgen.NewCA("Test CA", time.Hour)
	require.NoError(t, err)
	serverPair, err := ca.IssueServer([]string{"127.0.0.1"}, time.Hour)
	require.NoError(t, err)
	clientPair, err := ca.IssueClient("xenon-client", time.Hour)
	require.NoError(t, err)
	require.NoError(t, certgen.WriteFiles(dir, certgen.CACert, certgen.CAKey, ca.Pair()))
	require.NoError(t, certgen.WriteFiles(dir, certgen.ClientCert, certgen.ClientKey, clientPair))

	serverCert, err := serverPair.TLS()
	require.NoError(t, err)

	store := newStore()
	srv := httptest.NewUnstartedServer(server.NewRouter(&server.CommandHandler{Backend: store}, zap.NewNop(), true))
	srv.TLS = &tls.Config{
		Certificates: []tls.Certificate{serverCert},
		ClientCAs:    ca.Pool(),
		ClientAuth:   tls.VerifyClientCertIfGiven,
	}
	srv.StartTLS()
	defer srv.Close()

	caFile := filepath.Join(dir, certgen.CACert)

	hc, err := NewHTTPClient(caFile, filepath.Join(dir, certgen.ClientCert), filepath.Join(dir, certgen.ClientKey))
	require.NoError(t, err)
	reg, err := New(srv.URL, WithHTTPClient(hc)).Register(context.Background(), masterpw)
	require.NoError(t, err)
	assert.True(t, reg.Success)

	anon, err := NewHTTPClient(caFile, "", "")
	require.NoError(t, err)
	_, err = New(srv.URL, WithHTTPClient(anon)).GetAll(context.Background(), masterpw)
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}

func TestNewHTTPClient_Errors(t *testing.T) {
	_, err := NewHTTPClient("", "client.crt", "")
	assert.Error(t, err)

	_, err = NewHTTPClient(filepath.Join(t.TempDir(), "missing.crt"), "", "")
	assert.ErrorContains(t, err, "failed to read CA cert")
}
