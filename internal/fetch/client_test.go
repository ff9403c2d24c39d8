package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayference/tengen/internal/config"
)

func TestNewClientUsesConfigTimeouts(t *testing.T) {
	cfg := &config.Config{
		Global: config.GlobalConfig{
			HTTPTimeout: config.Duration(45 * time.Second),
			FTPTimeout:  config.Duration(10 * time.Second),
			UserAgent:   "tengen-test",
		},
	}

	client := NewClient(cfg)
	assert.Equal(t, 45*time.Second, client.http.Timeout)
	assert.Equal(t, 10*time.Second, client.ftpTimeout)

	assert.Equal(t, 60*time.Second, NewClient(nil).http.Timeout)
}

func TestFetchReturnsBodyAndSendsUserAgent(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("300.0 1.0\n"))
	}))
	defer srv.Close()

	client := NewClient(&config.Config{Global: config.GlobalConfig{UserAgent: "tengen-test"}})
	body, err := client.Fetch(context.Background(), srv.URL+"/f0.txt")
	require.NoError(t, err)
	assert.Equal(t, "300.0 1.0\n", string(body))
	assert.Equal(t, "tengen-test", gotAgent)
}

func TestFetchStatusErrorIsNotNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(nil).Fetch(context.Background(), srv.URL)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.False(t, IsNetworkError(err))
}

func TestFetchUnreachableIsNetworkError(t *testing.T) {
	addr := closedAddr(t)

	_, err := NewClient(nil).Fetch(context.Background(), "http://"+addr+"/x")
	require.Error(t, err)
	assert.True(t, IsNetworkError(err), "%v", err)

	_, err = NewClient(nil).Fetch(context.Background(), "ftp://"+addr+"/pub/x.nc")
	require.Error(t, err)
	assert.True(t, IsNetworkError(err), "%v", err)
}

func TestFetchRedirectFailuresAreNotNetworkErrors(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/elsewhere" {
			http.Redirect(w, r, "gopher://example.org/x", http.StatusFound)
			return
		}
		http.Redirect(w, r, srv.URL+"/loop", http.StatusFound)
	}))
	defer srv.Close()

	_, err := NewClient(nil).Fetch(context.Background(), srv.URL+"/loop")
	require.Error(t, err)
	assert.False(t, IsNetworkError(err), "redirect loop: %v", err)

	_, err = NewClient(nil).Fetch(context.Background(), srv.URL+"/elsewhere")
	require.Error(t, err)
	assert.False(t, IsNetworkError(err), "bad redirect scheme: %v", err)
}

func TestFetchTimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(&config.Config{Global: config.GlobalConfig{HTTPTimeout: config.Duration(20 * time.Millisecond)}})
	_, err := client.Fetch(context.Background(), srv.URL)
	assert.True(t, IsNetworkError(err), "%v", err)
}

func TestFetchCancelledIsNotNetworkError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(nil).Fetch(ctx, "http://"+closedAddr(t))
	require.Error(t, err)
	assert.False(t, IsNetworkError(err))
}

func TestFetchRejectsUnknownScheme(t *testing.T) {
	_, err := NewClient(nil).Fetch(context.Background(), "gopher://example.org/x")
	require.Error(t, err)
	assert.False(t, IsNetworkError(err))
}

func TestDownloadWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "raw", "spectrum.dat.gz")
	n, err := NewClient(nil).Download(context.Background(), srv.URL, dst)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestDownloadFailureLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "x")
	_, err := NewClient(nil).Download(context.Background(), srv.URL, dst)
	require.Error(t, err)
	_, statErr := os.Stat(dst)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestNetworkErrorUnwraps(t *testing.T) {
	inner := errors.New("connection reset")
	err := error(&NetworkError{URL: "http://x", Err: inner})
	assert.ErrorIs(t, err, inner)
	assert.True(t, IsNetworkError(errors.Join(errors.New("outer"), err)))
}

// closedAddr returns a loopback address nothing listens on.
func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}
