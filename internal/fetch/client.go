package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rayference/tengen/internal/config"
)

// Fetcher retrieves remote resources.
type Fetcher interface {
	// Fetch returns the full body of rawURL.
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
	// Download streams rawURL into dst, which is created or truncated.
	Download(ctx context.Context, rawURL, dst string) (int64, error)
}

var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          10,
	MaxIdleConnsPerHost:   4,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// Client fetches over HTTP(S) and anonymous FTP.
type Client struct {
	http       *http.Client
	ftpTimeout time.Duration
	userAgent  string
}

// NewClient builds a Client from the configured timeouts and user agent. A
// nil cfg selects 60 second timeouts.
func NewClient(cfg *config.Config) *Client {
	httpTimeout := 60 * time.Second
	ftpTimeout := 60 * time.Second
	userAgent := ""
	if cfg != nil {
		if d := cfg.Global.HTTPTimeout.DurationValue(); d > 0 {
			httpTimeout = d
		}
		if d := cfg.Global.FTPTimeout.DurationValue(); d > 0 {
			ftpTimeout = d
		}
		userAgent = cfg.Global.UserAgent
	}

	return &Client{
		http: &http.Client{
			Timeout:   httpTimeout,
			Transport: defaultTransport.Clone(),
		},
		ftpTimeout: ftpTimeout,
		userAgent:  userAgent,
	}
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := c.open(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, classify(ctx, rawURL, err)
	}
	return data, nil
}

// Download implements Fetcher. A partially written dst is removed on error.
func (c *Client) Download(ctx context.Context, rawURL, dst string) (int64, error) {
	body, err := c.open(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	written, copyErr := copyWithContext(ctx, f, body)
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(dst)
		return written, classify(ctx, rawURL, copyErr)
	}
	if closeErr != nil {
		os.Remove(dst)
		return written, closeErr
	}
	return written, nil
}

func (c *Client) open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "http", "https":
		return c.openHTTP(ctx, rawURL)
	case "ftp":
		return c.openFTP(ctx, u)
	default:
		return nil, fmt.Errorf("unsupported url scheme %q in %s", u.Scheme, rawURL)
	}
}

func (c *Client) openHTTP(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(ctx, rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}
	return resp.Body, nil
}

// classify wraps connectivity failures as NetworkError: dial, DNS, timeouts,
// TLS handshakes, resets and truncated responses. Anything else, such as a
// redirect loop, is returned unchanged, as is cancellation by the caller.
func classify(ctx context.Context, rawURL string, err error) error {
	if ctx.Err() == context.Canceled || errors.Is(err, context.Canceled) {
		return err
	}
	if isConnectivity(err) {
		return &NetworkError{URL: rawURL, Err: err}
	}
	return err
}

func isConnectivity(err error) bool {
	var (
		opErr     *net.OpError
		dnsErr    *net.DNSError
		netErr    net.Error
		recordErr tls.RecordHeaderError
		certErr   *tls.CertificateVerificationError
	)
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr),
		errors.As(err, &recordErr), errors.As(err, &certErr):
		return true
	case errors.As(err, &netErr) && netErr.Timeout():
		return true
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF),
		errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNABORTED), errors.Is(err, syscall.EPIPE):
		return true
	default:
		return false
	}
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var copied int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			w, wErr := dst.Write(buf[:n])
			copied += int64(w)
			if wErr != nil {
				return copied, wErr
			}
			if w < n {
				return copied, io.ErrShortWrite
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return copied, nil
			}
			return copied, err
		}
	}
}
