package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/textproto"
	"net/url"

	"github.com/jlaffaye/ftp"
)

const defaultFTPPort = "21"

// ftpBody closes the data transfer and the control connection together.
type ftpBody struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (b *ftpBody) Read(p []byte) (int, error) {
	return b.resp.Read(p)
}

func (b *ftpBody) Close() error {
	err := b.resp.Close()
	if qerr := b.conn.Quit(); err == nil {
		err = qerr
	}
	return err
}

func (c *Client) openFTP(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	rawURL := u.String()
	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), defaultFTPPort)
	}

	conn, err := ftp.Dial(addr,
		ftp.DialWithTimeout(c.ftpTimeout),
		ftp.DialWithContext(ctx),
	)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		conn.Quit()
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	resp, err := conn.Retr(u.Path)
	if err != nil {
		conn.Quit()
		return nil, ftpError(rawURL, err)
	}
	return &ftpBody{resp: resp, conn: conn}, nil
}

// ftpError maps a protocol reply to StatusError and anything else to
// NetworkError.
func ftpError(rawURL string, err error) error {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return &StatusError{URL: rawURL, Code: protoErr.Code, Status: protoErr.Msg}
	}
	return &NetworkError{URL: rawURL, Err: err}
}
