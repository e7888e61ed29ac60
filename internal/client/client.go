package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/iksnae/iris-session/internal"
)

// Query parameter names carrying the credentials
const (
	PublicKeyParam  = "publicKey"
	PrivateKeyParam = "privateKey"
)

// RequestIDHeader is sent with a fresh id on every request
const RequestIDHeader = "X-Request-ID"

// KeyProvider supplies the credentials attached to each request.
// *internal.KeyStore satisfies it.
type KeyProvider interface {
	Keys() (internal.Credentials, error)
}

// StaticKeys is a KeyProvider returning fixed credentials
type StaticKeys internal.Credentials

func (k StaticKeys) Keys() (internal.Credentials, error) {
	return internal.Credentials(k), nil
}

// Client issues authenticated requests against an IRIS server
type Client struct {
	httpclient *http.Client
	api        string
	keys       KeyProvider
}

// NewClient creates a client for the server configured in cfg.
//
// It returns internal.ErrConfigInvalid (wrapped) if cfg has no usable apiRoot
// or a broken CA certificate.
func NewClient(cfg *internal.Config, keys KeyProvider) (*Client, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}

	httpclient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Cert.CA != "" {
		hc, err := trustCa(httpclient, []string{cfg.Cert.CA})
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}

	return &Client{
		httpclient: httpclient,
		api:        strings.TrimSuffix(cfg.APIRoot, "/"),
		keys:       keys,
	}, nil
}

// URL builds the absolute URL for an endpoint template: placeholders are
// substituted, then query and the credentials are appended.
func (c *Client) URL(template string, params Params, query url.Values) (string, error) {
	path, err := Expand(template, params)
	if err != nil {
		return "", err
	}

	creds, err := c.keys.Keys()
	if err != nil {
		return "", fmt.Errorf("failed to read keys: %w", err)
	}

	q := url.Values{}
	for k, vs := range query {
		q[k] = append([]string(nil), vs...)
	}
	q.Set(PublicKeyParam, creds.PublicKey)
	q.Set(PrivateKeyParam, creds.PrivateKey)

	return c.api + "/" + strings.TrimPrefix(path, "/") + "?" + q.Encode(), nil
}

// Do sends a request and returns the raw response body of a 2xx answer.
// Any other status becomes an *internal.RequestError carrying body and status.
// A nil payload sends no body.
func (c *Client) Do(ctx context.Context, method, rawURL string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	redacted := Redact(rawURL)
	internal.LogDebug("%s %s (request %s)", method, redacted, reqID)

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, redacted, stripURLError(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: cannot read response: %w", method, redacted, err)
	}
	internal.LogDebug("%s %s -> %d (request %s)", method, redacted, resp.StatusCode, reqID)

	if resp.StatusCode < 200 || 299 < resp.StatusCode {
		return nil, &internal.RequestError{
			Method: method,
			URL:    redacted,
			Status: resp.StatusCode,
			Body:   respBody,
		}
	}
	return respBody, nil
}

// Redact hides the private key in a URL so it can be logged
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has(PrivateKeyParam) {
		q.Set(PrivateKeyParam, "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// stripURLError drops the *url.Error wrapper, whose message repeats the
// unredacted URL
func stripURLError(err error) error {
	if uerr, ok := err.(*url.Error); ok {
		return uerr.Err
	}
	return err
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if len(cacerts) <= 0 {
		return hc, nil
	}

	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}

	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to add ca cert")
	}
	tran = tran.Clone()

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}
		rootcas = pool
		tcc.RootCAs = rootcas
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}

		if !rootcas.AppendCertsFromPEM(bin) {
			return nil, fmt.Errorf("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}
