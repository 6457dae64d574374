// Package dqmgui implements a client of the DQM GUI JSON archive API.
package dqmgui

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/cms-egamma/egdqm/pkg/gridcert"
)

// DefaultServer is the offline DQM GUI.
const DefaultServer = "https://cmsweb.cern.ch/dqm/offline"

// DefaultTimeout limits a single request.
const DefaultTimeout = 2 * time.Minute

// DefaultUserAgent identifies the client to the server.
var DefaultUserAgent = "DQMToJson/1.0 go/" + strings.TrimPrefix(runtime.Version(), "go")

// ErrMalformedResponse is returned when the server answered with a body
// which is not a valid listing.
var ErrMalformedResponse = errors.New("malformed server response")

// NetworkError wraps failures to obtain a response from the server:
// connection errors, timeouts and non-successful HTTP statuses.
type NetworkError struct {
	URL    string
	Status int
	Cause  error
}

func (x *NetworkError) Error() string {
	if x.Status != 0 {
		return fmt.Sprintf("GET %s: unexpected status %d", x.URL, x.Status)
	}

	return fmt.Sprintf("GET %s: %v", x.URL, x.Cause)
}

func (x *NetworkError) Unwrap() error { return x.Cause }

// IsNetworkError checks whether err has a NetworkError in its chain.
func IsNetworkError(err error) bool {
	var e *NetworkError
	return errors.As(err, &e)
}

// Prm groups Client parameters.
type Prm struct {
	// Server is the base URL, DefaultServer if empty.
	Server string
	// UserAgent overrides DefaultUserAgent if set.
	UserAgent string
	// Credentials is the client certificate presented during the
	// TLS handshake.
	Credentials gridcert.Pair
	// RootCAs verify the server, system pool if nil.
	RootCAs *x509.CertPool
	// Timeout of a single request, DefaultTimeout if not positive.
	Timeout time.Duration

	// HTTPClient replaces the client built from Credentials and Timeout.
	HTTPClient *http.Client
}

// Client fetches folder listings from a DQM GUI server.
type Client struct {
	server string
	agent  string
	http   *http.Client
}

// New constructs Client. The certificate pair is loaded unless
// Prm.HTTPClient is set.
func New(prm Prm) (*Client, error) {
	c := &Client{
		server: strings.TrimRight(prm.Server, "/"),
		agent:  prm.UserAgent,
		http:   prm.HTTPClient,
	}

	if c.server == "" {
		c.server = DefaultServer
	}

	if c.agent == "" {
		c.agent = DefaultUserAgent
	}

	if c.http == nil {
		cert, err := tls.LoadX509KeyPair(prm.Credentials.Cert, prm.Credentials.Key)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}

		timeout := prm.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}

		c.http = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					Certificates: []tls.Certificate{cert},
					RootCAs:      prm.RootCAs,
					MinVersion:   tls.VersionTLS12,
				},
				IdleConnTimeout: 90 * time.Second,
			},
		}
	}

	return c, nil
}

// FolderURL returns the listing address of the folder. Run, dataset and
// folder are inserted as is, the server tolerates doubled slashes.
func (c *Client) FolderURL(run, dataset, folder string) string {
	return fmt.Sprintf("%s/data/json/archive/%s/%s/%s?rootcontent=1", c.server, run, dataset, folder)
}

// Folder fetches the listing of the folder of the dataset's run.
//
// Failures to get a successful response are returned as *NetworkError.
// The body is decoded strictly, decoding failures wrap ErrMalformedResponse.
func (c *Client) Folder(ctx context.Context, run, dataset, folder string) (*Listing, error) {
	u := c.FolderURL(run, dataset, folder)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.agent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: u, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &NetworkError{URL: u, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: u, Cause: err}
	}

	var l Listing

	err = l.UnmarshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, u, err)
	}

	return &l, nil
}

// Listing is the content of a server folder.
type Listing struct {
	Contents []Item `json:"contents"`
}

// UnmarshalJSON decodes l requiring the "contents" list to be present.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var raw struct {
		Contents *[]Item `json:"contents"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Contents == nil {
		return errors.New("missing contents")
	}

	l.Contents = *raw.Contents

	return nil
}

// Properties are the object attributes reported by the server.
type Properties struct {
	Type string `json:"type"`
}

// Item is an element of a Listing: either a monitor element or a
// subdirectory descriptor. Fields missing on the wire stay nil.
type Item struct {
	Obj        *string    `json:"obj,omitempty"`
	RootObj    *string    `json:"rootobj,omitempty"`
	Subdir     *string    `json:"subdir,omitempty"`
	Properties Properties `json:"properties"`
}

// IsHistogram reports whether the item carries both an object name and
// an encoded object.
func (x Item) IsHistogram() bool {
	return x.Obj != nil && x.RootObj != nil
}

// IsSubdir reports whether the item describes a subdirectory.
func (x Item) IsSubdir() bool {
	return x.Subdir != nil
}

// Name returns the object name, empty if missing.
func (x Item) Name() string {
	if x.Obj == nil {
		return ""
	}

	return *x.Obj
}

// Dir returns the subdirectory name, empty if missing.
func (x Item) Dir() string {
	if x.Subdir == nil {
		return ""
	}

	return *x.Subdir
}

// Encoded returns the hex-encoded object, empty if missing.
func (x Item) Encoded() string {
	if x.RootObj == nil {
		return ""
	}

	return *x.RootObj
}
