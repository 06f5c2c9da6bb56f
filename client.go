package wikiexport

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/dustin/httputil"
	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

// DefaultBaseURL is the site pages are fetched from.
const DefaultBaseURL = "https://en.wikipedia.org"

// DefaultUserAgent identifies us to the site.  Wikimedia refuses
// requests carrying the stock Go user agent.
const DefaultUserAgent = "go-wikiexport/1.0 (https://github.com/dustin/go-wikiexport)"

// A Profile is the identity presented on every request.
type Profile struct {
	UserAgent string
}

type profileTransport struct {
	profile Profile
	next    http.RoundTripper
}

func (t *profileTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.profile.UserAgent)
	return t.next.RoundTrip(r)
}

// Client talks to a mediawiki site.
type Client struct {
	// Site root, e.g. https://en.wikipedia.org
	BaseURL string
	HTTP    *http.Client
}

// NewClient gets a Client for the site at baseURL presenting the given
// profile on each request.
//
// There's deliberately no timeout on the underlying http client.
func NewClient(baseURL string, profile Profile) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTP: &http.Client{
			Transport: &profileTransport{profile, http.DefaultTransport},
		},
	}
}

// escapeTitle percent-encodes a title for use in a URL path, leaving
// subpage separators alone.
func escapeTitle(title string) string {
	return strings.Replace(url.PathEscape(title), "%2F", "/", -1)
}

func (c *Client) editURL(title string) string {
	return c.BaseURL + "/w/index.php?title=" + url.QueryEscape(title) +
		"&action=edit"
}

func (c *Client) exportURL(title string) string {
	return c.BaseURL + "/wiki/Special:Export/" + escapeTitle(title)
}

// bodyCharset is the charset named by a Content-Type header, utf-8 if
// there isn't one.  Sniffing is no good here: an export's first
// kilobyte is plain ascii whatever follows.
func bodyCharset(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["charset"] == "" {
		return "utf-8"
	}
	return params["charset"]
}

// get issues a GET and returns the body decoded to UTF-8.
func (c *Client) get(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer res.Body.Close()
		return nil, httputil.HTTPError(res)
	}

	r, err := charset.NewReaderLabel(bodyCharset(res.Header.Get("Content-Type")), res.Body)
	if err != nil {
		res.Body.Close()
		return nil, err
	}

	return struct {
		io.Reader
		io.Closer
	}{r, res.Body}, nil
}

// Dependencies gets the templates the named page uses, as listed on
// its edit page.
func (c *Client) Dependencies(ctx context.Context, title string) ([]string, error) {
	body, err := c.get(ctx, c.editURL(title))
	if err != nil {
		return nil, errors.Wrapf(err, "Error fetching edit page for %q", title)
	}
	defer body.Close()

	text, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrapf(err, "Error reading edit page for %q", title)
	}

	return FindTemplates(string(text)), nil
}

// Export gets the Special:Export xml for the named page.
//
// The caller must close the returned stream.
func (c *Client) Export(ctx context.Context, title string) (io.ReadCloser, error) {
	body, err := c.get(ctx, c.exportURL(title))
	if err != nil {
		return nil, errors.Wrapf(err, "Error fetching export of %q", title)
	}
	return body, nil
}
