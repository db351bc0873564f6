package e2etest

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/repquiz/internal/errors"
	"github.com/myrjola/repquiz/internal/quiz"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"strings"
	"time"
)

type Client struct {
	client *http.Client
	url    string
}

// NewClient creates a cookie-aware HTTP client for the quiz server at url.
func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create unsafe cookie jar")
	}
	return &Client{
		client: &http.Client{Jar: jar}, //nolint:exhaustruct // defaults are fine.
		url:    url,
	}, nil
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// GetDoc fetches a URL and returns a goquery document.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	var (
		err  error
		resp *http.Response
	)
	if resp, err = c.Get(ctx, urlPath); err != nil {
		return nil, errors.Wrap(err, "client get")
	}
	return readDoc(resp)
}

// GetFragment fetches urlPath the way htmx does and returns the swapped in fragment.
func (c *Client) GetFragment(ctx context.Context, urlPath string) (*goquery.Document, error) {
	req, err := c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	req.Header.Set("HX-Request", "true")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return readDoc(resp)
}

// Post submits values as a form to urlPath. Extra headers such as HX-Request are added to the request.
func (c *Client) Post(
	ctx context.Context,
	urlPath string,
	values neturl.Values,
	header http.Header,
) (*http.Response, error) {
	var (
		req  *http.Request
		resp *http.Response
		err  error
	)
	if req, err = c.newRequestWithContext(ctx, http.MethodPost, urlPath, strings.NewReader(values.Encode())); err != nil {
		return nil, errors.Wrap(err, "new request with context")
	}
	for key, vals := range header {
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// SubmitForm submits the form with action formActionURLPath found on the page at formURLPath together with values
// and returns the response document.
func (c *Client) SubmitForm(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
	values neturl.Values,
) (*goquery.Document, error) {
	var (
		doc *goquery.Document
		err error
	)
	if doc, err = c.GetDoc(ctx, formURLPath); err != nil {
		return nil, errors.Wrap(err, "get document")
	}

	var csrfToken string
	if csrfToken, err = CSRFToken(doc, formActionURLPath); err != nil {
		return nil, errors.Wrap(err, "extract CSRF token")
	}

	formData := neturl.Values{}
	for key, vals := range values {
		formData[key] = vals
	}
	formData.Set("csrf_token", csrfToken)

	var resp *http.Response
	if resp, err = c.Post(ctx, formActionURLPath, formData, nil); err != nil {
		return nil, errors.Wrap(err, "post form", slog.String("action", formActionURLPath))
	}
	return readDoc(resp)
}

// StartGame starts a game in mode from the start page and waits until its roster has loaded.
func (c *Client) StartGame(ctx context.Context, mode quiz.Mode) (quiz.Snapshot, error) {
	if _, err := c.SubmitForm(ctx, "/", "/game/new", neturl.Values{"mode": {string(mode)}}); err != nil {
		return quiz.Snapshot{}, errors.Wrap(err, "submit new game form")
	}
	return c.WaitForGame(ctx)
}

// Guess submits party as the guess for the current legislator.
func (c *Client) Guess(ctx context.Context, party string) (*goquery.Document, error) {
	doc, err := c.SubmitForm(ctx, "/", "/game/guess", neturl.Values{"party": {party}})
	if err != nil {
		return nil, errors.Wrap(err, "submit guess form", slog.String("party", party))
	}
	return doc, nil
}

// Next advances a revealed round.
func (c *Client) Next(ctx context.Context) (*goquery.Document, error) {
	doc, err := c.SubmitForm(ctx, "/", "/game/next", nil)
	if err != nil {
		return nil, errors.Wrap(err, "submit next form")
	}
	return doc, nil
}

// Restart starts the game over and waits until the roster has loaded again.
func (c *Client) Restart(ctx context.Context) (quiz.Snapshot, error) {
	if _, err := c.SubmitForm(ctx, "/", "/game/restart", nil); err != nil {
		return quiz.Snapshot{}, errors.Wrap(err, "submit restart form")
	}
	return c.WaitForGame(ctx)
}

// Snapshot returns the state of the game as reported by the JSON API.
func (c *Client) Snapshot(ctx context.Context) (quiz.Snapshot, error) {
	var (
		snapshot quiz.Snapshot
		resp     *http.Response
		err      error
	)
	if resp, err = c.Get(ctx, "/api/game"); err != nil {
		return snapshot, errors.Wrap(err, "get game")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return snapshot, errors.New("unexpected status code", slog.Int("status", resp.StatusCode))
	}
	if err = json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return snapshot, errors.Wrap(err, "decode game")
	}
	return snapshot, nil
}

// WaitForGame polls the game until it has left the loading phase.
func (c *Client) WaitForGame(ctx context.Context) (quiz.Snapshot, error) {
	timeout := 5 * time.Second //nolint:mnd // roster loads are local in tests.
	startTime := time.Now()
	for {
		snapshot, err := c.Snapshot(ctx)
		if err != nil {
			return snapshot, err
		}
		if snapshot.Phase != quiz.PhaseLoading {
			return snapshot, nil
		}
		select {
		case <-ctx.Done():
			return snapshot, errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return snapshot, errors.New("timeout waiting for roster")
			}
			time.Sleep(20 * time.Millisecond) //nolint:mnd // 20ms
		}
	}
}

// CSRFToken extracts the CSRF token of the form with action formActionURLPath.
func CSRFToken(doc *goquery.Document, formActionURLPath string) (string, error) {
	formSelector := fmt.Sprintf("form[action='%s']", formActionURLPath)
	form := doc.Find(formSelector)
	csrfToken, ok := form.Find("input[name=csrf_token]").Attr("value")
	if !ok {
		return "", errors.New("csrf_token not found in form", slog.String("form", formActionURLPath))
	}
	return csrfToken, nil
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	return req, nil
}

func readDoc(resp *http.Response) (*goquery.Document, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	if http.StatusOK != resp.StatusCode {
		return nil, errors.New("unexpected status code", slog.Int("status", resp.StatusCode))
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "create document from reader")
	}
	return doc, nil
}
