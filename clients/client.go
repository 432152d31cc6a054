package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/leafcoder/escrow-go/closers"
	appctx "github.com/leafcoder/escrow-go/context"
	"github.com/leafcoder/escrow-go/errors"
	"github.com/leafcoder/escrow-go/middleware"
	"github.com/leafcoder/escrow-go/requestutils"
)

// regular expression mapped to the replacement
var redactHeaders = map[*regexp.Regexp][]byte{
	regexp.MustCompile(`(?i)authorization: (?i)basic.+\n`): []byte("Authorization: Basic <credentials>\n"),
	regexp.MustCompile(`(?i)as-customer: .+\n`):            []byte("As-Customer: <email>\n"),
}

// RedactSensitiveHeaders from http request dumps
func RedactSensitiveHeaders(corpus []byte) []byte {
	for k, v := range redactHeaders {
		corpus = k.ReplaceAll(corpus, v)
	}
	return corpus
}

var concurrentClientRequests = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "concurrent_client_requests",
		Help: "Gauge that holds the current number of client requests",
	},
	[]string{
		"host",
		"method",
	},
)

func init() {
	prometheus.MustRegister(concurrentClientRequests)
}

// QueryStringBody - a type to generate the query string from a request "body" for the client
type QueryStringBody interface {
	// GenerateQueryString - function to generate the query string
	GenerateQueryString() (url.Values, error)
}

// SimpleHTTPClient wraps http.Client for making basic-auth JSON requests.
// It holds no mutable per-call state, so it is safe for concurrent use.
type SimpleHTTPClient struct {
	BaseURL   *url.URL
	AuthEmail string
	AuthKey   string

	client *http.Client
}

// New returns a new SimpleHTTPClient authenticating with the given pair
func New(serverURL, authEmail, authKey string) (*SimpleHTTPClient, error) {
	return NewWithHTTPClient(serverURL, authEmail, authKey, &http.Client{
		Timeout: time.Second * 10,
	})
}

// NewWithHTTPClient returns a new SimpleHTTPClient, using the provided http.Client
func NewWithHTTPClient(serverURL, authEmail, authKey string, client *http.Client) (*SimpleHTTPClient, error) {
	baseURL, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}
	// relative references resolve against the full base path only when it
	// ends with a separator
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	return &SimpleHTTPClient{
		BaseURL:   baseURL,
		AuthEmail: authEmail,
		AuthKey:   authKey,
		client:    client,
	}, nil
}

// NewWithProxy returns a new SimpleHTTPClient with an instrumented transport and optional proxy
func NewWithProxy(name, serverURL, authEmail, authKey, proxyURL string) (*SimpleHTTPClient, error) {
	var proxy func(*http.Request) (*url.URL, error)
	if len(proxyURL) != 0 {
		proxiedURL, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		proxy = http.ProxyURL(proxiedURL)
	}

	return NewWithHTTPClient(serverURL, authEmail, authKey, &http.Client{
		Timeout: time.Second * 10,
		Transport: middleware.InstrumentRoundTripper(
			&http.Transport{
				Proxy: proxy,
			}, name),
	})
}

// ResolveURL joins the client's base URL with the given path segments. Each
// segment is coerced to text and trimmed of leading and trailing slashes;
// empty segments are dropped before joining.
func (c *SimpleHTTPClient) ResolveURL(segments ...interface{}) *url.URL {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == nil {
			continue
		}
		text := strings.Trim(fmt.Sprint(segment), "/")
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return c.BaseURL.ResolveReference(&url.URL{Path: strings.Join(parts, "/")})
}

// NewRequest creates a request against the client's base URL, JSON encoding
// the body passed and attaching the basic-auth pair
func (c *SimpleHTTPClient) NewRequest(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	qsb QueryStringBody,
) (*http.Request, error) {
	resolvedURL := c.ResolveURL(path)

	if qsb != nil {
		v, err := qsb.GenerateQueryString()
		if err != nil {
			return nil, fmt.Errorf("failed to generate query string: %w", err)
		}
		resolvedURL.RawQuery = v.Encode()
	}

	var buf io.Reader
	if body != nil && method != http.MethodGet {
		b := new(bytes.Buffer)
		if err := json.NewEncoder(b).Encode(body); err != nil {
			return nil, errors.Wrap(err, ErrUnableToEncodeBody)
		}
		buf = b
	}

	req, err := http.NewRequest(method, resolvedURL.String(), buf)
	if err != nil {
		switch err.(type) {
		case url.EscapeError:
			err = NewHTTPError(err, resolvedURL.String(), ErrUnableToEscapeURL, http.StatusBadRequest, nil)
		case url.InvalidHostError:
			err = NewHTTPError(err, resolvedURL.String(), ErrInvalidHost, http.StatusBadRequest, nil)
		default:
			err = NewHTTPError(err, resolvedURL.String(), ErrMalformedRequest, http.StatusBadRequest, nil)
		}
		return nil, err
	}

	req.Header.Set("accept", "application/json")
	if buf != nil {
		req.Header.Add("content-type", "application/json")
	}
	requestutils.SetRequestID(ctx, req)
	if c.AuthEmail != "" || c.AuthKey != "" {
		req.SetBasicAuth(c.AuthEmail, c.AuthKey)
	}
	return req, nil
}

// do performs the request and reads the response, decoding the JSON result
// into v on a 200. Anything other than a 200 is mapped to an api error
// whose message is the response body text when non-empty, falling back to
// the canonical message for the status code.
func (c *SimpleHTTPClient) do(ctx context.Context, req *http.Request, v interface{}) (*http.Response, error) {

	// concurrent client request instrumentation
	concurrentClientRequests.With(
		prometheus.Labels{
			"host": req.URL.Host, "method": req.Method,
		}).Inc()

	defer func() {
		concurrentClientRequests.With(
			prometheus.Labels{
				"host": req.URL.Host, "method": req.Method,
			}).Dec()
	}()

	logger := log.Ctx(ctx)
	debug, okDebug := ctx.Value(appctx.DebugLoggingCTXKey).(bool)

	if okDebug && debug {
		// dump out the full request, right before we submit it
		requestDump, err := httputil.DumpRequestOut(req, true)
		if err != nil {
			logger.Error().Err(err).Str("type", "http.Request").Msg("failed to dump request body")
		} else {
			logger.Debug().Str("type", "http.Request").Msg(string(RedactSensitiveHeaders(requestDump)))
		}
	}

	// put a timeout on the request context
	reqCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	scopedCtx := appctx.Wrap(req.Context(), reqCtx)
	defer cancel()

	req = req.WithContext(scopedCtx)

	resp, err := c.client.Do(req)
	if err != nil {
		// transport failures are a distinct kind from api errors and carry
		// no HTTPState
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	status := resp.StatusCode
	defer closers.Panic(ctx, resp.Body)

	if okDebug && debug {
		dump, err := httputil.DumpResponse(resp, true)
		if err != nil {
			logger.Error().Err(err).Str("type", "http.Response").Msg("failed to dump response body")
		} else {
			logger.Debug().Str("type", "http.Response").Msg(string(dump))
		}
	}

	// helpful if you want to read the body as it is
	bodyBytes, _ := requestutils.Read(ctx, resp.Body)
	_ = resp.Body.Close() // must close
	resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	if status == http.StatusOK {
		if v != nil {
			if err := json.Unmarshal(bodyBytes, v); err != nil {
				return resp, errors.Wrap(err, ErrUnableToDecode)
			}
		}

		return resp, nil
	}

	message := strings.TrimSpace(string(bodyBytes))
	if message == "" {
		message = StatusMessage(status)
	}

	logger.Warn().
		Int("response_status", status).
		Str("body", string(bodyBytes)).
		Msg("failed http client call")
	return resp, errors.Wrap(errors.ErrFailedClientRequest, message)
}

// RespErrData - error data for http response
type RespErrData struct {
	ResponseHeaders interface{}
	Body            interface{}
}

// Do the specified http request, decoding the JSON result into v
func (c *SimpleHTTPClient) Do(ctx context.Context, req *http.Request, v interface{}) (*http.Response, error) {
	resp, err := c.do(ctx, req, v)
	if err != nil {
		// errors returned from c.do could be transport errors or upstream api errors
		if resp != nil {
			// if there was an error from the service, read the response body
			// and inject into error for later
			b, _ := io.ReadAll(resp.Body)
			resp.Body = io.NopCloser(bytes.NewBuffer(b))

			// put response body/headers in the err state data
			errorData := RespErrData{
				ResponseHeaders: resp.Header,
				Body:            string(b),
			}

			return resp, NewHTTPError(err, req.URL.String(), err.Error(), resp.StatusCode, errorData)
		}
		return nil, fmt.Errorf("failed c.do, no response body: %w", err)
	}
	return resp, nil
}
