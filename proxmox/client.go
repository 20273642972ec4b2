package proxmox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pvelist/utils"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultPort is the port pveproxy listens on.
const DefaultPort = 8006

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, for example https://pve:8006/api2/json.
	BaseURL string

	VerifyTLS bool

	// Timeout bounds each request; zero means no client side timeout.
	Timeout time.Duration
}

// Client talks to a single Proxmox VE API endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// BaseURL builds the API root for host and port.
func BaseURL(host string, port int) string {
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("https://%s:%d/api2/json", host, port)
}

func NewClient(opts Options) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		http:    utils.NewHTTPClient(opts.VerifyTLS, opts.Timeout),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one API call.
type request struct {
	method   string
	endpoint string
	query    url.Values
	form     url.Values
	session  *Session

	// route labels metrics when endpoint carries ids.
	route string
}

// call performs req and returns the raw "data" member of a 2xx response.
func (c *Client) call(ctx context.Context, req request) (data json.RawMessage, err error) {
	route := req.route
	if route == "" {
		route = req.endpoint
	}
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		requestsTotal.WithLabelValues(route, outcome(err)).Inc()
	}()

	target := c.baseURL + req.endpoint
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.form != nil {
		body = strings.NewReader(req.form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, errors.WithMessagef(ErrTransport, "build %s %s: %v", req.method, req.endpoint, err)
	}
	if req.form != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.session != nil {
		httpReq.Header.Set("Cookie", req.session.Cookie())
		httpReq.Header.Set("CSRFPreventionToken", req.session.CSRFToken)
	}

	log.Debugf("%s %s", req.method, target)
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.WithMessagef(ErrTransport, "%s %s: %v", req.method, req.endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithMessagef(ErrTransport, "read %s %s: %v", req.method, req.endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{
			Method:     req.method,
			Endpoint:   req.endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
		var payload map[string]interface{}
		if json.Unmarshal(raw, &payload) == nil {
			httpErr.Payload = payload
		}
		return nil, httpErr
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.WithMessagef(ErrDecode, "%s %s: %v", req.method, req.endpoint, err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, errors.WithMessagef(ErrDecode, "%s %s: response has no data", req.method, req.endpoint)
	}
	return envelope.Data, nil
}
