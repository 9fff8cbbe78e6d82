// Package classifier talks to the remote image classification model. Image
// bytes are relayed as-is; decoding and resizing happen on the model server.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/domain/interfaces"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/utils/safe"
)

const (
	// DefaultTimeout bounds a single classification request
	DefaultTimeout = 30 * time.Second

	// FormField is the multipart field carrying the image
	FormField = "file"

	maxResponseSize = 1 << 20
)

// ErrClassifierFailed is returned when the model server rejects a request or
// returns something that is not a probability vector
var ErrClassifierFailed = goerr.New("classifier request failed")

type client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
}

var _ interfaces.Classifier = &client{}

type Option func(*client)

// WithHTTPClient sets the base HTTP client, e.g. to add transport level auth.
// The given client is copied and never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the request timeout. It takes precedence over the timeout
// of a client given by WithHTTPClient regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(cl *client) {
		cl.timeout = d
	}
}

// New creates a classifier client for the model server at endpoint
func New(endpoint string, opts ...Option) (interfaces.Classifier, error) {
	if endpoint == "" {
		return nil, goerr.New("classifier endpoint is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid classifier endpoint", goerr.V("endpoint", endpoint))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.New("classifier endpoint must be http or https", goerr.V("endpoint", endpoint))
	}

	c := &client{
		endpoint:   u.String(),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	httpClient := *c.httpClient
	if c.timeout > 0 {
		httpClient.Timeout = c.timeout
	}
	c.httpClient = &httpClient

	return c, nil
}

type classifyResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

// Classify posts the image as multipart/form-data and returns the model output.
// The vector is not validated against a taxonomy here.
func (c *client) Classify(ctx context.Context, image []byte, contentType string) (model.ProbabilityVector, error) {
	if len(image) == 0 {
		return nil, goerr.New("image is empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="image"`, FormField))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create multipart part")
	}
	if _, err := part.Write(image); err != nil {
		return nil, goerr.Wrap(err, "failed to write image to request")
	}
	if err := mw.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to finish multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create classifier request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(ErrClassifierFailed, "classifier is unreachable",
			goerr.V("endpoint", c.endpoint), goerr.V("cause", err.Error()))
	}
	defer safe.Close(ctx, resp.Body)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read classifier response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.Wrap(ErrClassifierFailed, "classifier returned error status",
			goerr.V("status", resp.StatusCode), goerr.V("body", string(data)))
	}

	var out classifyResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, goerr.Wrap(ErrClassifierFailed, "classifier response is not valid JSON",
			goerr.V("cause", err.Error()))
	}
	if len(out.Probabilities) == 0 {
		return nil, goerr.Wrap(ErrClassifierFailed, "classifier response has no probabilities")
	}

	return model.ProbabilityVector(out.Probabilities), nil
}
