// Package client implements the job/poll protocol of the measurement
// backend: a check is submitted to a kind-specific endpoint, the backend
// returns an opaque request id, and results are polled on a fixed cadence
// until every vantage point has reported or the time budget runs out.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hostprobe/hostprobe/internal/nodes"
	"github.com/hostprobe/hostprobe/pkg/checkhost/model"
	"github.com/hostprobe/hostprobe/pkg/checkhost/spec"
	"github.com/hostprobe/hostprobe/pkg/results"
	"github.com/hostprobe/hostprobe/pkg/version"
)

const libraryName = "hostprobe-client"

var libraryVersion = version.Version

// RequestID is the opaque job handle returned by the backend on submission.
// It is used only as a polling key.
type RequestID string

// Client submits checks to the measurement backend and polls for their
// results. The underlying HTTP client is reused across calls; a Client is not
// safe for concurrent use.
type Client struct {
	// ClientName is the name of the client sent to the backend as part of
	// the user-agent.
	ClientName string
	// ClientVersion is the version of the client sent to the backend as part
	// of the user-agent.
	ClientVersion string

	config Config

	httpClient *http.Client
}

// makeUserAgent creates the user agent string.
func makeUserAgent(clientName, clientVersion string) string {
	return clientName + "/" + clientVersion + " " + libraryName + "/" + libraryVersion
}

// New returns a new Client with the provided client name, version and config.
// It panics if clientName or clientVersion are empty.
func New(clientName, clientVersion string, config Config) *Client {
	if clientName == "" || clientVersion == "" {
		panic("client name and version must be non-empty")
	}
	if config.BaseURL == "" {
		config.BaseURL = spec.DefaultBaseURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if config.Catalog == nil {
		config.Catalog = nodes.Default()
	}
	if config.Timeout == 0 {
		config.Timeout = spec.RequestTimeout
	}
	if config.SubmitAttempts == 0 {
		config.SubmitAttempts = spec.SubmitAttempts
	}
	if config.SubmitBackoff == 0 {
		config.SubmitBackoff = spec.SubmitBackoff
	}
	if config.PollInterval == 0 {
		config.PollInterval = spec.PollInterval
	}
	if config.PollCeiling == 0 {
		config.PollCeiling = spec.PollCeiling
	}
	if config.Emitter == nil {
		config.Emitter = HumanReadable{}
	}
	return &Client{
		ClientName:    clientName,
		ClientVersion: clientVersion,
		config:        config,
		httpClient:    &http.Client{Timeout: config.Timeout},
	}
}

// Catalog returns the vantage-point catalog the client was configured with.
func (c *Client) Catalog() nodes.Catalog {
	return c.config.Catalog
}

// SetCatalog replaces the vantage-point catalog used for node expansion and
// result labeling. Long-lived sessions call it with a freshly resolved
// catalog before each check; a nil catalog is ignored.
func (c *Client) SetCatalog(cat nodes.Catalog) {
	if cat != nil {
		c.config.Catalog = cat
	}
}

// Submit sends a check request to the backend and returns the job handle for
// it. An empty node set means "every node in the catalog". Submission is
// retried on transport failures and on responses without a handle; when the
// retry budget is exhausted it returns a *SubmissionError wrapping the last
// cause.
func (c *Client) Submit(ctx context.Context, kind spec.Kind, target string,
	nodeIDs []string) (RequestID, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unsupported check kind %q", kind)
	}
	if len(nodeIDs) == 0 {
		nodeIDs = c.config.Catalog.IDs()
	}

	var lastErr error
	for attempt := 1; attempt <= c.config.SubmitAttempts; attempt++ {
		if attempt > 1 {
			c.config.Emitter.OnRetry(kind, attempt, lastErr)
			select {
			case <-ctx.Done():
				return "", &SubmissionError{Attempts: attempt - 1, Err: ctx.Err()}
			case <-time.After(c.config.SubmitBackoff):
			}
		}
		id, err := c.submitOnce(ctx, kind, target, nodeIDs)
		if err == nil {
			c.config.Emitter.OnSubmit(kind, target, id)
			return id, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", &SubmissionError{Attempts: c.config.SubmitAttempts, Err: lastErr}
}

func (c *Client) submitOnce(ctx context.Context, kind spec.Kind, target string,
	nodeIDs []string) (RequestID, error) {
	u, err := url.Parse(c.config.BaseURL + kind.Path())
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("host", target)
	for _, id := range nodeIDs {
		q.Add("node", id)
	}
	u.RawQuery = q.Encode()
	c.config.Emitter.OnDebug(fmt.Sprintf("submitting %s check to %s", kind, u.Host))

	body, err := c.get(ctx, u.String())
	if err != nil {
		return "", err
	}
	var sr model.SubmitResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", err
	}
	if sr.RequestID == "" {
		return "", ErrNoRequestID
	}
	return RequestID(sr.RequestID), nil
}

// Await polls the backend for the results of the given job handle. It sleeps
// for the poll interval before every attempt and returns the payload as soon
// as every vantage point in it has reported. When the cumulative time budget
// is exceeded it returns a *PollTimeoutError. With the default cadence only
// about three polls happen per check.
func (c *Client) Await(ctx context.Context, id RequestID) (model.RawReport, error) {
	start := time.Now()
	var lastErr error
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.config.PollInterval):
		}

		raw, err := c.pollOnce(ctx, id)
		elapsed := time.Since(start)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if elapsed >= c.config.PollCeiling {
				return nil, &PollTimeoutError{RequestID: id, Elapsed: elapsed, Err: lastErr}
			}
			continue
		}

		reported := 0
		for _, v := range raw {
			if v.Reported() {
				reported++
			}
		}
		c.config.Emitter.OnPoll(id, reported, len(raw))

		// Any non-null value counts as reported here, including backend-side
		// error sentinels. The protocol does not let us tell those apart
		// from completed measurements.
		if raw.Complete() {
			return raw, nil
		}
		if elapsed >= c.config.PollCeiling {
			return nil, &PollTimeoutError{RequestID: id, Elapsed: elapsed, Incomplete: true}
		}
	}
}

func (c *Client) pollOnce(ctx context.Context, id RequestID) (model.RawReport, error) {
	c.config.Emitter.OnDebug("polling results for request " + string(id))
	body, err := c.get(ctx, c.config.BaseURL+spec.ResultPath+string(id))
	if err != nil {
		return nil, err
	}
	var raw model.RawReport
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Check submits a check, waits for its results and returns them normalized.
// It is the whole protocol flow in one call.
func (c *Client) Check(ctx context.Context, kind spec.Kind, target string,
	nodeIDs []string) (results.Report, error) {
	id, err := c.Submit(ctx, kind, target, nodeIDs)
	if err != nil {
		c.config.Emitter.OnError(err)
		return nil, err
	}
	raw, err := c.Await(ctx, id)
	if err != nil {
		c.config.Emitter.OnError(err)
		return nil, err
	}
	report := results.Normalize(kind, raw, c.config.Catalog)
	c.config.Emitter.OnComplete(id, len(report))
	return report, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", makeUserAgent(c.ClientName, c.ClientVersion))
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, rawURL)
	}
	return io.ReadAll(resp.Body)
}
