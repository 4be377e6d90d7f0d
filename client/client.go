package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/common/log"
)

const maxErrorBody = 64 * 1024

// RequestObserver is notified after every API call.
type RequestObserver func(path string, elapsed time.Duration, err error)

// Client talks to the HTTP chain API of a node.
type Client struct {
	hc           *http.Client
	Endpoint     string
	CustomHeader map[string]string

	log      log.Logger
	observer RequestObserver
}

func New(hc *http.Client, endpoint string) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		hc:       hc,
		Endpoint: strings.TrimRight(endpoint, "/"),
		log:      log.WithModule("client"),
	}
}

func (c *Client) SetObserver(o RequestObserver) {
	c.observer = o
}

// APIErrorDetail is an entry of error.details in the node error envelope.
type APIErrorDetail struct {
	Message    string `json:"message"`
	File       string `json:"file"`
	LineNumber int    `json:"line_number"`
	Method     string `json:"method"`
}

// APIError is the error envelope a node returns with a non-200 status.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Err        struct {
		Code    int              `json:"code"`
		Name    string           `json:"name"`
		What    string           `json:"what"`
		Details []APIErrorDetail `json:"details"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "api error(status=%d", e.StatusCode)
	if e.Err.Name != "" {
		fmt.Fprintf(&sb, ",name=%s,code=%d", e.Err.Name, e.Err.Code)
	}
	sb.WriteString(")")
	if e.Err.What != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Err.What)
	} else if e.Message != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Message)
	}
	for _, d := range e.Err.Details {
		if d.Message != "" {
			sb.WriteString(": ")
			sb.WriteString(d.Message)
		}
	}
	return sb.String()
}

func (e *APIError) ErrorCode() errors.Code {
	return errors.APIError
}

// AsAPIError returns the node error envelope carried by err, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnknownEndpoint reports whether the node does not serve the endpoint.
func IsUnknownEndpoint(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

func (c *Client) _do(req *http.Request) (*http.Response, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, errors.ConnectivityError.Wrapf(err, "RequestTimeout(url=%s)", req.URL)
		}
		return nil, errors.ConnectivityError.Wrapf(err, "Unreachable(url=%s)", req.URL)
	}
	// push_transaction answers 202 Accepted
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}

func decodeAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return errors.ConnectivityError.Wrapf(err, "FailToReadBody(status=%s)", resp.Status)
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if jErr := json.Unmarshal(body, apiErr); jErr != nil || (apiErr.Code == 0 && apiErr.Err.Name == "") {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
	}
	return errors.WithStack(apiErr)
}

// Do posts reqPtr as JSON to the API path and decodes the response into
// respPtr.
func (c *Client) Do(ctx context.Context, path string, reqPtr, respPtr interface{}) (err error) {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		if err != nil {
			c.log.Debugf("%s failed in %v err=%v", path, elapsed, err)
		} else {
			c.log.Tracef("%s done in %v", path, elapsed)
		}
		if c.observer != nil {
			c.observer(path, elapsed, err)
		}
	}()

	var body io.Reader = http.NoBody
	if reqPtr != nil {
		b, mErr := json.Marshal(reqPtr)
		if mErr != nil {
			return errors.IllegalArgumentError.Wrapf(mErr, "FailToMarshal(path=%s)", path)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+path, body)
	if err != nil {
		return errors.IllegalArgumentError.Wrapf(err, "InvalidRequest(path=%s)", path)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.CustomHeader {
		req.Header.Set(k, v)
	}

	resp, err := c._do(req)
	if err != nil {
		return err
	}
	return decodeResponseBody(resp, path, respPtr)
}

func decodeResponseBody(resp *http.Response, path string, respPtr interface{}) error {
	defer resp.Body.Close()
	if respPtr == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respPtr); err != nil {
		return errors.InvalidStateError.Wrapf(err, "InvalidResponse(path=%s)", path)
	}
	return nil
}
