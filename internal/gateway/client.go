package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every provider call.
const DefaultTimeout = 30 * time.Second

// client is the shared HTTP helper real gateways funnel every outbound
// call through. It merges default headers with per-call headers, runs the
// request under the configured timeout, logs traffic, and converts every
// failure into a classified *Error before returning. Callers never see a
// raw transport error.
type client struct {
	gateway    string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

func newClient(gateway, baseURL string, timeout time.Duration) *client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &client{
		gateway:    gateway,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

func (c *client) defaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
}

// request performs a JSON call against the gateway and decodes the
// response body. Non-2xx responses and transport failures come back as a
// classified *Error.
func (c *client) request(method, endpoint string, body map[string]any, headers map[string]string) (map[string]any, error) {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{
				Kind:    KindGeneric,
				Gateway: c.gateway,
				Message: fmt.Sprintf("marshal request body: %v", err),
				Request: body,
			}
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, &Error{
			Kind:    KindGeneric,
			Gateway: c.gateway,
			Message: fmt.Sprintf("create request: %v", err),
			Request: body,
		}
	}

	for k, v := range c.defaultHeaders() {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log.Printf("[gateway:%s] request %s %s", c.gateway, method, url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(c.gateway, err, int(c.timeout.Seconds()), body)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(c.gateway, err, int(c.timeout.Seconds()), body)
	}

	responseData := map[string]any{}
	if len(respBody) > 0 {
		// A malformed body on an otherwise failed response should not mask
		// the HTTP status classification.
		_ = json.Unmarshal(respBody, &responseData)
	}

	log.Printf("[gateway:%s] response status=%d", c.gateway, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyResponse(c.gateway, resp.StatusCode, responseData, body)
	}

	return responseData, nil
}

func (c *client) post(endpoint string, body map[string]any, headers map[string]string) (map[string]any, error) {
	return c.request(http.MethodPost, endpoint, body, headers)
}
