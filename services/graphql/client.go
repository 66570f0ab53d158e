// Package graphql is the client for the external Darasa GraphQL API:
// queries and mutations over HTTP, subscriptions over WebSocket.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/session"
)

type Options struct {
	URL             string
	SubscriptionURL string
	Timeout         time.Duration
	Store           session.Store
}

func OptionsFromConfig(conf *core.Config, store session.Store) Options {
	return Options{
		URL:             conf.API.URL,
		SubscriptionURL: conf.API.SubscriptionURL,
		Timeout:         conf.API.Timeout,
		Store:           store,
	}
}

// Client issues GraphQL operations. Credentials are read from the session
// Store on every call rather than from in-memory session state, so a request
// fired before the session bootstrap completes still carries a valid stored
// token.
type Client struct {
	url    string
	subURL string
	http   *http.Client
	store  session.Store
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:    opts.URL,
		subURL: opts.SubscriptionURL,
		http:   &http.Client{Timeout: timeout},
		store:  opts.Store,
	}
}

type gqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []RespError     `json:"errors,omitempty"`
}

type RespError struct {
	Message string `json:"message"`
}

// APIError is a non-empty "errors" array in a GraphQL response.
type APIError struct {
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return "graphql error"
	}
	return strings.Join(e.Messages, "; ")
}

func IsAPIError(err error) (*APIError, bool) {
	aErr, ok := errors.Cause(err).(*APIError)
	return aErr, ok
}

// Do executes one operation and unmarshals the "data" object into out.
func (c *Client) Do(ctx context.Context, query, opName string, vars map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(gqlRequest{Query: query, OperationName: opName, Variables: vars})
	if err != nil {
		return errors.Wrap(err, "marshalling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.bindCredentials(req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling API")
	}
	defer resp.Body.Close()

	var gqlResp gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return errors.Wrapf(err, "decoding response (HTTP %d)", resp.StatusCode)
	}
	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			msgs = append(msgs, e.Message)
		}
		return &APIError{Messages: msgs}
	}
	if resp.StatusCode >= 400 {
		return errors.Errorf("API returned HTTP %d", resp.StatusCode)
	}

	if out != nil && gqlResp.Data != nil {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return errors.Wrap(err, "unmarshalling data")
		}
	}
	return nil
}

// bindCredentials attaches the stored bearer token when present. A store
// miss or failure degrades to an unauthenticated request; attaching
// credentials must never fail the call.
func (c *Client) bindCredentials(h http.Header) {
	defer func() { _ = recover() }()
	if rec, ok := c.store.Read(); ok && rec.Token != "" {
		h.Set("Authorization", "Bearer "+rec.Token)
	}
}

// connectionParams are the graphql-ws connect payload, read from the Store
// at connect time so reconnects pick up the latest token.
func (c *Client) connectionParams() map[string]string {
	params := map[string]string{"Authorization": ""}
	defer func() { _ = recover() }()
	if rec, ok := c.store.Read(); ok && rec.Token != "" {
		params["Authorization"] = "Bearer " + rec.Token
	}
	return params
}
