// Package twinweb implements the twin store capabilities against the store
// service's http api and provides a websocket stream of change events.
package twinweb

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/mb0/dtm/log"
	"github.com/mb0/dtm/twin"
)

// TokenProvider returns request headers authenticating against a store url
// and is told when a token was rejected so it can be refreshed.
type TokenProvider interface {
	Token(url string) (http.Header, error)
	ClearToken(url string) error
}

type nilProvider struct{}

func (*nilProvider) Token(string) (http.Header, error) { return nil, nil }
func (*nilProvider) ClearToken(string) error           { return nil }

// Client calls the store service and implements the twin store capabilities.
// Retries and timeouts are the business of the configured http client, one
// failed call is one failed fetch.
type Client struct {
	base string
	*http.Client
	TokenProvider
	Log log.Logger
}

var _ twin.Store = (*Client)(nil)

// NewClient returns a client for the store service at the given base url.
func NewClient(base string) *Client {
	return &Client{base: base}
}

func (c *Client) init() {
	if c.Client == nil {
		c.Client = http.DefaultClient
	}
	if c.TokenProvider == nil {
		c.TokenProvider = (*nilProvider)(nil)
	}
	if c.Log == nil {
		c.Log = log.Root
	}
}

// scanReq is the body of an element scan call. The store returns only the
// requested columns, or all columns when none are given.
type scanReq struct {
	Keys    []string `json:"keys"`
	Columns []string `json:"qualifiedColumns,omitempty"`
}

// ElementsByKey fetches the elements of a model matching the given short keys
// in one scan call.
func (c *Client) ElementsByKey(model string, keys []string) ([]twin.Element, error) {
	c.init()
	body, err := json.Marshal(scanReq{Keys: keys})
	if err != nil {
		return nil, err
	}
	var res []twin.Element
	err = c.call("POST", c.modelURL(model, "scan"), bytes.NewReader(body), &res)
	if err != nil {
		return nil, errors.Wrapf(err, "scan model %s", model)
	}
	return res, nil
}

// SchemaOf fetches the full attribute catalog of a model in one call.
func (c *Client) SchemaOf(model string) ([]twin.Attr, error) {
	c.init()
	var res []twin.Attr
	err := c.call("GET", c.modelURL(model, "attrs"), nil, &res)
	if err != nil {
		return nil, errors.Wrapf(err, "attrs of model %s", model)
	}
	return res, nil
}

func (c *Client) modelURL(model, op string) string {
	return c.base + "/models/" + url.PathEscape(model) + "/" + op
}

func (c *Client) call(method, url string, body *bytes.Reader, res interface{}) error {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, url, body)
	} else {
		req, err = http.NewRequest(method, url, nil)
	}
	if err != nil {
		return err
	}
	hdr, err := c.Token(c.base)
	if err != nil {
		return errors.Wrap(err, "token")
	}
	for k, vs := range hdr {
		req.Header[k] = vs
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		c.ClearToken(c.base)
		return errors.Errorf("unauthorized %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("status %s for %s", resp.Status, url)
	}
	return json.NewDecoder(resp.Body).Decode(res)
}
