package editor

import (
	"context"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/httputil"
)

// Edit actions understood by the upload endpoint. A payload without an
// action updates cells in place.
const (
	ActionUpdate    = ""
	ActionAddChild  = "addChild"
	ActionAddSpouse = "addSpouse"
	ActionDeleteRow = "deleteRow"
)

// Payload is the request body sent to the upload endpoint.
type Payload struct {
	Action  string  `json:"action,omitempty"`
	Row     int     `json:"row"`
	Updates Updates `json:"updates,omitempty"`
}

// Uploader sends edit payloads to the sheet.
type Uploader interface {
	Upload(ctx context.Context, p Payload) error
}

// Client uploads payloads to an Apps Script URL through [httputil.Client].
type Client struct {
	http *httputil.Client
	url  string
}

// NewClient creates a Client posting to url. A nil http client gets an
// uncached default.
func NewClient(url string, http *httputil.Client) (*Client, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}
	if http == nil {
		http = httputil.NewClient(nil, 0, nil)
	}
	return &Client{http: http, url: url}, nil
}

// Upload posts p as text/plain JSON. The endpoint's response is ignored.
func (c *Client) Upload(ctx context.Context, p Payload) error {
	return c.http.PostText(ctx, c.url, p, nil)
}

var _ Uploader = (*Client)(nil)
