package farol

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultAPIURL = "http://localhost:8000/api/v1"
	userAgent     = "farol-inclusivo/farol-matcher"
	// Page size used when walking /jobs with limit/offset.
	pageSize = 100
)

// Client talks to the Farol REST API on behalf of a single user.
type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:  token,
		APIURL: DefaultAPIURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// WithToken returns a copy of the client that authenticates with another token.
// The underlying http.Client is shared.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}
