// Package localmind is a minimal client for the LocalMind document service.
// It covers the public-upload surface the sync core needs: upload a document
// into a folder, delete a document by id, and list a folder's documents.
package localmind

import (
	"time"

	"github.com/imroc/req/v3"

	"github.com/localmind-ai/file-uploader/internal/jsonc"
	"github.com/localmind-ai/file-uploader/internal/version"
)

const (
	docUpload     = "/localmind/public-upload/file"
	docDelete     = "/localmind/public-upload/file/{id}"
	docFolderList = "/localmind/public-upload/folder/{id}/files"
)

type Options struct {
	BaseURL   string
	APIKey    string
	VerifySSL bool
	Timeout   time.Duration
}

// Client talks to a LocalMind server.
type Client struct {
	http *req.Client
}

// New creates a LocalMind client. Transport-level retry with backoff lives
// here, not in the sync core.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	if opts.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	client := req.C().
		SetBaseURL(opts.BaseURL).
		SetUserAgent(version.AppName+"/"+version.Version).
		SetCommonBearerAuthToken(opts.APIKey).
		SetCommonRetryCount(3).
		SetCommonRetryBackoffInterval(1*time.Second, 5*time.Second).
		SetCommonErrorResult(&APIError{}).
		SetTimeout(timeout).
		SetJsonMarshal(jsonc.Marshal).
		SetJsonUnmarshal(jsonc.Unmarshal)

	if !opts.VerifySSL {
		client.EnableInsecureSkipVerify()
	}

	return &Client{http: client}, nil
}
