package localmind

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/localmind-ai/file-uploader/internal/utils"
)

// ultraparseTypes are the formats routed to the ultraparse engine; everything
// else goes through tika. The server does the actual extraction.
var ultraparseTypes = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
}

func parseEngineFor(path string) string {
	if ultraparseTypes[strings.ToLower(filepath.Ext(path))] {
		return "ultraparse"
	}
	return "tika"
}

// Upload sends a local file into a remote folder and returns the document id
// assigned by the server.
func (c *Client) Upload(ctx context.Context, localPath, folderID string) (string, error) {
	if !utils.FileExists(localPath) {
		return "", ErrNoFile
	}

	var result UploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetRetryCount(0).
		SetFile("file", localPath).
		SetQueryParams(map[string]string{
			"folder_id":    folderID,
			"parse_engine": parseEngineFor(localPath),
		}).
		SetSuccessResult(&result).
		Post(docUpload)

	if err := handleAPIError(resp, err, "document upload"); err != nil {
		return "", err
	}

	if result.Document == nil || result.Document.ID == "" {
		return "", fmt.Errorf("document upload: server returned no document id")
	}

	return result.Document.ID, nil
}

// Delete removes a document by id. A document the server no longer knows
// about counts as deleted.
func (c *Client) Delete(ctx context.Context, remoteID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", remoteID).
		Delete(docDelete)

	if err == nil && resp.StatusCode == http.StatusNotFound {
		slog.Debug("document already absent", "id", remoteID)
		return nil
	}

	return handleAPIError(resp, err, "document delete")
}

// ListFolder returns the documents currently stored in a remote folder.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]Document, error) {
	var result FolderListResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", folderID).
		SetSuccessResult(&result).
		Get(docFolderList)

	if err := handleAPIError(resp, err, "folder list"); err != nil {
		return nil, err
	}

	return result.Files, nil
}
