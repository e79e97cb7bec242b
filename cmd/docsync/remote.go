package main

import (
	"context"

	"github.com/localmind-ai/file-uploader/internal/localmind"
	"github.com/localmind-ai/file-uploader/internal/sync"
)

// remoteStorage adapts the LocalMind client to the sync core's RemoteStorage
// contract.
type remoteStorage struct {
	client *localmind.Client
}

func newRemoteStorage(client *localmind.Client) sync.RemoteStorage {
	return &remoteStorage{client: client}
}

func (r *remoteStorage) Upload(ctx context.Context, localPath, folderID string) (string, error) {
	return r.client.Upload(ctx, localPath, folderID)
}

func (r *remoteStorage) Delete(ctx context.Context, remoteID string) error {
	return r.client.Delete(ctx, remoteID)
}

func (r *remoteStorage) ListFiles(ctx context.Context, folderID string) ([]sync.RemoteObject, error) {
	docs, err := r.client.ListFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	objects := make([]sync.RemoteObject, 0, len(docs))
	for _, doc := range docs {
		objects = append(objects, sync.RemoteObject{ID: doc.ID, Name: doc.Name})
	}
	return objects, nil
}
