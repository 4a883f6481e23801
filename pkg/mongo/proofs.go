package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"musicosbooking.pt/api/pkg/checkout"
)

// ProofStore keeps proof-of-payment files in a GridFS bucket. A ref is the
// hex id of the GridFS file.
type ProofStore struct {
	bucket  *mongo.GridFSBucket
	baseURL string
}

func NewProofStore(db *mongo.Database, publicBaseURL string) *ProofStore {
	return &ProofStore{
		bucket:  db.GridFSBucket(options.GridFSBucket().SetName(ProofsBucket)),
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

var _ checkout.BlobStore = (*ProofStore)(nil)

func (s *ProofStore) Put(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "content_type", Value: contentType},
		{Key: "path", Value: path},
	})
	id, err := s.bucket.UploadFromStream(ctx, path, r, opts)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return id.Hex(), nil
}

func (s *ProofStore) URL(ref string) string {
	return s.baseURL + "/api/proofs/" + ref
}

// Open streams the file back with the content type recorded at upload.
func (s *ProofStore) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	oid, err := objectID(ref)
	if err != nil {
		return nil, "", checkout.ErrProofNotFound
	}
	stream, err := s.bucket.OpenDownloadStream(ctx, oid)
	if errors.Is(err, mongo.ErrFileNotFound) {
		return nil, "", checkout.ErrProofNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to open proof %s: %w", ref, err)
	}

	contentType := "application/octet-stream"
	if file := stream.GetFile(); file != nil && len(file.Metadata) > 0 {
		if ct, ok := file.Metadata.Lookup("content_type").StringValueOK(); ok && ct != "" {
			contentType = ct
		}
	}
	return stream, contentType, nil
}
