package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// ArchivedObject describes one raw import file kept in the bucket.
type ArchivedObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Archive stores raw import payloads under <prefix>/<source>/<run id>/<file>.
type Archive struct {
	client Client
	bucket string
	prefix string
}

// NewArchive creates an archive bound to a bucket and key prefix.
func NewArchive(client Client, bucket, prefix string) *Archive {
	return &Archive{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Bucket returns the bucket name.
func (a *Archive) Bucket() string {
	return a.bucket
}

// Folder returns the key prefix, with trailing slash, under which a source's
// payloads are stored.
func (a *Archive) Folder(source string) string {
	return strings.TrimLeft(a.prefix+"/"+source+"/", "/")
}

// Key builds the object key for a run's raw payload.
func (a *Archive) Key(source, runID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "payload"
	}
	parts := []string{source, runID, name}
	if a.prefix != "" {
		parts = append([]string{a.prefix}, parts...)
	}
	return strings.Join(parts, "/")
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// HasObjects reports whether anything is stored under a source's folder.
func (a *Archive) HasObjects(ctx context.Context, source string) (bool, error) {
	opts := minio.ListObjectsOptions{Prefix: a.Folder(source), MaxKeys: 1}
	for obj := range a.client.ListObjects(ctx, a.bucket, opts) {
		if obj.Err != nil {
			return false, obj.Err
		}
		return true, nil
	}
	return false, nil
}

// MakeFolder stores an empty folder marker for a source.
func (a *Archive) MakeFolder(ctx context.Context, source string) error {
	key := a.Folder(source)
	if _, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(nil), 0, minio.PutObjectOptions{}); err != nil {
		return fmt.Errorf("create folder %s: %w", key, err)
	}
	return nil
}

// Put uploads a payload and returns the key it was stored under.
func (a *Archive) Put(ctx context.Context, source, runID, filename string, data []byte) (string, error) {
	if err := a.EnsureBucket(ctx); err != nil {
		return "", err
	}
	key := a.Key(source, runID, filename)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType(filename),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

// Get reads an object fully. limit bounds the read; zero means unbounded.
func (a *Archive) Get(ctx context.Context, key string, limit int64) ([]byte, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer obj.Close()

	var r io.Reader = obj
	if limit > 0 {
		r = io.LimitReader(obj, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("object %s exceeds %d bytes", key, limit)
	}
	return data, nil
}

// List returns archived objects for a source (or all sources when empty), newest first.
func (a *Archive) List(ctx context.Context, source string) ([]ArchivedObject, error) {
	prefix := a.prefix
	if source != "" {
		prefix = strings.Trim(prefix+"/"+source, "/")
	}
	if prefix != "" {
		prefix += "/"
	}

	var out []ArchivedObject
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		out = append(out, ArchivedObject{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastModified.After(out[j].LastModified) })
	return out, nil
}

func contentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv"
	case ".xml":
		return "application/xml"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
