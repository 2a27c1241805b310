package repository

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"galleryserv/src/errs"
	"galleryserv/src/storage"
)

type (
	// InMemoryStore is a storage.Store kept in process memory. It backs local
	// development (S3_DRIVER=memory) and the handler tests.
	InMemoryStore struct {
		bucket string
		mu     sync.RWMutex
		table  map[string]memoryObject
		now    func() time.Time
	}

	memoryObject struct {
		data        []byte
		contentType string
		modified    time.Time
	}
)

func NewInMemoryStore(bucket string) *InMemoryStore {
	return &InMemoryStore{
		bucket: bucket,
		table:  make(map[string]memoryObject),
		now:    time.Now,
	}
}

func (i *InMemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (i *InMemoryStore) List(ctx context.Context, opts storage.ListOptions) (*storage.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to list objects", err)
	}
	i.mu.RLock()
	defer i.mu.RUnlock()

	keys := make([]string, 0, len(i.table))
	for key := range i.table {
		if strings.HasPrefix(key, opts.Prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	result := &storage.ListResult{}
	seen := make(map[string]struct{})
	for _, key := range keys {
		rest := key[len(opts.Prefix):]
		if opts.Delimiter != "" {
			if idx := strings.Index(rest, opts.Delimiter); idx >= 0 {
				group := opts.Prefix + rest[:idx+len(opts.Delimiter)]
				if _, ok := seen[group]; !ok {
					seen[group] = struct{}{}
					result.Prefixes = append(result.Prefixes, group)
				}
				continue
			}
		}
		result.Objects = append(result.Objects, i.info(key, i.table[key]))
	}
	return result, nil
}

func (i *InMemoryStore) Stat(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	obj, ok := i.table[key]
	if !ok {
		return nil, errs.New(errs.KindNotFound, fmt.Sprintf("object %s not found", key))
	}
	info := i.info(key, obj)
	return &info, nil
}

func (i *InMemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.table[key]
	return ok, nil
}

func (i *InMemoryStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	var buffer bytes.Buffer
	if body != nil {
		if _, err := io.Copy(&buffer, body); err != nil {
			return errs.Wrap(errs.KindStorage, "failed to read object body", err)
		}
	}
	if contentType == "" {
		contentType = storage.DefaultContentType
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.table[key] = memoryObject{data: buffer.Bytes(), contentType: contentType, modified: i.now()}
	return nil
}

func (i *InMemoryStore) Delete(ctx context.Context, key string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.table, key)
	return nil
}

// SignedURL returns a memory:// URL describing the grant. It is not dereferenceable.
func (i *InMemoryStore) SignedURL(ctx context.Context, key, method string, ttl time.Duration, contentType string) (string, error) {
	query := url.Values{}
	query.Set("X-Method", method)
	query.Set("X-Expires", strconv.FormatInt(int64(ttl/time.Second), 10))
	if contentType != "" {
		query.Set("X-Content-Type", contentType)
	}
	u := url.URL{Scheme: "memory", Host: i.bucket, Path: "/" + key, RawQuery: query.Encode()}
	return u.String(), nil
}

// Len reports how many objects are stored.
func (i *InMemoryStore) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.table)
}

func (i *InMemoryStore) info(key string, obj memoryObject) storage.ObjectInfo {
	sum := md5.Sum(obj.data)
	return storage.ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		ETag:         hex.EncodeToString(sum[:]),
		LastModified: obj.modified,
	}
}
