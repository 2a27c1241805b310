package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"galleryserv/src/errs"
	"galleryserv/src/logger"
	"galleryserv/src/storage"
)

const (
	PhotoURLTTL  = time.Hour
	UploadURLTTL = 15 * time.Minute
)

// Gallery implements the album and photo operations for one principal at a
// time. It holds no per-request state and is safe for concurrent use.
type Gallery struct {
	store storage.Store
	log   *logger.Logger
}

func NewGallery(store storage.Store, log *logger.Logger) *Gallery {
	if log == nil {
		log = logger.Nop()
	}
	return &Gallery{store: store, log: log}
}

// ListAlbums returns the sorted names of p's top-level albums.
func (g *Gallery) ListAlbums(ctx context.Context, p Principal) ([]string, error) {
	result, err := g.store.List(ctx, storage.ListOptions{Prefix: AlbumPrefix(p), Delimiter: keySeparator})
	if err != nil {
		return nil, storageFailure(err, "failed to list albums")
	}
	folders := AlbumNames(p, result.Prefixes)
	sort.Strings(folders)

	g.logFor(ctx).Infof("found %d folders for user %s", len(folders), p.DisplayName())
	return folders, nil
}

// ListPhotos returns the media objects of one album, each with a signed URL.
// Objects that cannot be described or signed are skipped.
func (g *Gallery) ListPhotos(ctx context.Context, p Principal, folder string) ([]PhotoRecord, error) {
	if folder == "" {
		return nil, errs.New(errs.KindBadRequest, "Folder name query parameter is required")
	}
	log := g.logFor(ctx)
	prefix := PhotoPrefix(p, folder)

	result, err := g.store.List(ctx, storage.ListOptions{Prefix: prefix})
	if err != nil {
		return nil, storageFailure(err, "failed to list photos")
	}

	photos := make([]PhotoRecord, 0, len(result.Objects))
	for _, object := range result.Objects {
		if IsMarker(object.Key) {
			continue
		}
		if object.ContentType == "" {
			info, err := g.store.Stat(ctx, object.Key)
			if errs.IsNotFound(err) {
				continue
			}
			if err != nil {
				log.ErrorWith("failed to stat object", err, map[string]interface{}{"key": object.Key})
				continue
			}
			object.ContentType = info.ContentType
		}
		if !IsMedia(object.ContentType) {
			continue
		}

		url, err := g.store.SignedURL(ctx, object.Key, storage.MethodGet, PhotoURLTTL, "")
		if err != nil {
			log.ErrorWith("failed to generate signed URL", err, map[string]interface{}{"key": object.Key})
			continue
		}
		photos = append(photos, PhotoRecord{
			Filename:     object.Key,
			Name:         baseName(object.Key),
			URL:          url,
			ContentType:  object.ContentType,
			Size:         object.Size,
			LastModified: formatTime(object.LastModified),
		})
	}

	log.Infof("found %d photos in folder %s", len(photos), folder)
	return photos, nil
}

// CreateAlbum writes the marker of a new album and returns its canonical name.
func (g *Gallery) CreateAlbum(ctx context.Context, p Principal, folder string) (string, error) {
	key, name, err := AlbumKey(p, folder)
	if err != nil {
		return "", err
	}

	exists, err := g.store.Exists(ctx, key)
	if err != nil {
		return "", storageFailure(err, "failed to check folder")
	}
	if exists {
		return "", errs.New(errs.KindConflict, fmt.Sprintf("Folder %s already exists", name))
	}

	if err := g.store.Put(ctx, key, nil, 0, storage.DefaultContentType); err != nil {
		return "", storageFailure(err, "failed to create folder marker")
	}
	g.logFor(ctx).Infof("folder created: %s by user %s", key, p.DisplayName())
	return name, nil
}

// IssueUploadURL signs a PUT for folder/filename in p's namespace.
func (g *Gallery) IssueUploadURL(ctx context.Context, p Principal, folder, filename, contentType string) (*UploadGrant, error) {
	if folder == "" || filename == "" {
		return nil, errs.New(errs.KindBadRequest, "Filename and folder are required")
	}
	if contentType == "" {
		contentType = storage.DefaultContentType
	}
	key := PhotoKey(p, folder, filename)

	url, err := g.store.SignedURL(ctx, key, storage.MethodPut, UploadURLTTL, contentType)
	if err != nil {
		return nil, storageFailure(err, "failed to sign upload")
	}
	g.logFor(ctx).Infof("upload URL generated for %s by user %s", key, p.DisplayName())
	return &UploadGrant{URL: url, Path: key, ExpiresIn: int(UploadURLTTL / time.Second)}, nil
}

// DeletePhoto removes one object by its full key. Ownership is checked before
// the store is touched, so a foreign key never reveals whether it exists.
func (g *Gallery) DeletePhoto(ctx context.Context, p Principal, key string) error {
	if key == "" {
		return errs.New(errs.KindBadRequest, "Filename is required")
	}
	log := g.logFor(ctx)
	if !ValidateOwnership(p, key) {
		log.WarnWith("attempt to delete file not owned", map[string]interface{}{"uid": p.ID, "key": key})
		return errs.New(errs.KindForbidden, "You can only delete your own photos")
	}

	exists, err := g.store.Exists(ctx, key)
	if err != nil {
		return storageFailure(err, "failed to check photo")
	}
	if !exists {
		return errs.New(errs.KindNotFound, "File not found")
	}
	if err := g.store.Delete(ctx, key); err != nil {
		return storageFailure(err, "failed to delete photo")
	}
	log.Infof("file deleted: %s by user %s", key, p.DisplayName())
	return nil
}

// DeleteAlbum removes every object under the album prefix, one at a time, and
// returns how many were deleted. Objects written concurrently may survive.
func (g *Gallery) DeleteAlbum(ctx context.Context, p Principal, folder string) (int, error) {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return 0, errs.New(errs.KindBadRequest, "Folder name is required")
	}
	prefix := PhotoPrefix(p, folder)

	result, err := g.store.List(ctx, storage.ListOptions{Prefix: prefix})
	if err != nil {
		return 0, storageFailure(err, "failed to list folder")
	}
	if len(result.Objects) == 0 {
		return 0, errs.New(errs.KindNotFound, "Folder not found or already empty")
	}

	deleted := 0
	for _, object := range result.Objects {
		if !ValidateOwnership(p, object.Key) {
			continue
		}
		if err := g.store.Delete(ctx, object.Key); err != nil {
			return deleted, storageFailure(err, "failed to delete folder object")
		}
		deleted++
	}
	g.logFor(ctx).Infof("folder deleted: %s (%d files) by user %s", prefix, deleted, p.DisplayName())
	return deleted, nil
}

func (g *Gallery) logFor(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil && !l.IsNop() {
		return l
	}
	return g.log
}

// storageFailure reports any backend error, including a stray not-found, as a
// storage fault: client-visible outcomes are decided by the gallery alone.
func storageFailure(err error, msg string) error {
	return errs.Wrap(errs.KindStorage, msg, err)
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
