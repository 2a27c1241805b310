package app

import (
	"strings"
	"unicode"

	"galleryserv/src/errs"
)

const (
	// MarkerName is the zero-length object that keeps an empty album alive.
	MarkerName = ".gkeep"

	keySeparator = "/"
)

// AlbumPrefix scopes album listing for p.
func AlbumPrefix(p Principal) string {
	return p.ID + keySeparator
}

// AlbumNames turns the grouped prefixes of an AlbumPrefix listing into
// album names.
func AlbumNames(p Principal, prefixes []string) []string {
	root := AlbumPrefix(p)
	names := make([]string, 0, len(prefixes))
	for _, prefix := range prefixes {
		name := strings.TrimSuffix(strings.TrimPrefix(prefix, root), keySeparator)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// NormalizeFolderName trims the name, forces a trailing "/" and checks the
// charset. It returns the name with the trailing slash.
func NormalizeFolderName(folder string) (string, error) {
	folder = strings.TrimSpace(folder)
	if strings.Trim(folder, keySeparator) == "" {
		return "", errs.New(errs.KindBadRequest, "Folder name is required")
	}
	if !strings.HasSuffix(folder, keySeparator) {
		folder += keySeparator
	}
	if !ValidFolderName(folder) {
		return "", errs.New(errs.KindInvalidName, "Folder name contains invalid characters")
	}
	return folder, nil
}

// ValidFolderName reports whether every rune is a letter, a number, '-', '_' or '/'.
// "/" is accepted so that a single name can address a nested album.
func ValidFolderName(folder string) bool {
	for _, r := range folder {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			continue
		}
		switch r {
		case '-', '_', '/':
			continue
		}
		return false
	}
	return true
}

// AlbumKey returns the marker key used to witness an explicitly created album
// and the canonical album name (no trailing slash).
func AlbumKey(p Principal, folder string) (key, name string, err error) {
	normalized, err := NormalizeFolderName(folder)
	if err != nil {
		return "", "", err
	}
	return p.ID + keySeparator + normalized + MarkerName, strings.TrimRight(normalized, keySeparator), nil
}

// PhotoPrefix scopes photo listing and bulk deletion of one album.
func PhotoPrefix(p Principal, folder string) string {
	return p.ID + keySeparator + strings.TrimRight(folder, keySeparator) + keySeparator
}

// PhotoKey addresses one file in an album. The filename is not validated.
func PhotoKey(p Principal, folder, filename string) string {
	return PhotoPrefix(p, folder) + filename
}

// ValidateOwnership reports whether key lies in p's namespace. The id must
// match the whole first segment: "alice/x" belongs to alice, "alicebob/x" does not.
// An id containing "/" owns nothing.
func ValidateOwnership(p Principal, key string) bool {
	if p.ID == "" || strings.Contains(p.ID, keySeparator) {
		return false
	}
	root := AlbumPrefix(p)
	return strings.HasPrefix(key, root) && len(key) > len(root)
}

// IsMarker reports whether key is an album marker or a directory placeholder.
func IsMarker(key string) bool {
	return strings.HasSuffix(key, keySeparator) || strings.HasSuffix(key, MarkerName)
}

// IsMedia reports whether contentType is listed in an album.
func IsMedia(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}

func baseName(key string) string {
	if idx := strings.LastIndex(key, keySeparator); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
