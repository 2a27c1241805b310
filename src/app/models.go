package app

// Principal is the authenticated caller of one request.
type Principal struct {
	// Stable, opaque user id issued by the identity provider. Never empty.
	ID string `json:"id"`

	// Display-only; may be empty.
	Email string `json:"email,omitempty"`
}

// DisplayName is what logs show for the principal.
func (p Principal) DisplayName() string {
	if p.Email != "" {
		return p.Email
	}
	return "unknown"
}

// PhotoRecord represents a photo or video stored in an album.
type PhotoRecord struct {
	// The full storage key of the object.
	Filename string `json:"filename"`

	// The last path segment of the key.
	Name string `json:"name"`

	// A time-limited signed GET URL.
	URL string `json:"url"`

	// The declared MIME type (image/* or video/*).
	ContentType string `json:"type"`

	// The size of the object in bytes.
	Size int64 `json:"size"`

	// RFC 3339 timestamp of the last write, nil when the store does not report one.
	LastModified *string `json:"updated"`
}

// UploadGrant is the answer to an upload URL request.
type UploadGrant struct {
	URL       string `json:"url"`
	Path      string `json:"path"`
	ExpiresIn int    `json:"expiresIn"`
}
