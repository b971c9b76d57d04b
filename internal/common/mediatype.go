package common

import "strings"

// MediaMIME is the declared MIME type of an inbound media attachment.
type MediaMIME string

const (
	MediaMIMEPNG  MediaMIME = "image/png"
	MediaMIMEJPEG MediaMIME = "image/jpeg"
	MediaMIMEGIF  MediaMIME = "image/gif"
)

// String returns the string representation
func (m MediaMIME) String() string {
	return string(m)
}

// IsAllowed reports whether the MIME type is on the attachment allow-list.
// Anything else (video, octet-stream, svg, ...) is rejected outright.
func (m MediaMIME) IsAllowed() bool {
	switch m {
	case MediaMIMEPNG, MediaMIMEJPEG, MediaMIMEGIF:
		return true
	}
	return false
}

// Ext returns the file extension used when naming the stored blob.
func (m MediaMIME) Ext() string {
	switch m {
	case MediaMIMEPNG:
		return ".png"
	case MediaMIMEJPEG:
		return ".jpg"
	case MediaMIMEGIF:
		return ".gif"
	}
	return ""
}

// NormalizeMIME lower-cases and trims a declared MIME type. "image/jpg" is
// folded into "image/jpeg" since browsers emit both.
func NormalizeMIME(raw string) MediaMIME {
	mime := strings.ToLower(strings.TrimSpace(raw))
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}
	return MediaMIME(mime)
}
