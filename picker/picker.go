// Package picker is the media-picker boundary: it turns a local image file
// into the inline base64 asset the message schema carries.
package picker

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
)

// maxImageBytes caps how large a picked image may be. Image bytes travel
// inline in the message document, so the document size is bounded only by
// the encoded payload; this keeps it inside the database's document limit.
const maxImageBytes = 700 * 1024

// Asset is a picked image: base64 payload plus its MIME type.
type Asset struct {
	Base64 string
	MIME   string
}

// ErrTooLarge is returned for images that would exceed the document limit
// once inlined.
var ErrTooLarge = fmt.Errorf("image exceeds %d bytes", maxImageBytes)

// Pick reads the image at path. An empty path or a missing file means the
// user made no selection: both return (nil, nil).
func Pick(path string) (*Asset, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("picker: reading %s: %w", path, err)
	}
	if len(data) > maxImageBytes {
		return nil, ErrTooLarge
	}
	return &Asset{
		Base64: base64.StdEncoding.EncodeToString(data),
		MIME:   http.DetectContentType(data),
	}, nil
}
