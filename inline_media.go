package graw

import (
	"fmt"
	"path/filepath"
	"strings"
)

// InlineMediaType tags the kind of media embedded in a self post.
type InlineMediaType string

const (
	InlineGIF   InlineMediaType = "gif"
	InlineImage InlineMediaType = "image"
	InlineVideo InlineMediaType = "video"
)

// mimeTypes covers the extensions Reddit accepts for inline media.
var mimeTypes = map[string]string{
	".gif":  "image/gif",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".png":  "image/png",
}

// InlineMedia is a local file embedded in a self post. MediaID is set once
// the file has been uploaded.
type InlineMedia struct {
	Type    InlineMediaType
	Path    string
	Caption string
	MediaID string
}

// NewInlineGIF returns inline media for a GIF at path.
func NewInlineGIF(path, caption string) *InlineMedia {
	return &InlineMedia{Type: InlineGIF, Path: path, Caption: caption}
}

// NewInlineImage returns inline media for an image at path.
func NewInlineImage(path, caption string) *InlineMedia {
	return &InlineMedia{Type: InlineImage, Path: path, Caption: caption}
}

// NewInlineVideo returns inline media for a video at path.
func NewInlineVideo(path, caption string) *InlineMedia {
	return &InlineMedia{Type: InlineVideo, Path: path, Caption: caption}
}

// String renders the markdown Reddit expects in place of the placeholder.
func (m *InlineMedia) String() string {
	return fmt.Sprintf("\n\n![%s](%s %q)\n\n", m.Type, m.MediaID, m.Caption)
}

func (m *InlineMedia) fileName() string {
	return filepath.Base(m.Path)
}

func (m *InlineMedia) mimeType() string {
	if t, ok := mimeTypes[strings.ToLower(filepath.Ext(m.Path))]; ok {
		return t
	}
	return "image/jpeg"
}
