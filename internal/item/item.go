// Package item defines the shared item model handed from the share extension
// to the host application.
//
// Items are serialised as a JSON array. Every element carries a "type"
// discriminator and exactly one payload field:
//
//	{"type":"text","text":"hello"}
//	{"type":"url","url":"https://example.com"}
//	{"type":"file","url":"file:///group.com.acme.app/report.pdf"}
//	{"type":"image","url":"file:///group.com.acme.app/photo.jpg"}
//	{"type":"video","video":{"videoURL":"file:///…","previewURL":"file:///…","duration":2500}}
package item

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
)

// Kind identifies which variant an Item holds.
type Kind string

const (
	KindText  Kind = "text"
	KindURL   Kind = "url"
	KindFile  Kind = "file"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindURL, KindFile, KindImage, KindVideo:
		return true
	}
	return false
}

// VideoInfo describes a video copied into the shared container together with
// its still preview. Duration is in milliseconds.
type VideoInfo struct {
	VideoURL   string  `json:"videoURL"`
	PreviewURL string  `json:"previewURL"`
	Duration   float64 `json:"duration"`
}

// Item is one successfully classified attachment. The zero Item is invalid
// and refuses to serialise.
type Item struct {
	kind  Kind
	text  string
	loc   string
	video VideoInfo
}

// Text returns a text item.
func Text(s string) Item { return Item{kind: KindText, text: s} }

// URL returns a url item. loc need not be file-backed.
func URL(loc string) Item { return Item{kind: KindURL, loc: loc} }

// File returns a file item pointing into the shared container.
func File(loc string) Item { return Item{kind: KindFile, loc: loc} }

// Image returns an image item pointing into the shared container.
func Image(loc string) Item { return Item{kind: KindImage, loc: loc} }

// Video returns a video item.
func Video(v VideoInfo) Item { return Item{kind: KindVideo, video: v} }

func (it Item) Kind() Kind { return it.kind }

func (it Item) Text() string { return it.text }

func (it Item) Video() VideoInfo { return it.video }

// Location returns the URI of url, file and image items, and the video URI
// of video items.
func (it Item) Location() string {
	if it.kind == KindVideo {
		return it.video.VideoURL
	}
	return it.loc
}

func (it Item) String() string {
	switch it.kind {
	case KindText:
		return fmt.Sprintf("text(%q)", it.text)
	case KindVideo:
		return fmt.Sprintf("video(%s, preview=%s, %.0fms)", it.video.VideoURL, it.video.PreviewURL, it.video.Duration)
	case "":
		return "invalid"
	default:
		return fmt.Sprintf("%s(%s)", it.kind, it.loc)
	}
}

type itemJSON struct {
	Type  Kind       `json:"type"`
	Text  *string    `json:"text,omitempty"`
	URL   string     `json:"url,omitempty"`
	Video *VideoInfo `json:"video,omitempty"`
}

var errInvalid = errors.New("item: invalid item")

// MarshalJSON implements json.Marshaler.
func (it Item) MarshalJSON() ([]byte, error) {
	out := itemJSON{Type: it.kind}
	switch it.kind {
	case KindText:
		s := it.text
		out.Text = &s
	case KindURL, KindFile, KindImage:
		out.URL = it.loc
	case KindVideo:
		v := it.video
		out.Video = &v
	default:
		return nil, fmt.Errorf("%w: kind %q", errInvalid, it.kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (it *Item) UnmarshalJSON(b []byte) error {
	var in itemJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	switch in.Type {
	case KindText:
		if in.Text == nil {
			return fmt.Errorf("%w: text item without text", errInvalid)
		}
		*it = Text(*in.Text)
	case KindURL, KindFile, KindImage:
		if in.URL == "" {
			return fmt.Errorf("%w: %s item without url", errInvalid, in.Type)
		}
		*it = Item{kind: in.Type, loc: in.URL}
	case KindVideo:
		if in.Video == nil {
			return fmt.Errorf("%w: video item without video", errInvalid)
		}
		*it = Video(*in.Video)
	default:
		return fmt.Errorf("%w: unknown type %q", errInvalid, in.Type)
	}
	return nil
}

// EncodeList serialises items as a JSON array. A nil slice encodes as [].
func EncodeList(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}

// DecodeList parses a payload produced by EncodeList.
func DecodeList(b []byte) ([]Item, error) {
	items := []Item{}
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("item decode: %w", err)
	}
	return items, nil
}

// FileURL returns the file:// URI for an absolute path.
func FileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// PathOf returns the local path behind a file:// location.
func PathOf(loc string) (string, bool) {
	u, err := url.Parse(loc)
	if err != nil || u.Scheme != "file" || u.Path == "" {
		return "", false
	}
	return filepath.FromSlash(u.Path), true
}
