// Package registry is the HTTP client for the read-only registry service:
// the name index, per-object detail payloads and the ROA exports.
package registry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Target identifies one registry object. Two targets are equal iff both
// components match exactly.
type Target struct {
	Category string
	Name     string
}

// ParseTarget decodes a "category/name" path. Everything before the first
// slash is the category, the remainder is the name.
func ParseTarget(path string) (Target, bool) {
	category, name, ok := strings.Cut(path, "/")
	if !ok || category == "" || name == "" {
		return Target{}, false
	}
	return Target{Category: category, Name: name}, true
}

// Path renders the target as "category/name".
func (t Target) Path() string {
	return t.Category + "/" + t.Name
}

// IsZero reports whether the target is unset.
func (t Target) IsZero() bool {
	return t.Category == "" && t.Name == ""
}

func (t Target) String() string {
	return t.Path()
}

// SessionInfo is the generation metadata served alongside the index.
type SessionInfo struct {
	Commit string `json:"commit" yaml:"commit"`
	Time   string `json:"time" yaml:"time"`
	ROA    bool   `json:"roa" yaml:"roa"`
}

// Generated parses Time, which the service reports as unix seconds.
func (s SessionInfo) Generated() (time.Time, bool) {
	secs, err := strconv.ParseInt(s.Time, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

// Category is one partition of the index, names kept in server order.
type Category struct {
	Name    string   `json:"name" yaml:"name"`
	Objects []string `json:"objects" yaml:"objects"`
}

// Index is the decoded index payload. Categories keep the server's key order.
type Index struct {
	Info       SessionInfo
	Categories []Category
}

// Count returns the number of objects across all categories.
func (idx *Index) Count() int {
	n := 0
	for _, c := range idx.Categories {
		n += len(c.Objects)
	}
	return n
}

// UnmarshalJSON decodes `{"i": {...}, "d": {"category": [names]}}`.
func (idx *Index) UnmarshalJSON(data []byte) error {
	var wire struct {
		Info *SessionInfo    `json:"i"`
		Data json.RawMessage `json:"d"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Info == nil {
		return fmt.Errorf("index payload missing session info")
	}
	if len(wire.Data) == 0 {
		return fmt.Errorf("index payload missing data")
	}

	idx.Info = *wire.Info
	idx.Categories = nil
	return decodeOrderedObject(wire.Data, func(key string, raw json.RawMessage) error {
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			return fmt.Errorf("category %q: %w", key, err)
		}
		idx.Categories = append(idx.Categories, Category{Name: key, Objects: names})
		return nil
	})
}

// Entry is one attribute occurrence: the source line and the raw value.
type Entry struct {
	Line  int    `json:"line" yaml:"line"`
	Value string `json:"value" yaml:"value"`
}

// UnmarshalJSON decodes the `[line, value]` pair form.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("attribute entry: want [line, value], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Line); err != nil {
		return fmt.Errorf("attribute entry line: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Value); err != nil {
		return fmt.Errorf("attribute entry value: %w", err)
	}
	return nil
}

// AttributeGroup holds every occurrence of one attribute kind.
type AttributeGroup struct {
	Kind    string  `json:"kind" yaml:"kind"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// ForwardLink ties a source line to the object it references.
type ForwardLink struct {
	Line   int    `json:"line" yaml:"line"`
	Target string `json:"target" yaml:"target"`
}

// UnmarshalJSON decodes the `[line, "category/name"]` pair form.
func (l *ForwardLink) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("forward link: want [line, target], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &l.Line); err != nil {
		return fmt.Errorf("forward link line: %w", err)
	}
	if err := json.Unmarshal(pair[1], &l.Target); err != nil {
		return fmt.Errorf("forward link target: %w", err)
	}
	return nil
}

// ObjectDetail is a decoded object payload.
type ObjectDetail struct {
	Category     string           `json:"category" yaml:"category"`
	Filename     string           `json:"filename" yaml:"filename"`
	Attributes   []AttributeGroup `json:"attributes" yaml:"attributes"`
	ForwardLinks []ForwardLink    `json:"forward_links" yaml:"forward_links"`
	BackLinks    []string         `json:"back_links" yaml:"back_links"`
}

// Target is the canonical identity reported by the server.
func (d *ObjectDetail) Target() Target {
	return Target{Category: d.Category, Name: d.Filename}
}

// objectWire mirrors the service payload. key_value is decoded separately
// to keep attribute kinds in document order.
type objectWire struct {
	Category string `json:"category"`
	Object   *struct {
		Filename string          `json:"filename"`
		KeyValue json.RawMessage `json:"key_value"`
	} `json:"object"`
	ForwardLinks []ForwardLink `json:"forward_links"`
	BackLinks    []string      `json:"back_links"`
}

func decodeObject(data []byte) (*ObjectDetail, error) {
	var wire objectWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	if wire.Object == nil {
		return nil, fmt.Errorf("object payload missing object")
	}
	if wire.Category == "" || wire.Object.Filename == "" {
		return nil, fmt.Errorf("object payload missing identity")
	}

	detail := &ObjectDetail{
		Category:     wire.Category,
		Filename:     wire.Object.Filename,
		ForwardLinks: wire.ForwardLinks,
		BackLinks:    wire.BackLinks,
	}
	if len(wire.Object.KeyValue) == 0 || string(wire.Object.KeyValue) == "null" {
		return detail, nil
	}
	err := decodeOrderedObject(wire.Object.KeyValue, func(key string, raw json.RawMessage) error {
		var entries []Entry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("attribute %q: %w", key, err)
		}
		detail.Attributes = append(detail.Attributes, AttributeGroup{Kind: key, Entries: entries})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}
