package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/mgpai22/subedit/internal/subtitle"
)

// Document is the caption track shared by every connection. Readers take
// the read lock; edits, saves and reloads take the write lock.
type Document struct {
	mu       sync.RWMutex
	sub      *subtitle.Subtitle
	path     string
	duration time.Duration
	version  int
	dirty    bool
	encoder  *subtitle.Encoder
}

func NewDocument(sub *subtitle.Subtitle, path string, duration time.Duration) *Document {
	return &Document{
		sub:      sub,
		path:     path,
		duration: duration,
		encoder:  subtitle.NewEncoder(),
	}
}

// OpenDocument decodes path from disk.
func OpenDocument(path string, duration time.Duration) (*Document, error) {
	sub, err := subtitle.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewDocument(sub, path, duration), nil
}

// runs fn with shared access
func (d *Document) Read(fn func(sub *subtitle.Subtitle, duration time.Duration)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.sub, d.duration)
}

// runs fn with shared access; version counts edits and reloads, so a
// client can tell whether the segments it holds are current
func (d *Document) ReadVersion(fn func(sub *subtitle.Subtitle, version int)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.sub, d.version)
}

func (d *Document) Dirty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dirty
}

// SetText replaces the content of the segment with the given 1-based id.
func (d *Document) SetText(id int, text string) (subtitle.Segment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.sub.SetText(id-1, text); err != nil {
		return subtitle.Segment{}, fmt.Errorf("segment %d: %w", id, err)
	}
	d.version++
	d.dirty = true
	return d.sub.Segments[id-1], nil
}

// Save encodes the track back to its file.
func (d *Document) Save() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := d.encoder.Encode(d.sub)
	if err != nil {
		return d.version, err
	}
	if err := writeFile(d.path, data); err != nil {
		return d.version, err
	}
	d.dirty = false
	return d.version, nil
}

// Reload replaces the track with the file's current contents.
func (d *Document) Reload() (int, error) {
	sub, err := subtitle.ReadFile(d.path)
	if err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.sub = sub
	d.version++
	d.dirty = false
	return d.version, nil
}
