// Package models contains data structures used across handlers
package models

import "time"

// Entry is a single row of a listing: either a Folder or an Object.
type Entry interface {
	isEntry()
	EntryName() string
}

// Folder represents a folder (common prefix). Size and LastModified stay
// zero unless the folder was aggregated.
type Folder struct {
	Name         string    `json:"name"`
	Prefix       string    `json:"prefix"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified,omitzero"`
}

func (Folder) isEntry() {}

// EntryName returns the display name of the folder.
func (f Folder) EntryName() string { return f.Name }

// HasStats reports whether the folder carries aggregated values.
func (f Folder) HasStats() bool { return !f.LastModified.IsZero() || f.Size > 0 }

// Object represents a non-marker object under the listed prefix.
type Object struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified,omitzero"`
	ETag         string    `json:"etag"`
	Previewable  bool      `json:"previewable"`
}

func (Object) isEntry() {}

// EntryName returns the display name of the object.
func (o Object) EntryName() string { return o.Name }

// Listing is the result of one browse call. It is never mutated after
// construction.
type Listing struct {
	Bucket   string   `json:"bucket"`
	Prefix   string   `json:"prefix"`
	Folders  []Folder `json:"folders"`
	Objects  []Object `json:"objects"`
	HasNext  bool     `json:"hasNext"`
	Current  string   `json:"current"`
	Next     string   `json:"next"`
	Previous string   `json:"previous"`
}

// Entries returns folders first, then objects, in listing order.
func (l *Listing) Entries() []Entry {
	entries := make([]Entry, 0, len(l.Folders)+len(l.Objects))
	for _, f := range l.Folders {
		entries = append(entries, f)
	}
	for _, o := range l.Objects {
		entries = append(entries, o)
	}
	return entries
}

// Breadcrumb for navigation
type Breadcrumb struct {
	Name string
	Path string
}

// SourceInfo is the public view of a configured backend.
type SourceInfo struct {
	Name          string `json:"name"`
	DisplayName   string `json:"displayName"`
	DefaultBucket string `json:"defaultBucket"`
}
