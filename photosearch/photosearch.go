// Package photosearch defines the provider-neutral contract for stock photo
// search: the request options, the error taxonomy, input validation, and the
// ResultSet returned to callers. Provider clients live in subpackages.
package photosearch

import "context"

// Orientation narrows search results to a given aspect ratio.
// The empty value means no orientation filter is applied.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
	OrientationSquarish  Orientation = "squarish"
)

func (o Orientation) IsValid() bool {
	switch o {
	case OrientationLandscape, OrientationPortrait, OrientationSquarish:
		return true
	}
	return false
}

// Size selects which of the five per-photo resolution variants is extracted
// from each result.
type Size string

const (
	SizeRaw     Size = "raw"
	SizeFull    Size = "full"
	SizeRegular Size = "regular"
	SizeSmall   Size = "small"
	SizeThumb   Size = "thumb"
)

func (s Size) IsValid() bool {
	switch s {
	case SizeRaw, SizeFull, SizeRegular, SizeSmall, SizeThumb:
		return true
	}
	return false
}

const (
	DefaultCount = 5
	MaxCount     = 30

	MaxQueryLength     = 200
	MinAccessKeyLength = 20
)

// Options bundles the optional search parameters. The zero value is valid:
// Count 0 means "use DefaultCount", Size "" means SizeRegular, and
// Orientation "" applies no filter.
type Options struct {
	Count       int
	Orientation Orientation
	Size        Size
}

type Searcher interface {
	Search(ctx context.Context, query, accessKey string, opts Options) (*ResultSet, error)
}
