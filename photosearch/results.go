package photosearch

import "math/rand"

// ResultSet is an immutable, ordered view over the image URLs extracted from
// one search response. Order is the API's relevance order.
type ResultSet struct {
	urls []string
}

// NewResultSet copies urls so later caller mutation cannot leak in.
func NewResultSet(urls []string) *ResultSet {
	copied := make([]string, len(urls))
	copy(copied, urls)
	return &ResultSet{urls: copied}
}

func (r *ResultSet) Len() int {
	return len(r.urls)
}

// URL returns the element at 0-based index i, or "" when i is out of range.
func (r *ResultSet) URL(i int) string {
	if i < 0 || i >= len(r.urls) {
		return ""
	}
	return r.urls[i]
}

// One through Five are positional conveniences over URL.
func (r *ResultSet) One() string   { return r.URL(0) }
func (r *ResultSet) Two() string   { return r.URL(1) }
func (r *ResultSet) Three() string { return r.URL(2) }
func (r *ResultSet) Four() string  { return r.URL(3) }
func (r *ResultSet) Five() string  { return r.URL(4) }

// All returns a fresh copy of the full list on every call.
func (r *ResultSet) All() []string {
	copied := make([]string, len(r.urls))
	copy(copied, r.urls)
	return copied
}

// Random returns a uniformly chosen element, or "" for an empty set.
// Calls are independent; repeats are possible.
func (r *ResultSet) Random() string {
	if len(r.urls) == 0 {
		return ""
	}
	return r.urls[rand.Intn(len(r.urls))]
}
