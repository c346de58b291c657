// Package pagination implements opaque cursor paging over in-memory lists
// with RFC 8288 Link headers.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidCursor indicates the cursor could not be decoded or belongs to
// another resource type.
var ErrInvalidCursor = errors.New("invalid cursor")

// Params embeds into Huma input structs for pagination.
type Params struct {
	Cursor string `query:"cursor" doc:"Opaque pagination cursor from previous response"`
	Limit  int    `query:"limit"  doc:"Maximum items per page"                          default:"20" minimum:"1" maximum:"100"`
}

// PageSize returns the limit clamped to [1, MaxLimit], defaulting to
// DefaultLimit.
func (p Params) PageSize() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

// Cursor is a position after the item identified by After.
type Cursor struct {
	Type  string
	After string
}

// Encode returns a URL-safe opaque representation.
func (c Cursor) Encode() string {
	return base64.RawURLEncoding.EncodeToString([]byte(c.Type + ":" + c.After))
}

// Decode parses s and checks that it was issued for resource type typ. An
// empty s is the start of the list.
func Decode(s, typ string) (Cursor, error) {
	if s == "" {
		return Cursor{Type: typ}, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	kind, after, ok := strings.Cut(string(b), ":")
	if !ok || kind != typ {
		return Cursor{}, ErrInvalidCursor
	}
	return Cursor{Type: kind, After: after}, nil
}

// Page is one slice of a paginated list.
type Page[T any] struct {
	Items []T
	Total int
	Next  string
	Link  string
}

// Paginate returns the page of items following cursor. key identifies an
// item; an unknown cursor position restarts from the beginning. path and
// query build the rel="next" link.
func Paginate[T any](items []T, cursor Cursor, limit int, key func(T) string, path string, query url.Values) Page[T] {
	start := 0
	if cursor.After != "" {
		for i, it := range items {
			if key(it) == cursor.After {
				start = i + 1
				break
			}
		}
	}
	end := min(start+limit, len(items))
	page := Page[T]{Items: items[start:end], Total: len(items)}

	if end < len(items) && end > start {
		page.Next = Cursor{Type: cursor.Type, After: key(items[end-1])}.Encode()
		q := url.Values{}
		for k, vs := range query {
			q[k] = append([]string(nil), vs...)
		}
		q.Set("cursor", page.Next)
		q.Set("limit", strconv.Itoa(limit))
		page.Link = fmt.Sprintf("<%s?%s>; rel=\"next\"", path, q.Encode())
	}
	return page
}
