// Package gallery models the provider's ordered image gallery with optimistic
// add and delete. Every change has a paired inverse so a failed remote call
// can be undone precisely.
package gallery

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrIndex reports an index outside the gallery.
var ErrIndex = errors.New("image index out of range")

// Kind tags an image reference.
type Kind int

const (
	// Remote is an image confirmed by the server.
	Remote Kind = iota
	// Local is a freshly picked image whose upload has not resolved yet.
	Local
)

func (k Kind) String() string {
	if k == Local {
		return "local"
	}
	return "remote"
}

// ImageRef is one gallery entry. Local refs carry a generated LocalID and the
// picked URI; remote refs carry a server-relative Path.
type ImageRef struct {
	Kind    Kind
	LocalID string
	URI     string
	Path    string
}

// Deletion records an optimistically removed remote image and where it was.
type Deletion struct {
	Image ImageRef
	Index int
}

// Gallery is the ordered image list plus a display cursor and the remote
// images awaiting server-side deletion.
type Gallery struct {
	Images         []ImageRef
	Cursor         int
	PendingDeletes []Deletion
}

// FromPaths hydrates a gallery from server image paths.
func FromPaths(paths []string) Gallery {
	g := Gallery{}
	for _, p := range paths {
		if p = NormalizePath(p); p != "" {
			g.Images = append(g.Images, ImageRef{Kind: Remote, Path: p})
		}
	}
	return g
}

// Clone returns a deep copy of g.
func (g Gallery) Clone() Gallery {
	return Gallery{
		Images:         append([]ImageRef(nil), g.Images...),
		Cursor:         g.Cursor,
		PendingDeletes: append([]Deletion(nil), g.PendingDeletes...),
	}
}

// Len returns the number of visible images.
func (g Gallery) Len() int {
	return len(g.Images)
}

// AddLocal appends a local placeholder for an image being uploaded.
func (g Gallery) AddLocal(localID, uri string) Gallery {
	out := g.Clone()
	out.Images = append(out.Images, ImageRef{Kind: Local, LocalID: localID, URI: uri})
	return out
}

// ResolveUpload swaps the local ref carrying localID for a remote ref. It
// reports false when no such ref exists any more, for example because the
// user deleted the placeholder while the upload was in flight.
func (g Gallery) ResolveUpload(localID, path string) (Gallery, bool) {
	out := g.Clone()
	i := out.indexOfLocal(localID)
	if i < 0 {
		return out, false
	}
	out.Images[i] = ImageRef{Kind: Remote, Path: NormalizePath(path)}
	return out, true
}

// FailUpload removes the local ref carrying localID.
func (g Gallery) FailUpload(localID string) (Gallery, bool) {
	out := g.Clone()
	i := out.indexOfLocal(localID)
	if i < 0 {
		return out, false
	}
	out.Images = append(out.Images[:i], out.Images[i+1:]...)
	out.shrunkAt(i)
	return out, true
}

// Delete removes the image at index from the visible list. Remote images are
// queued for server-side deletion and returned as a Deletion; deleting a local
// placeholder queues nothing.
func (g Gallery) Delete(index int) (Gallery, *Deletion, error) {
	out := g.Clone()
	if index < 0 || index >= len(out.Images) {
		return out, nil, fmt.Errorf("%w: %d", ErrIndex, index)
	}
	img := out.Images[index]
	out.Images = append(out.Images[:index], out.Images[index+1:]...)
	out.shrunkAt(index)
	if img.Kind != Remote {
		return out, nil, nil
	}
	d := Deletion{Image: img, Index: index}
	out.PendingDeletes = append(out.PendingDeletes, d)
	return out, &d, nil
}

// Restore undoes Delete: the image goes back to its former position (clamped
// to the current length) and leaves the pending-deletion set.
func (g Gallery) Restore(d Deletion) Gallery {
	out := g.ConfirmDeletion(d.Image.Path)
	i := max(0, min(d.Index, len(out.Images)))
	out.Images = append(out.Images[:i], append([]ImageRef{d.Image}, out.Images[i:]...)...)
	if len(out.Images) > 1 && i <= out.Cursor {
		out.Cursor++
	}
	out.clampCursor()
	return out
}

// ConfirmDeletion drops path from the pending-deletion set after the server
// deleted it.
func (g Gallery) ConfirmDeletion(path string) Gallery {
	out := g.Clone()
	kept := out.PendingDeletes[:0]
	for _, d := range out.PendingDeletes {
		if d.Image.Path != path {
			kept = append(kept, d)
		}
	}
	out.PendingDeletes = kept
	return out
}

// MoveCursor moves the display cursor by delta, clamped to the list.
func (g Gallery) MoveCursor(delta int) Gallery {
	out := g.Clone()
	out.Cursor += delta
	out.clampCursor()
	return out
}

// Paths returns the normalized paths of all confirmed images in order.
func (g Gallery) Paths() []string {
	out := make([]string, 0, len(g.Images))
	for _, img := range g.Images {
		if img.Kind == Remote {
			out = append(out, NormalizePath(img.Path))
		}
	}
	return out
}

// PendingPaths returns the paths queued for server-side deletion.
func (g Gallery) PendingPaths() []string {
	out := make([]string, 0, len(g.PendingDeletes))
	for _, d := range g.PendingDeletes {
		out = append(out, d.Image.Path)
	}
	return out
}

// Uploading reports whether any local placeholder is still unresolved.
func (g Gallery) Uploading() bool {
	for _, img := range g.Images {
		if img.Kind == Local {
			return true
		}
	}
	return false
}

func (g *Gallery) indexOfLocal(localID string) int {
	for i, img := range g.Images {
		if img.Kind == Local && img.LocalID == localID {
			return i
		}
	}
	return -1
}

// shrunkAt adjusts the cursor after the image at index was removed: removing
// the current image or one before it steps back, unless already at 0.
func (g *Gallery) shrunkAt(index int) {
	if index <= g.Cursor && g.Cursor > 0 {
		g.Cursor--
	}
	g.clampCursor()
}

func (g *Gallery) clampCursor() {
	if len(g.Images) == 0 {
		g.Cursor = 0
		return
	}
	g.Cursor = max(0, min(g.Cursor, len(g.Images)-1))
}

// NormalizePath turns an image reference into a host-relative path: backslashes
// become forward slashes, any scheme and host are stripped and the leading
// slash is removed.
func NormalizePath(ref string) string {
	ref = strings.TrimSpace(strings.ReplaceAll(ref, `\`, "/"))
	if strings.Contains(ref, "://") {
		if u, err := url.Parse(ref); err == nil {
			ref = u.Path
		}
	}
	return strings.TrimLeft(ref, "/")
}

// URL joins a base URL and an image path for rendering.
func URL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + NormalizePath(path)
}
