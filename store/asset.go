// Package store holds the persistence boundary: content-addressed asset
// records with refcounted lifecycle, saved-project records, and the
// restore path that rebuilds a live canvas from them.
package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"
	"time"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"github.com/easelkit/easel"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrBadImage = errors.New("store: undecodable image data")
)

// ThumbEdge is the longest edge of generated asset thumbnails.
const ThumbEdge = 256

// AssetKind separates uploaded layer sources from background images in
// listings.
type AssetKind string

const (
	AssetLayer      AssetKind = "layer"
	AssetBackground AssetKind = "background"
)

// Asset is one stored media record. Hash is the sha256 of the encoded
// bytes and is the handle layers and projects reference it by.
//
// Deletion is lazy: a user delete only marks the record, and the bytes
// go away once no live layer retains them. A re-upload of identical
// bytes resurrects the record.
type Asset struct {
	ID             string
	Hash           string
	MIME           string
	Kind           AssetKind
	Full           []byte
	Thumb          []byte
	CreatedAt      time.Time
	ReferenceCount int
	IsFavorite     bool
	IsUserDeleted  bool
}

// AssetStore is the persistence contract for media. Implementations must
// be safe for concurrent use; worker tasks fetch assets off the
// interactive thread.
type AssetStore interface {
	// Put stores encoded image bytes, deduplicating by content hash,
	// and returns the record. Re-putting user-deleted content clears
	// the deletion mark.
	Put(data []byte, mime string, kind AssetKind) (*Asset, error)

	// FindByHash returns the record for a content hash.
	FindByHash(hash string) (*Asset, error)

	// Retain and Release adjust the reference count. Release removes
	// the record once the count reaches zero on a user-deleted asset.
	Retain(hash string) error
	Release(hash string) error

	// Delete marks the asset user-deleted; the bytes are removed now if
	// nothing references them, otherwise on the last Release.
	Delete(id string) error

	// SetFavorite toggles the favorite flag.
	SetFavorite(id string, favorite bool) error

	// List returns all non-deleted records, newest first.
	List() []*Asset
}

// HashBytes returns the content hash used as asset handle.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MemoryAssetStore is the in-memory AssetStore used for tests and
// single-session runs.
type MemoryAssetStore struct {
	mu     sync.Mutex
	byHash map[string]*Asset
	byID   map[string]*Asset
}

// NewMemoryAssetStore creates an empty store.
func NewMemoryAssetStore() *MemoryAssetStore {
	return &MemoryAssetStore{
		byHash: make(map[string]*Asset),
		byID:   make(map[string]*Asset),
	}
}

func (s *MemoryAssetStore) Put(data []byte, mime string, kind AssetKind) (*Asset, error) {
	hash := HashBytes(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.byHash[hash]; ok {
		a.IsUserDeleted = false
		return a, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrBadImage
	}
	a := &Asset{
		ID:        uuid.NewString(),
		Hash:      hash,
		MIME:      mime,
		Kind:      kind,
		Full:      data,
		CreatedAt: time.Now(),
	}
	if thumb := Thumbnail(easel.FromImage(img), ThumbEdge); thumb != nil {
		var buf bytes.Buffer
		if err := thumb.EncodePNG(&buf); err == nil {
			a.Thumb = buf.Bytes()
		}
	}
	s.byHash[hash] = a
	s.byID[a.ID] = a
	return a, nil
}

func (s *MemoryAssetStore) FindByHash(hash string) (*Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byHash[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *MemoryAssetStore) Retain(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byHash[hash]
	if !ok {
		return ErrNotFound
	}
	a.ReferenceCount++
	return nil
}

func (s *MemoryAssetStore) Release(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byHash[hash]
	if !ok {
		return ErrNotFound
	}
	if a.ReferenceCount > 0 {
		a.ReferenceCount--
	}
	if a.IsUserDeleted && a.ReferenceCount == 0 {
		s.remove(a)
	}
	return nil
}

func (s *MemoryAssetStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	a.IsUserDeleted = true
	if a.ReferenceCount == 0 {
		s.remove(a)
	}
	return nil
}

func (s *MemoryAssetStore) SetFavorite(id string, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	a.IsFavorite = favorite
	return nil
}

func (s *MemoryAssetStore) List() []*Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Asset, 0, len(s.byID))
	for _, a := range s.byID {
		if !a.IsUserDeleted {
			out = append(out, a)
		}
	}
	sortAssetsNewestFirst(out)
	return out
}

// remove must be called with the lock held.
func (s *MemoryAssetStore) remove(a *Asset) {
	delete(s.byHash, a.Hash)
	delete(s.byID, a.ID)
}

func sortAssetsNewestFirst(as []*Asset) {
	for i := 1; i < len(as); i++ {
		for j := i; j > 0 && as[j].CreatedAt.After(as[j-1].CreatedAt); j-- {
			as[j], as[j-1] = as[j-1], as[j]
		}
	}
}

// Thumbnail downscales a pixmap so its longest edge is maxEdge. Images
// already small enough are returned as a copy. Nil for empty input.
func Thumbnail(p *easel.Pixmap, maxEdge int) *easel.Pixmap {
	if p.Empty() || maxEdge <= 0 {
		return nil
	}
	w, h := p.Width(), p.Height()
	if w <= maxEdge && h <= maxEdge {
		return p.Clone()
	}
	tw, th := maxEdge, maxEdge
	if w >= h {
		th = max(1, h*maxEdge/w)
	} else {
		tw = max(1, w*maxEdge/h)
	}
	src := p.ToImage()
	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return easel.FromImage(dst)
}
