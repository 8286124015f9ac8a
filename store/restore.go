package store

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/cache"
	"github.com/easelkit/easel/layer"
	"github.com/easelkit/easel/state"
)

// DefaultRestoreBudget bounds project restore. When exceeded, the
// session proceeds with whatever was restored so far rather than
// blocking startup indefinitely.
const DefaultRestoreBudget = 10 * time.Second

// BitmapCache memoizes decoded asset pixels by content hash so repeated
// restores and duplicate layers decode once.
type BitmapCache struct {
	pixmaps *cache.Sharded[*easel.Pixmap]
}

// NewBitmapCache creates an empty cache.
func NewBitmapCache() *BitmapCache {
	return &BitmapCache{pixmaps: cache.New[*easel.Pixmap](0)}
}

// Decode returns the decoded pixels for encoded image bytes, keyed by
// hash.
func (b *BitmapCache) Decode(hash string, data []byte) (*easel.Pixmap, error) {
	if p, ok := b.pixmaps.Get(hash); ok {
		return p, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", hash, ErrBadImage)
	}
	p := easel.FromImage(img)
	b.pixmaps.Set(hash, p)
	return p, nil
}

// Invalidate drops a cached decode, used when an asset is deleted.
func (b *BitmapCache) Invalidate(hash string) {
	b.pixmaps.Remove(hash)
}

// Restorer rebuilds a live canvas from a saved project: layers come from
// their serialized proxies, the background is re-fetched from the asset
// store by hash, and layers whose proxy was lost fall back to their
// original asset.
type Restorer struct {
	Assets  AssetStore
	Bitmaps *BitmapCache
	Budget  time.Duration
}

// NewRestorer creates a restorer with the default budget.
func NewRestorer(assets AssetStore) *Restorer {
	return &Restorer{
		Assets:  assets,
		Bitmaps: NewBitmapCache(),
		Budget:  DefaultRestoreBudget,
	}
}

// Restore rebuilds the canvas. Image layers whose inlined proxy was lost
// are re-hydrated from their original asset by hash before hydration.
// Per-item failures (one missing asset, one bad decode) skip that item
// and keep going; running out of budget returns the partially restored
// canvas with a warning rather than an error.
func (r *Restorer) Restore(ctx context.Context, st state.ProjectState) *state.Canvas {
	budget := r.Budget
	if budget <= 0 {
		budget = DefaultRestoreBudget
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	for i := range st.Layers {
		rec := &st.Layers[i]
		if ctx.Err() != nil {
			easel.Logger().Warn("restore budget exceeded, continuing with partial project",
				"hydrated", i, "total", len(st.Layers))
			st.Layers = st.Layers[:i]
			break
		}
		if rec.Kind == layer.KindText.String() || rec.Proxy != "" || rec.OriginalHash == "" {
			continue
		}
		src, err := r.fetch(rec.OriginalHash)
		if err != nil {
			easel.Logger().Warn("restore: layer asset unavailable", "layer", rec.ID, "hash", rec.OriginalHash, "err", err)
			continue
		}
		proxy, err := state.EncodePixmapPNG(src)
		if err != nil {
			continue
		}
		rec.Proxy = proxy
	}

	c := state.RestoreCanvas(st)

	if c.BackgroundHash != "" {
		if bg, err := r.fetch(c.BackgroundHash); err != nil {
			easel.Logger().Warn("restore: background unavailable", "hash", c.BackgroundHash, "err", err)
		} else {
			c.Background = bg
		}
	}
	return c
}

func (r *Restorer) fetch(hash string) (*easel.Pixmap, error) {
	a, err := r.Assets.FindByHash(hash)
	if err != nil {
		return nil, err
	}
	return r.Bitmaps.Decode(hash, a.Full)
}
