package world

import (
	"fmt"
	"time"

	"github.com/annel0/tileworld/internal/storage"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
	"go.uber.org/zap"
)

// Export снимает оба слоя всех сгенерированных чанков. Свет не сохраняется:
// он пересчитывается при восстановлении.
func (w *World) Export() *storage.Snapshot {
	snap := &storage.Snapshot{
		Version: storage.SnapshotVersion,
		WorldID: w.ID.String(),
		Seed:    w.seed,
		Created: time.Now().UTC(),
		Palette: []string{""},
	}
	index := map[block.ID]uint16{block.None: 0}
	ref := func(id block.ID) uint16 {
		if i, ok := index[id]; ok {
			return i
		}
		i := uint16(len(snap.Palette))
		index[id] = i
		snap.Palette = append(snap.Palette, w.reg.Format(id))
		return i
	}

	for _, k := range w.Chunks() {
		c := w.chunks[k]
		rec := storage.ChunkRecord{
			X:      k.X,
			Y:      k.Y,
			Fore:   make([]uint16, 0, ChunkWidth*ChunkHeight),
			Back:   make([]uint16, 0, ChunkWidth*ChunkHeight),
			Digest: c.Digest(),
		}
		c.Each(func(local vec.Vec2) {
			rec.Fore = append(rec.Fore, ref(c.Foreground(local)))
			rec.Back = append(rec.Back, ref(c.Background(local)))
		})
		snap.Chunks = append(snap.Chunks, rec)
	}
	return snap
}

// Restore создаёт мир из снимка: сид берётся из снимка, чанки восстанавливаются
// как сгенерированные, затем свет распространяется заново по каждому чанку.
func Restore(opts Options, snap *storage.Snapshot) (*World, error) {
	opts.Seed = snap.Seed
	w := New(opts)

	palette := make([]block.ID, len(snap.Palette))
	for i, name := range snap.Palette {
		if i == 0 || name == "" {
			continue
		}
		id, err := w.reg.ParseID(name)
		if err != nil {
			return nil, fmt.Errorf("%w: palette: %v", storage.ErrBadSnapshot, err)
		}
		palette[i] = id
	}

	const cells = ChunkWidth * ChunkHeight
	for _, rec := range snap.Chunks {
		if len(rec.Fore) != cells || len(rec.Back) != cells {
			return nil, fmt.Errorf("%w: chunk (%d,%d) has %d/%d cells", storage.ErrBadSnapshot, rec.X, rec.Y, len(rec.Fore), len(rec.Back))
		}
		c := NewChunk(vec.Vec2{X: rec.X, Y: rec.Y})
		i := 0
		var bad error
		c.Each(func(local vec.Vec2) {
			f, b := int(rec.Fore[i]), int(rec.Back[i])
			i++
			if f >= len(palette) || b >= len(palette) {
				bad = fmt.Errorf("%w: chunk (%d,%d) palette index out of range", storage.ErrBadSnapshot, rec.X, rec.Y)
				return
			}
			c.Blocks[LayerForeground][local.X][local.Y] = palette[f]
			c.Blocks[LayerBackground][local.X][local.Y] = palette[b]
		})
		if bad != nil {
			return nil, bad
		}
		if c.Digest() != rec.Digest {
			return nil, fmt.Errorf("%w: chunk (%d,%d) digest mismatch", storage.ErrBadSnapshot, rec.X, rec.Y)
		}
		c.Generated = true
		w.chunks[c.Coords] = c
	}

	for _, k := range w.Chunks() {
		w.light.Propagate(k)
		w.dirty.Put(k)
	}
	w.FlushDirty()
	w.log.Info("Мир восстановлен из снимка",
		zap.String("from", snap.WorldID), zap.Int("chunks", len(snap.Chunks)), zap.Int64("seed", snap.Seed))
	return w, nil
}
