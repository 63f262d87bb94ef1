package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

// SnapshotVersion - версия формата снимка
const SnapshotVersion = 1

// ErrBadSnapshot возвращается для повреждённого или несовместимого снимка
var ErrBadSnapshot = errors.New("bad snapshot")

// ChunkRecord - содержимое одного чанка. Клетки перечислены построчно
// (y снаружи, x внутри) как индексы в Snapshot.Palette; 0 - пустая клетка.
type ChunkRecord struct {
	X      int      `json:"x"`
	Y      int      `json:"y"`
	Fore   []uint16 `json:"fore"`
	Back   []uint16 `json:"back"`
	Digest uint64   `json:"digest"`
}

// EntityRecord - снимок сущности: компоненты в виде JSON по имени типа
type EntityRecord struct {
	ID         uint64                     `json:"id"`
	Affinity   *[2]int                    `json:"affinity,omitempty"`
	Components map[string]json.RawMessage `json:"components"`
}

// Snapshot - всё, что нужно для восстановления мира: сид, оба слоя каждого
// сгенерированного чанка и компоненты сущностей
type Snapshot struct {
	Version  int            `json:"version"`
	WorldID  string         `json:"world_id"`
	Seed     int64          `json:"seed"`
	Created  time.Time      `json:"created"`
	Palette  []string       `json:"palette"`
	Chunks   []ChunkRecord  `json:"chunks"`
	Entities []EntityRecord `json:"entities,omitempty"`
}

// Save пишет снимок в w: JSON, сжатый zstd
func Save(w io.Writer, snap *Snapshot) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		enc.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}
	return nil
}

// Load читает снимок, записанный Save
func Load(r io.Reader) (*Snapshot, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	var snap Snapshot
	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrBadSnapshot, snap.Version, SnapshotVersion)
	}
	return &snap, nil
}

// SaveFile атомарно пишет снимок в файл через временный файл
func SaveFile(path string, snap *Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if err := Save(tmp, snap); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFile читает снимок из файла
func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return Load(f)
}
