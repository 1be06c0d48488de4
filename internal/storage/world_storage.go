package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/annel0/mmo-cavein/internal/logging"
	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world"
	"github.com/annel0/mmo-cavein/internal/world/block"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

// ErrStorageClosed возвращается при обращении к закрытому хранилищу
var ErrStorageClosed = errors.New("storage: хранилище закрыто")

const (
	chunkFormatVersion = 1
	metaKey            = "world:meta"
)

// WorldMeta: параметры мира, сохраняемые вместе с чанками
type WorldMeta struct {
	Seed    int64 `json:"seed"`
	Version int   `json:"version"`
}

// WorldStorage представляет собой хранилище чанков мира в BadgerDB.
// Блоки чанка хранятся как массив uint16 (little-endian), сжатый zstd.
type WorldStorage struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder
	log     *logging.Logger
}

// NewWorldStorage создает новое хранилище мира в <dataPath>/world
func NewWorldStorage(dataPath string) (*WorldStorage, error) {
	dbPath := filepath.Join(dataPath, "world")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &WorldStorage{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
		encoder: encoder,
		decoder: decoder,
		log:     logging.GetStorageLogger(),
	}, nil
}

// SetLogger заменяет логгер хранилища
func (ws *WorldStorage) SetLogger(l *logging.Logger) {
	ws.log = l
}

// Close закрывает хранилище данных
func (ws *WorldStorage) Close() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isReady {
		return nil
	}

	ws.isReady = false
	ws.decoder.Close()
	if err := ws.encoder.Close(); err != nil {
		ws.log.Warn("Ошибка закрытия zstd encoder: %v", err)
	}
	return ws.db.Close()
}

func chunkKey(coords vec.Vec3) []byte {
	return []byte(fmt.Sprintf("chunk:%d:%d:%d", coords.X, coords.Y, coords.Z))
}

// encodeChunk упаковывает блоки: байт версии + zstd(uint16 LE)
func (ws *WorldStorage) encodeChunk(blocks []block.BlockID) []byte {
	raw := make([]byte, len(blocks)*2)
	for i, id := range blocks {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(id))
	}
	out := make([]byte, 1, 1+len(raw)/4)
	out[0] = chunkFormatVersion
	return ws.encoder.EncodeAll(raw, out)
}

func (ws *WorldStorage) decodeChunk(data []byte) ([]block.BlockID, error) {
	if len(data) == 0 || data[0] != chunkFormatVersion {
		return nil, fmt.Errorf("неизвестный формат чанка")
	}
	raw, err := ws.decoder.DecodeAll(data[1:], nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	if len(raw) != world.ChunkVolume*2 {
		return nil, fmt.Errorf("неверный размер чанка: %d байт", len(raw))
	}

	blocks := make([]block.BlockID, world.ChunkVolume)
	for i := range blocks {
		blocks[i] = block.BlockID(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return blocks, nil
}

// SaveChunk сохраняет чанк, если в нём есть изменения
func (ws *WorldStorage) SaveChunk(chunk *world.Chunk) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return ErrStorageClosed
	}

	// Если нет изменений, пропускаем
	if !chunk.IsDirty() {
		return nil
	}

	data := ws.encodeChunk(chunk.Snapshot())
	err := ws.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(chunk.Coords), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	// Очищаем счётчик изменений в чанке
	chunk.ClearChanges()
	return nil
}

// SaveDirty сохраняет все изменённые чанки мира одним пакетом.
// Возвращает число сохранённых чанков.
func (ws *WorldStorage) SaveDirty(w *world.World) (int, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return 0, ErrStorageClosed
	}

	dirty := w.DirtyChunks()
	if len(dirty) == 0 {
		return 0, nil
	}

	batch := ws.db.NewWriteBatch()
	defer batch.Cancel()

	for _, chunk := range dirty {
		if err := batch.Set(chunkKey(chunk.Coords), ws.encodeChunk(chunk.Snapshot())); err != nil {
			return 0, fmt.Errorf("ошибка записи чанка %v: %w", chunk.Coords, err)
		}
	}
	if err := batch.Flush(); err != nil {
		return 0, fmt.Errorf("ошибка сохранения пакета в BadgerDB: %w", err)
	}

	for _, chunk := range dirty {
		chunk.ClearChanges()
	}
	ws.log.Debug("Сохранено чанков: %d", len(dirty))
	return len(dirty), nil
}

// LoadChunk загружает чанк. found=false, если чанк ещё не сохранялся.
// Реализует world.ChunkLoader.
func (ws *WorldStorage) LoadChunk(coords vec.Vec3) (*world.Chunk, bool, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, false, ErrStorageClosed
	}

	var data []byte
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(coords))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	blocks, err := ws.decodeChunk(data)
	if err != nil {
		return nil, false, fmt.Errorf("чанк %v: %w", coords, err)
	}

	chunk := world.NewChunk(coords)
	chunk.Fill(blocks)
	return chunk, true, nil
}

// SaveMeta сохраняет параметры мира
func (ws *WorldStorage) SaveMeta(meta WorldMeta) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return ErrStorageClosed
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("ошибка сериализации метаданных: %w", err)
	}
	return ws.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(metaKey), data)
	})
}

// LoadMeta загружает параметры мира. found=false для нового мира.
func (ws *WorldStorage) LoadMeta() (WorldMeta, bool, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	var meta WorldMeta
	if !ws.isReady {
		return meta, false, ErrStorageClosed
	}

	var data []byte
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return meta, false, nil
	}
	if err != nil {
		return meta, false, fmt.Errorf("ошибка чтения метаданных: %w", err)
	}

	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, false, fmt.Errorf("ошибка десериализации метаданных: %w", err)
	}
	return meta, true, nil
}
