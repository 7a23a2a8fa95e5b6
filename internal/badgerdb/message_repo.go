package badgerdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/relay-chat/chat-service/internal/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

// MessageRepository is the embedded message store for single-binary
// deployments and tests.
//
// The key is formatted as "msg:{room}:{timestamp_padded}:{id_padded}" so that
// lexicographic key order equals (created_at, id) order:
//  1. 19-digit zero-padded UnixNano keeps keys chronologically sortable.
//  2. The per-room sequence id disambiguates two messages appended within the
//     same nanosecond.
type MessageRepository struct {
	db *badger.DB

	mu    sync.Mutex
	seqs  map[string]*badger.Sequence // room -> id sequence
	locks map[string]*sync.Mutex      // room -> append lock
}

type record struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Room      string    `json:"room"`
	CreatedAt time.Time `json:"created_at"`
}

// Open opens (or creates) the database at path with synchronous writes, so an
// acknowledged append survives a crash.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(true).
		WithLoggingLevel(badger.ERROR)
	return badger.Open(opts)
}

func NewMessageRepository(db *badger.DB) *MessageRepository {
	return &MessageRepository{
		db:    db,
		seqs:  make(map[string]*badger.Sequence),
		locks: make(map[string]*sync.Mutex),
	}
}

// Append validates the draft, assigns (created_at, id) and durably writes the
// record. Appends to the same room are serialized so the assigned pairs stay
// monotonic; independent rooms only contend on the sequence map.
func (r *MessageRepository) Append(ctx context.Context, sender, text, room string) (*domain.Message, error) {
	d, err := domain.NewDraft(sender, text, room)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: append: %v", domain.ErrStoreUnavailable, err)
	}

	// Сериализуем append внутри комнаты: пара (created_at, id) обязана
	// расти монотонно. Разные комнаты пишут параллельно.
	lk := r.roomLock(d.Room)
	lk.Lock()
	defer lk.Unlock()

	seq, err := r.sequence(d.Room)
	if err != nil {
		return nil, fmt.Errorf("%w: sequence: %v", domain.ErrStoreUnavailable, err)
	}

	n, err := seq.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: sequence next: %v", domain.ErrStoreUnavailable, err)
	}

	rec := record{
		ID:        int64(n) + 1, // последовательность начинается с 0
		Sender:    d.Sender,
		Text:      d.Text,
		Room:      d.Room,
		CreatedAt: time.Now().UTC(),
	}

	key := fmt.Sprintf("msg:%s:%019d:%020d", rec.Room, rec.CreatedAt.UnixNano(), rec.ID)
	val, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", domain.ErrStoreUnavailable, err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: append: %v", domain.ErrStoreUnavailable, err)
	}

	return &domain.Message{
		ID:        rec.ID,
		Sender:    rec.Sender,
		Text:      rec.Text,
		Room:      rec.Room,
		CreatedAt: rec.CreatedAt,
	}, nil
}

// Recent walks the room prefix in reverse and returns the newest messages
// oldest-first. Thanks to the padded key layout no sorting is needed.
func (r *MessageRepository) Recent(ctx context.Context, room string, limit int) ([]domain.Message, error) {
	room = domain.NormalizeRoom(room)
	limit = domain.ClampHistoryLimit(limit)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: recent: %v", domain.ErrStoreUnavailable, err)
	}

	var out []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", room))
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek за конец префикса, затем идём назад по ключам.
		seek := append(append([]byte{}, prefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(out) < limit; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec record
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				// Комната может содержать ":" — префикс "msg:a:" цепляет
				// и ключи комнаты "a:b", поэтому сверяем комнату записи.
				if rec.Room != room {
					return nil
				}
				out = append(out, domain.Message{
					ID:        rec.ID,
					Sender:    rec.Sender,
					Text:      rec.Text,
					Room:      rec.Room,
					CreatedAt: rec.CreatedAt,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: recent: %v", domain.ErrStoreUnavailable, err)
	}

	return lo.Reverse(out), nil
}

func (r *MessageRepository) roomLock(room string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lk, ok := r.locks[room]
	if !ok {
		lk = &sync.Mutex{}
		r.locks[room] = lk
	}
	return lk
}

func (r *MessageRepository) sequence(room string) (*badger.Sequence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seq, ok := r.seqs[room]; ok {
		return seq, nil
	}
	seq, err := r.db.GetSequence([]byte("seq:"+room), 64)
	if err != nil {
		return nil, err
	}
	r.seqs[room] = seq
	return seq, nil
}

// Close releases the id sequences. The *badger.DB itself is owned by the
// caller that opened it.
func (r *MessageRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for room, seq := range r.seqs {
		if err := seq.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.seqs, room)
	}
	return firstErr
}
