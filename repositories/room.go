//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"parlor/errors"
)

type IRoomRepository interface {
	CreateRoom(name string) (RoomRecord, error)
	GetRoom(name string) (RoomRecord, error)
	ListRooms() ([]RoomRecord, error)
	DeleteRoom(name string) error
}

type RoomRecord struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type RoomRepository struct {
	db *badger.DB
}

func NewRoomRepository(db *badger.DB) RoomRepository {
	return RoomRepository{db: db}
}

func roomKey(name string) []byte {
	return []byte(fmt.Sprintf("rm:%s", name))
}

// CreateRoom registers a room descriptor. Names are the natural key;
// creating a name twice fails with ErrRoomExists.
func (r RoomRepository) CreateRoom(name string) (RoomRecord, error) {
	record := RoomRecord{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	bytes, err := json.Marshal(record)
	if err != nil {
		return RoomRecord{}, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(roomKey(name))
		if err == nil {
			return errors.ErrRoomExists
		}
		if !stderrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(roomKey(name), bytes)
	})
	if err != nil {
		return RoomRecord{}, err
	}
	return record, nil
}

func (r RoomRepository) GetRoom(name string) (RoomRecord, error) {
	var record RoomRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(name))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &record)
		})
	})
	if err != nil {
		return RoomRecord{}, err
	}
	return record, nil
}

// DeleteRoom removes a room descriptor. Deleting an unknown name fails
// with ErrRoomNotFound. History entries are kept; they age out with the
// store, not with the room.
func (r RoomRepository) DeleteRoom(name string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(roomKey(name))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		return txn.Delete(roomKey(name))
	})
}

func (r RoomRepository) ListRooms() ([]RoomRecord, error) {
	var records []RoomRecord
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("rm:")
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record RoomRecord
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &record)
			})
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
