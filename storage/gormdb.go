package storage

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is the storage model for one key.  The list value is kept JSON
// encoded so elements can be any JSON value.
type Entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GormDB implements Store over a gorm connection supplied by the caller
// (along with whichever driver the caller picked).
type GormDB struct {
	storage *gorm.DB
}

func NewGormDB(gormdb *gorm.DB) *GormDB {
	if err := gormdb.AutoMigrate(&Entry{}); err != nil {
		log.Println("Error migrating entries table: ", err)
	}
	return &GormDB{storage: gormdb}
}

func encodeList(list []any) (string, error) {
	if list == nil {
		list = []any{}
	}
	encoded, err := json.Marshal(list)
	return string(encoded), err
}

func decodeList(encoded string) (out []any, err error) {
	if encoded == "" {
		return []any{}, nil
	}
	err = json.Unmarshal([]byte(encoded), &out)
	return
}

func (sdb *GormDB) Get(key string) ([]any, bool, error) {
	var entry Entry
	err := sdb.storage.First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	value, err := decodeList(entry.Value)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (sdb *GormDB) Set(key string, value []any) (err error) {
	encoded, err := encodeList(value)
	if err != nil {
		return
	}
	entry := Entry{Key: key, Value: encoded, UpdatedAt: time.Now()}
	result := sdb.storage.Save(&entry)
	err = result.Error
	if result.Error == nil && result.RowsAffected == 0 {
		entry.CreatedAt = time.Now()
		err = sdb.storage.Create(&entry).Error
	}
	return
}

func (sdb *GormDB) Ensure(key string) ([]any, error) {
	return sdb.Update(key, nil)
}

// Update runs the whole read-mutate-write in one transaction with the row
// locked, so concurrent updaters of the same key serialize instead of
// clobbering each other.  A mutator error rolls everything back.
func (sdb *GormDB) Update(key string, mutator func(value []any) ([]any, error)) (out []any, err error) {
	err = sdb.storage.Transaction(func(tx *gorm.DB) error {
		var entry Entry
		found := true
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&entry, "key = ?", key).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			found = false
			entry = Entry{Key: key, CreatedAt: time.Now()}
		}
		value, err := decodeList(entry.Value)
		if err != nil {
			return err
		}
		if mutator != nil {
			value, err = mutator(value)
			if err != nil {
				return err
			}
		}
		entry.Value, err = encodeList(value)
		if err != nil {
			return err
		}
		entry.UpdatedAt = time.Now()
		if found {
			err = tx.Save(&entry).Error
		} else {
			err = tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}
		out = value
		return nil
	})
	if err != nil {
		out = nil
	}
	return
}

func (sdb *GormDB) Delete(key string) error {
	return sdb.storage.Delete(&Entry{}, "key = ?", key).Error
}

func (sdb *GormDB) Keys() (out []string, err error) {
	err = sdb.storage.Model(&Entry{}).Order("key").Pluck("key", &out).Error
	return
}
