package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KV is the platform-local key-value storage behind the session store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// SetMany writes every pair or none of them.
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}

type Setting struct {
	Key       string `gorm:"column:name;primaryKey;size:64"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (Setting) TableName() string {
	return "settings"
}

type GormKV struct {
	DB *gorm.DB
}

func NewGormKV(ctx context.Context, db *gorm.DB) (*GormKV, error) {
	if err := db.WithContext(ctx).AutoMigrate(&Setting{}); err != nil {
		return nil, fmt.Errorf("migrate settings: %w", err)
	}
	return &GormKV{DB: db}, nil
}

func (k *GormKV) Get(ctx context.Context, key string) (string, bool, error) {
	var s Setting
	res := k.DB.WithContext(ctx).Where("name = ?", key).Limit(1).Find(&s)
	if res.Error != nil {
		return "", false, res.Error
	}
	if res.RowsAffected == 0 {
		return "", false, nil
	}
	return s.Value, true, nil
}

func (k *GormKV) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	return k.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, v := range values {
			s := Setting{Key: key, Value: v}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&s).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (k *GormKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return k.DB.WithContext(ctx).Where("name IN ?", keys).Delete(&Setting{}).Error
}

func (k *GormKV) Clear(ctx context.Context) error {
	return k.DB.WithContext(ctx).Where("name LIKE ?", prefix+"%").Delete(&Setting{}).Error
}

type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (k *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *MemoryKV) SetMany(_ context.Context, values map[string]string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for key, v := range values {
		k.m[key] = v
	}
	return nil
}

func (k *MemoryKV) Delete(_ context.Context, keys ...string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, key := range keys {
		delete(k.m, key)
	}
	return nil
}

func (k *MemoryKV) Clear(_ context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for key := range k.m {
		if strings.HasPrefix(key, prefix) {
			delete(k.m, key)
		}
	}
	return nil
}
