// internal/session/postgres.go
package session

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Record is the GORM model for a persisted session
type Record struct {
	Token     string `gorm:"primaryKey;column:token"`
	Data      []byte `gorm:"column:data"`
	ExpiresAt time.Time
}

// TableName sets the table name for session records
func (Record) TableName() string {
	return "sessions"
}

// PostgresBackend persists sessions in a postgres table via GORM, so
// contexts survive process restarts and are shared across replicas.
type PostgresBackend struct {
	db *gorm.DB
}

// OpenPostgres connects to postgres and prepares the sessions table
func OpenPostgres(dsn string) (*PostgresBackend, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewPostgresBackend(db)
}

// NewPostgresBackend wraps an existing GORM handle
func NewPostgresBackend(db *gorm.DB) (*PostgresBackend, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &PostgresBackend{db: db}, nil
}

// Get returns the payload stored for the token, or ErrNotFound
func (b *PostgresBackend) Get(ctx context.Context, token string) ([]byte, error) {
	var record Record
	tx := b.db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, time.Now()).
		First(&record)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return record.Data, nil
}

// Put stores the payload for the token until expiresAt
func (b *PostgresBackend) Put(ctx context.Context, token string, data []byte, expiresAt time.Time) error {
	record := Record{Token: token, Data: data, ExpiresAt: expiresAt}
	return b.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			UpdateAll: true,
		}).
		Create(&record).Error
}

// Delete removes the session for the token
func (b *PostgresBackend) Delete(ctx context.Context, token string) error {
	return b.db.WithContext(ctx).Delete(&Record{}, "token = ?", token).Error
}

// PurgeExpired removes all expired sessions and returns how many were deleted
func (b *PostgresBackend) PurgeExpired(ctx context.Context) (int64, error) {
	tx := b.db.WithContext(ctx).Delete(&Record{}, "expires_at <= ?", time.Now())
	return tx.RowsAffected, tx.Error
}

// Close releases the underlying connection pool
func (b *PostgresBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
