// Package storage keeps exported sessions in a SQLite database so a game
// can be resumed later.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"rulesofwar/engine"
)

var ErrNotFound = errors.New("session not found")

// Session is one saved game. Data holds the engine.SessionDescriptor.
type Session struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"uniqueIndex;not null"`
	Map       string
	Turns     int
	Data      datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entry is a listing row without the session payload.
type Entry struct {
	Name      string
	Map       string
	Turns     int
	UpdatedAt time.Time
}

type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open opens or creates the database at path and migrates the schema.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	if err := db.AutoMigrate(&Session{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session store: %w", err)
	}
	log.Debug().Str("path", path).Msg("opened session store")
	return &Store{db: db, log: log}, nil
}

// Save stores sd under name, replacing any session already saved there.
func (s *Store) Save(ctx context.Context, name string, sd engine.SessionDescriptor) error {
	data, err := json.Marshal(sd)
	if err != nil {
		return fmt.Errorf("failed to encode session %q: %w", name, err)
	}
	row := Session{Name: name, Map: sd.Map.Name, Turns: len(sd.History), Data: datatypes.JSON(data)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"map", "turns", "data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save session %q: %w", name, err)
	}
	s.log.Info().Str("session", name).Int("turns", row.Turns).Msg("saved session")
	return nil
}

func (s *Store) Load(ctx context.Context, name string) (engine.SessionDescriptor, error) {
	var row Session
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return engine.SessionDescriptor{}, fmt.Errorf("failed to load session %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return engine.SessionDescriptor{}, fmt.Errorf("failed to load session %q: %w", name, err)
	}
	var sd engine.SessionDescriptor
	if err := json.Unmarshal(row.Data, &sd); err != nil {
		return engine.SessionDescriptor{}, fmt.Errorf("failed to decode session %q: %w", name, err)
	}
	return sd, nil
}

// List returns the saved sessions, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	var out []Entry
	err := s.db.WithContext(ctx).Model(&Session{}).
		Select("name", "map", "turns", "updated_at").
		Order("updated_at desc, name").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	res := s.db.WithContext(ctx).Where("name = ?", name).Delete(&Session{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete session %q: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete session %q: %w", name, ErrNotFound)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
