package directory

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sqliteDialector "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var (
	// ErrUnsupportedDialect indicates that no GORM dialector is available for the scheme.
	ErrUnsupportedDialect = errors.New("directory.store.unsupported_dialect")

	errEmptyDatabaseURL    = errors.New("directory.store.empty_database_url")
	errSQLiteEmptyPath     = errors.New("directory.store.sqlite.empty_path")
	errSQLiteInvalidURL    = errors.New("directory.store.sqlite.invalid_url")
	errUnsupportedNoScheme = errors.New("directory.store.unsupported_no_scheme")
)

// DatabaseStore persists directory records using GORM.
type DatabaseStore struct {
	db          *gorm.DB
	driverLabel string
}

// Driver exposes the selected database driver label.
func (store *DatabaseStore) Driver() string {
	return store.driverLabel
}

type directoryRecord struct {
	SlotKey       string `gorm:"column:slot_key;primaryKey"`
	RecordID      string `gorm:"column:record_id;not null"`
	Email         string `gorm:"column:email;not null"`
	Name          string `gorm:"column:name;not null"`
	Picture       string `gorm:"column:picture;not null;default:''"`
	GoogleID      string `gorm:"column:google_id;not null"`
	LoginTimeUnix int64  `gorm:"column:login_time_unix;not null"`
}

func (directoryRecord) TableName() string {
	return "directory_records"
}

// NewDatabaseStore constructs a GORM-backed store from a postgres:// or
// sqlite:// URL.
func NewDatabaseStore(ctx context.Context, databaseURL string) (*DatabaseStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("directory.store.open: %w", errEmptyDatabaseURL)
	}
	dialector, driverLabel, err := resolveDialector(databaseURL)
	if err != nil {
		return nil, err
	}
	gormDB, openErr := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if openErr != nil {
		return nil, fmt.Errorf("directory.store.open.%s: %w", driverLabel, openErr)
	}
	if migrateErr := gormDB.WithContext(ctx).AutoMigrate(&directoryRecord{}); migrateErr != nil {
		return nil, fmt.Errorf("directory.store.migrate.%s: %w", driverLabel, migrateErr)
	}
	return &DatabaseStore{
		db:          gormDB,
		driverLabel: driverLabel,
	}, nil
}

// Put upserts the record under key.
func (store *DatabaseStore) Put(ctx context.Context, key string, record Record) error {
	if key == "" {
		return fmt.Errorf("directory.store.put.%s: %w", store.driverLabel, ErrEmptyKey)
	}
	row := directoryRecord{
		SlotKey:       key,
		RecordID:      record.ID,
		Email:         record.Email,
		Name:          record.Name,
		Picture:       record.Picture,
		GoogleID:      record.GoogleID,
		LoginTimeUnix: record.LoginTime.UTC().Unix(),
	}
	err := store.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("directory.store.put.%s: %w", store.driverLabel, err)
	}
	return nil
}

// Get returns the record under key and whether it exists.
func (store *DatabaseStore) Get(ctx context.Context, key string) (Record, bool, error) {
	if key == "" {
		return Record{}, false, fmt.Errorf("directory.store.get.%s: %w", store.driverLabel, ErrEmptyKey)
	}
	var row directoryRecord
	err := store.db.WithContext(ctx).Where("slot_key = ?", key).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("directory.store.get.%s: %w", store.driverLabel, err)
	}
	return Record{
		ID:        row.RecordID,
		Email:     row.Email,
		Name:      row.Name,
		Picture:   row.Picture,
		GoogleID:  row.GoogleID,
		LoginTime: time.Unix(row.LoginTimeUnix, 0).UTC(),
	}, true, nil
}

// Delete removes the record under key. Deleting a missing key is a
// no-op.
func (store *DatabaseStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("directory.store.delete.%s: %w", store.driverLabel, ErrEmptyKey)
	}
	err := store.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&directoryRecord{}).Error
	if err != nil {
		return fmt.Errorf("directory.store.delete.%s: %w", store.driverLabel, err)
	}
	return nil
}

func resolveDialector(databaseURL string) (gorm.Dialector, string, error) {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return nil, "", fmt.Errorf("directory.store.parse_url: %w", err)
	}
	if parsed.Scheme == "" {
		return nil, "", fmt.Errorf("directory.store.dialect: %w", errUnsupportedNoScheme)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "postgres", "postgresql":
		return postgres.Open(databaseURL), "postgres", nil
	case "sqlite", "sqlite3":
		dsn, dsnErr := buildSQLiteDSN(parsed)
		if dsnErr != nil {
			return nil, "", fmt.Errorf("directory.store.sqlite: %w", dsnErr)
		}
		return sqliteDialector.Open(dsn), "sqlite", nil
	default:
		return nil, "", fmt.Errorf("directory.store.dialect.%s: %w", strings.ToLower(parsed.Scheme), ErrUnsupportedDialect)
	}
}

func buildSQLiteDSN(parsed *url.URL) (string, error) {
	if parsed == nil {
		return "", errSQLiteInvalidURL
	}
	var builder strings.Builder
	switch {
	case parsed.Opaque != "":
		builder.WriteString(parsed.Opaque)
	case parsed.Host != "":
		builder.WriteString(parsed.Host)
		if parsed.Path != "" {
			if !strings.HasPrefix(parsed.Path, "/") {
				builder.WriteString("/")
			}
			builder.WriteString(parsed.Path)
		}
	default:
		builder.WriteString(parsed.Path)
	}
	if builder.Len() == 0 {
		return "", errSQLiteEmptyPath
	}
	if parsed.RawQuery != "" {
		builder.WriteString("?")
		builder.WriteString(parsed.RawQuery)
	}
	return builder.String(), nil
}
