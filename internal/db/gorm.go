package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/models"
)

type (
	Bookmark struct {
		ID          string        `gorm:"primaryKey;size:36"`
		URL         string        `gorm:"size:2000;not null"`
		Title       string        `gorm:"size:200;not null"`
		Description string        `gorm:"size:500;not null"`
		Tags        []BookmarkTag `gorm:"foreignKey:BookmarkID;constraint:OnDelete:CASCADE"`
		CreatedAt   time.Time     `gorm:"not null;index:idx_bookmarks_created_at,sort:desc"`
		UpdatedAt   time.Time     `gorm:"not null"`
	}

	// BookmarkTag keeps one tag of a bookmark. Position preserves the order tags were given in.
	BookmarkTag struct {
		BookmarkID string `gorm:"primaryKey;size:36;uniqueIndex:uidx_bookmark_tags_bookmark_tag,priority:1"`
		Position   int    `gorm:"primaryKey;autoIncrement:false"`
		Tag        string `gorm:"size:30;not null;index:idx_bookmark_tags_tag;uniqueIndex:uidx_bookmark_tags_bookmark_tag,priority:2"`
	}
)

// BeforeSave rejects rows that would break the bookmark field constraints. The validator runs
// first on every request path, so reaching this is a bug or a direct store write.
func (b *Bookmark) BeforeSave(*gorm.DB) error {
	switch {
	case b.URL == "" || !(strings.HasPrefix(b.URL, "http://") || strings.HasPrefix(b.URL, "https://")):
		return &ConstraintError{Field: "url", Msg: "Must be a valid URL starting with http:// or https://"}
	case utf8.RuneCountInString(b.URL) > models.MaxURLLength:
		return &ConstraintError{Field: "url", Msg: "URL too long (max 2000 chars)"}
	case strings.TrimSpace(b.Title) == "":
		return &ConstraintError{Field: "title", Msg: "Title is required"}
	case utf8.RuneCountInString(b.Title) > models.MaxTitleLength:
		return &ConstraintError{Field: "title", Msg: "Title max 200 characters"}
	case utf8.RuneCountInString(b.Description) > models.MaxDescriptionLength:
		return &ConstraintError{Field: "description", Msg: "Description max 500 characters"}
	}
	return nil
}

func (t *BookmarkTag) BeforeSave(*gorm.DB) error {
	switch {
	case utf8.RuneCountInString(t.Tag) > models.MaxTagLength:
		return &ConstraintError{Field: "tags", Msg: "Each tag max 30 characters"}
	case t.Tag != strings.ToLower(t.Tag):
		return &ConstraintError{Field: "tags", Msg: "Tags must be lowercase"}
	}
	return nil
}

func NewGormClient(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if !cfg.IsProduction() {
		level = logger.Info
	}
	return Open(Dialector(cfg), level)
}

func Dialector(cfg *config.Config) gorm.Dialector {
	if cfg.DBDriver == config.DriverSQLite {
		return sqlite.Open(cfg.SQLitePath)
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
	return postgres.Open(dsn)
}

// Open connects through the dialector and migrates the bookmark tables.
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	newLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		Colorful:                  true,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if dialector.Name() == "sqlite" {
		// sqlite allows a single writer; an in-memory database also lives on one connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "get sql db")
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&Bookmark{}); err != nil {
		return nil, errors.Wrap(err, "migrate bookmark")
	}
	if err := db.AutoMigrate(&BookmarkTag{}); err != nil {
		return nil, errors.Wrap(err, "migrate bookmark tag")
	}

	return db, nil
}
