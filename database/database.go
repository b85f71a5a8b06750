package database

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"lorekeeper/internal/domain/stories"
	"lorekeeper/internal/domain/users"
	"lorekeeper/internal/domain/works"
	"lorekeeper/internal/platform/logger"
)

// Open connects to postgres and migrates every model.
func Open(dsn string, log *logger.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	log.Info("connected and migrated")
	return db, nil
}

// liveUnique indexes allow any number of deleted rows but one live row per key.
var liveUnique = []struct {
	name, table, columns string
}{
	{"ux_story_set_rel_live", stories.StorySetRelTable, "story_id, set_id"},
	{"ux_works_relation_live", works.WorksRelationTable, "works_id, set_id"},
	{"ux_story_relation_live", stories.StoryRelationTable, "story_id, related_id, relation_type"},
}

func Migrate(db *gorm.DB) error {
	if err := autoMigrate(db); err != nil {
		return err
	}
	for _, ix := range liveUnique {
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s) WHERE is_deleted = false",
			ix.name, ix.table, ix.columns)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("index %s: %w", ix.name, err)
		}
	}
	return nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// core
		&users.User{},

		// stories
		&stories.StorySet{},
		&stories.Story{},
		&stories.StorySetRel{},
		&stories.StoryRelation{},

		// works
		&works.WorksSet{},
		&works.Work{},
		&works.WorksRelation{},
	)
}

// SeedAdmin creates the admin account when no user with that name exists yet.
func SeedAdmin(db *gorm.DB, name, password string) (bool, error) {
	if name == "" || password == "" {
		return false, nil
	}

	var n int64
	if err := db.Model(&users.User{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	u := users.User{Name: name, Password: string(hashed), Role: users.RoleAdmin}
	if err := db.Create(&u).Error; err != nil {
		return false, err
	}
	return true, nil
}
