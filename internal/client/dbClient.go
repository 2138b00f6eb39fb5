package client

import (
	"log"
	"strings"
	"time"

	"payhere-integration-demo/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDBClient opens the database behind databaseURL. A "file:" DSN (or a
// bare *.db path) selects sqlite, anything else is treated as a mysql DSN.
func InitDBClient(databaseURL string) *gorm.DB {
	var dialector gorm.Dialector
	if strings.HasPrefix(databaseURL, "file:") || strings.HasSuffix(databaseURL, ".db") {
		dialector = sqlite.Open(databaseURL)
	} else {
		dialector = mysql.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Plan{},
		&model.Subscription{},
		&model.APIKey{},
	); err != nil {
		log.Fatal(err)
	}

	return db
}
