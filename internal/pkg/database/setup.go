package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/mft-data/fitmenthub/app/models"
	"github.com/mft-data/fitmenthub/internal/pkg/env"
)

var DB *gorm.DB

const maxRetries = 5
const retryDelay = 5 * time.Second

// BuildDSN resolves the MySQL DSN. DATABASE_URL wins when set; otherwise the
// individual DB_* variables are combined.
func BuildDSN() string {
	if url := env.GetEnv("DATABASE_URL", ""); url != "" {
		// accept both plain DSNs and mysql:// URLs
		return strings.TrimPrefix(url, "mysql://")
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)
}

func SetupDatabase() {
	var err error
	dsn := BuildDSN()

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), &gorm.Config{})
		if err == nil {
			DB.AutoMigrate(
				&models.Tenant{},
				&models.User{},
				&models.FieldConfiguration{},
				&models.FieldConfigurationHistory{},
				&models.UploadSession{},
				&models.VCDBRecord{},
				&models.ProductRecord{},
				&models.Fitment{},
				&models.AIFitmentProposal{},
				&models.Job{},
				&models.Lineage{},
				&models.VCDBCategory{},
				&models.Preset{},
			)

			return
		}

		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

// GetDB returns the global database handle.
func GetDB() *gorm.DB {
	return DB
}

// SetDB swaps the global handle, used by tests with sqlite/mock databases.
func SetDB(db *gorm.DB) {
	DB = db
}
