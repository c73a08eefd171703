package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"hms-backend/models"
	"hms-backend/permissions"
	"hms-backend/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := utils.EnvOrDefault("DB_USER", "root")
	pass := utils.EnvOrDefault("DB_PASS", "")
	host := utils.EnvOrDefault("DB_HOST", "127.0.0.1")
	port := utils.EnvOrDefault("DB_PORT", "3306")
	dbName := utils.EnvOrDefault("DB_NAME", "hms_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

// SeedDatabase ensures a usable baseline: one superadmin, one branch,
// the global room types, and the default reservation tax.
func SeedDatabase() {
	var userCount int64
	DB.Model(&models.User{}).Count(&userCount)
	if userCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(utils.EnvOrDefault("SEED_ADMIN_PASSWORD", "admin123")), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("warning: failed to hash default admin password: %v", err)
		} else {
			admin := models.User{
				FullName:     "Super Admin",
				Email:        utils.EnvOrDefault("SEED_ADMIN_EMAIL", "admin@hms.local"),
				PasswordHash: string(hash),
				Role:         string(permissions.RoleSuperAdmin),
			}
			if err := DB.Create(&admin).Error; err != nil {
				log.Printf("warning: failed to create default admin: %v", err)
			} else {
				log.Println("Default superadmin seeded")
			}
		}
	}

	var branchCount int64
	DB.Model(&models.Branch{}).Count(&branchCount)
	if branchCount == 0 {
		branch := models.Branch{Name: "Main Branch"}
		if err := DB.Create(&branch).Error; err != nil {
			log.Printf("warning: failed to seed default branch: %v", err)
		} else {
			log.Println("Default branch seeded")
		}
	}

	var rtCount int64
	DB.Model(&models.RoomType{}).Count(&rtCount)
	if rtCount == 0 {
		// BranchID left nil: these types are visible to every branch.
		roomTypes := []models.RoomType{
			{Name: "Standard", Description: "Standard Room", MaxOccupancy: 2},
			{Name: "Superior", Description: "Superior Room", MaxOccupancy: 3},
			{Name: "Deluxe", Description: "Deluxe Room", MaxOccupancy: 4},
			{Name: "Suite", Description: "Suite", MaxOccupancy: 5},
		}
		DB.Create(&roomTypes)
		log.Println("RoomTypes seeded")
	}

	var taxCount int64
	DB.Model(&models.Tax{}).Count(&taxCount)
	if taxCount == 0 {
		taxes := []models.Tax{
			{TaxName: "VAT", Rate: decimal.RequireFromString("10"), ApplicationType: models.TaxApplicationReservation},
			{TaxName: "Service Charge", Rate: decimal.RequireFromString("5"), ApplicationType: models.TaxApplicationOrder},
		}
		if err := DB.Create(&taxes).Error; err != nil {
			log.Printf("warning: failed to seed taxes: %v", err)
		} else {
			log.Println("Taxes seeded")
		}
	}
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	// AutoMigrate in parent->child order.
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Branch{},
		&models.RoomType{},
		&models.Room{},
		&models.Guest{},
		&models.Tax{},
		&models.Reservation{},
		&models.ReservationRoom{},
		&models.OutboxEvent{},
	); err != nil {
		return err
	}

	SeedDatabase()
	return nil
}
