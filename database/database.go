package database

import (
	"fmt"
	"log"
	"os"
	"strings"

	"mall-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=mall port=5432 sslmode=disable"
	}

	return Open(postgres.Open(dsn))
}

// Open connects through any dialector with the shared gorm settings.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(LogLevel(os.Getenv("DB_LOG_LEVEL"))),
	})
}

func LogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Models lists every table in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Customer{},
		&models.Category{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Wishlist{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	if err := createOpenCartIndexes(db); err != nil {
		return err
	}

	if db.Dialector.Name() == "postgres" {
		return applyConstraints(db)
	}
	return nil
}

// constraints are the table checks AutoMigrate cannot express. Each pair drops
// and re-adds the check so the statements are safe to rerun.
var constraints = []struct{ table, name, check string }{
	{"carts", "chk_carts_owner", "(user_id IS NULL) <> (session_key IS NULL)"},
	{"products", "chk_products_stock", "stock >= 0"},
	{"cart_items", "chk_cart_items_quantity", "quantity BETWEEN 1 AND 10000"},
	{"order_items", "chk_order_items_quantity", "quantity BETWEEN 1 AND 10000"},
	{"payments", "chk_payments_status", "status IN ('Pending', 'Failed', 'Completed')"},
}

// openCartIndexes allow at most one open cart per owner. Both dialects support
// partial unique indexes.
var openCartIndexes = []struct{ name, column string }{
	{"idx_carts_open_user", "user_id"},
	{"idx_carts_open_session", "session_key"},
}

func createOpenCartIndexes(db *gorm.DB) error {
	for _, idx := range openCartIndexes {
		stmt := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON carts (%s) WHERE complete = false`, idx.name, idx.column)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", idx.name, err)
		}
	}
	return nil
}

func applyConstraints(db *gorm.DB) error {
	for _, c := range constraints {
		if err := db.Exec(fmt.Sprintf(`ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s`, c.table, c.name)).Error; err != nil {
			return fmt.Errorf("failed to drop %s: %w", c.name, err)
		}
		if err := db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)`, c.table, c.name, c.check)).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminUsername := os.Getenv("ADMIN_USERNAME")

	if adminEmail == "" {
		adminEmail = "admin@mall.local"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}
	if adminUsername == "" {
		adminUsername = "admin"
	}

	var existingUser models.User
	result := db.Where("email = ?", adminEmail).First(&existingUser)
	if result.Error == nil {
		// Admin already exists
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username: adminUsername,
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Default admin created: %s", adminEmail)
	return nil
}
