package database

import (
	"errors"
	"os"
	"regexp"
	"testing"

	"mall-backend/models"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestMigrateCreatesTables(t *testing.T) {
	db := setupTestDB(t)

	for _, model := range Models() {
		if !db.Migrator().HasTable(model) {
			t.Errorf("expected table for %T", model)
		}
	}
	if !db.Migrator().HasIndex(&models.Wishlist{}, "idx_wishlist_user_product") {
		t.Error("expected unique wishlist index")
	}
	if !db.Migrator().HasIndex(&models.CartItem{}, "idx_cart_product") {
		t.Error("expected unique cart line index")
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := setupTestDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestOpenCartIsUniquePerOwner(t *testing.T) {
	db := setupTestDB(t)

	for _, idx := range openCartIndexes {
		if !db.Migrator().HasIndex(&models.Cart{}, idx.name) {
			t.Errorf("expected index %s", idx.name)
		}
	}

	user := models.User{Username: "owner", Email: "owner@test.com", Password: "hash"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	key := "browser-1"

	owners := []struct {
		name string
		cart func() *models.Cart
	}{
		{"user", func() *models.Cart { return &models.Cart{UserID: &user.ID} }},
		{"session", func() *models.Cart { return &models.Cart{SessionKey: &key} }},
	}
	for _, o := range owners {
		t.Run(o.name, func(t *testing.T) {
			first := o.cart()
			if err := db.Create(first).Error; err != nil {
				t.Fatal(err)
			}
			if err := db.Create(o.cart()).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
				t.Fatalf("expected duplicated key for a second open cart, got %v", err)
			}

			// A completed cart no longer counts as open.
			if err := db.Model(first).UpdateColumn("complete", true).Error; err != nil {
				t.Fatal(err)
			}
			if err := db.Create(o.cart()).Error; err != nil {
				t.Fatalf("expected new open cart after completion, got %v", err)
			}
		})
	}
}

func TestCreateOpenCartIndexesPostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, idx := range openCartIndexes {
		mock.ExpectExec(regexp.QuoteMeta("CREATE UNIQUE INDEX IF NOT EXISTS " + idx.name + " ON carts (" + idx.column + ") WHERE complete = false")).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := createOpenCartIndexes(db); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestApplyConstraintsPostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range constraints {
		mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE " + c.table + " DROP CONSTRAINT IF EXISTS " + c.name)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE " + c.table + " ADD CONSTRAINT " + c.name + " CHECK")).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := applyConstraints(db); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestApplyConstraintsReportsFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}

	mock.ExpectExec("ALTER TABLE carts DROP CONSTRAINT").WillReturnError(os.ErrPermission)

	if err := applyConstraints(db); err == nil {
		t.Error("expected error when the drop fails")
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logger.LogLevel
	}{
		{"", logger.Warn},
		{"silent", logger.Silent},
		{"ERROR", logger.Error},
		{" info ", logger.Info},
		{"verbose", logger.Warn},
	}
	for _, tt := range tests {
		if got := LogLevel(tt.in); got != tt.want {
			t.Errorf("LogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCreateDefaultAdminNew(t *testing.T) {
	db := setupTestDB(t)
	os.Setenv("ADMIN_EMAIL", "testadmin@test.com")
	os.Setenv("ADMIN_PASSWORD", "testpassword123")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")

	err := CreateDefaultAdmin(db)
	if err != nil {
		t.Fatal(err)
	}

	var user models.User
	if err := db.Where("email = ?", "testadmin@test.com").First(&user).Error; err != nil {
		t.Fatal("admin user not created")
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("expected role 'admin', got '%s'", user.Role)
	}
	if user.Username != "admin" {
		t.Errorf("expected username 'admin', got '%s'", user.Username)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("testpassword123")) != nil {
		t.Error("stored password is not a bcrypt hash of ADMIN_PASSWORD")
	}
}

func TestCreateDefaultAdminAlreadyExists(t *testing.T) {
	db := setupTestDB(t)
	os.Setenv("ADMIN_EMAIL", "existing@test.com")
	os.Setenv("ADMIN_PASSWORD", "password123")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer os.Unsetenv("ADMIN_PASSWORD")

	// Create admin first time
	err := CreateDefaultAdmin(db)
	if err != nil {
		t.Fatal(err)
	}

	// Second call should skip (no error)
	err = CreateDefaultAdmin(db)
	if err != nil {
		t.Fatal(err)
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", "existing@test.com").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 admin, got %d", count)
	}
}

func TestCreateDefaultAdminDefaults(t *testing.T) {
	db := setupTestDB(t)
	os.Unsetenv("ADMIN_EMAIL")
	os.Unsetenv("ADMIN_PASSWORD")
	os.Setenv("ADMIN_USERNAME", "root")
	defer os.Unsetenv("ADMIN_USERNAME")

	if err := CreateDefaultAdmin(db); err != nil {
		t.Fatal(err)
	}

	var user models.User
	if err := db.Where("email = ?", "admin@mall.local").First(&user).Error; err != nil {
		t.Fatal("admin not created with default email")
	}
	if user.Username != "root" {
		t.Errorf("expected username 'root', got '%s'", user.Username)
	}
}
