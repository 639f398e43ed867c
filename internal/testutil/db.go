// Package testutil provides the Postgres-backed test database used by the
// ledger integration tests. Tests skip when no database is reachable.
package testutil

import (
	"os"
	"testing"
	"time"

	"gallery-service/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultTestDSN = "host=localhost port=5432 user=postgres password=postgres dbname=gallery_test sslmode=disable"

func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("skipping Postgres integration tests: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Skipf("skipping Postgres integration tests: %v", err)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(time.Minute)
	if err := sqlDB.Ping(); err != nil {
		t.Skipf("skipping Postgres integration tests: %v", err)
	}

	if err := db.AutoMigrate(
		&model.ProductCategory{},
		&model.Product{},
		&model.StockLot{},
		&model.StockQuant{},
		&model.GalleryImage{},
		&model.GalleryShare{},
		&model.HoldOrder{},
		&model.HoldLine{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func TruncateAll(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Exec(`TRUNCATE hold_lines, hold_orders, gallery_share_images, gallery_shares,
		gallery_images, stock_quants, stock_lots, products, product_categories RESTART IDENTITY CASCADE`).Error
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

// SeedLot inserts a category, product, lot and internal quant and returns
// the lot id.
func SeedLot(t *testing.T, db *gorm.DB, companyID uint, category, lotName string, freeQty float64) uint {
	t.Helper()

	var cat model.ProductCategory
	if err := db.Where(model.ProductCategory{Name: category}).FirstOrCreate(&cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	product := model.Product{Name: category + " Slab", CategoryID: cat.ID, ListPrice: 100}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	lot := model.StockLot{Name: lotName, ProductID: product.ID, CompanyID: companyID, Height: 3, Width: 1.5}
	if err := db.Create(&lot).Error; err != nil {
		t.Fatalf("seed lot: %v", err)
	}
	quant := model.StockQuant{LotID: lot.ID, CompanyID: companyID, LocationKind: model.LocationInternal, Quantity: freeQty}
	if err := db.Create(&quant).Error; err != nil {
		t.Fatalf("seed quant: %v", err)
	}
	return lot.ID
}
