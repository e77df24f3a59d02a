package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/bitfantasy/barstock/internal/config"
	"github.com/bitfantasy/barstock/internal/inventory/entity"
	"github.com/bitfantasy/barstock/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_barstock"
	JWTSecret  = "barstock-jwt-secret-key-2026"
)

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is cleaned up after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "barstock")
	password := getEnv("DB_PASSWORD", "barstock123")
	dbname := getEnv("DB_NAME", "barstock")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// Create a unique test schema for isolation
	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	// First: create schema using a temporary connection
	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// Second: open connection with search_path in DSN so ALL pooled connections use test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Migrate test tables
	err = db.AutoMigrate(
		&entity.User{},
		&entity.OperationLog{},
		&entity.Location{},
		&entity.UnitType{},
		&entity.Beverage{},
		&entity.Stock{},
		&entity.StockCount{},
		&entity.StockCountItem{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	// Cleanup on test completion
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		// Reconnect to drop the schema
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// TestConfig returns a config pointing at the test JWT secret
func TestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			BaseURL: "http://localhost:8080",
		},
		JWT: config.JWTConfig{
			Secret:          JWTSecret,
			SessionExpire:   12 * time.Hour,
			LoginLinkExpire: time.Hour,
			Issuer:          "barstock",
		},
	}
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// LoadTemplates loads the HTML templates from the project root into a test router
func LoadTemplates(r *gin.Engine) {
	root := projectRoot()
	if root != "" {
		r.LoadHTMLGlob(filepath.Join(root, "web/templates/*.html"))
	}
}

// GenerateSessionToken creates a valid session JWT for testing
func GenerateSessionToken(userID, username, name string, isStaff bool, locationID string) string {
	now := time.Now()
	claims := middleware.SessionClaims{
		UserID:     userID,
		Username:   username,
		Name:       name,
		IsStaff:    isStaff,
		LocationID: locationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "barstock",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// StaffToken returns a session token for a default staff test user
func StaffToken() string {
	return GenerateSessionToken("test-staff-001", "admin", "Test Admin", true, "")
}

// DoRequest executes a JSON HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DoFormRequest executes a form-encoded HTTP request with the session cookie set
func DoFormRequest(r *gin.Engine, method, path string, form url.Values, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// NewID generates a 32-char id matching the production format
func NewID() string {
	return uuid.New().String()[:32]
}

// SeedUser creates a test user in the database
func SeedUser(t *testing.T, db *gorm.DB, username, name string, isStaff, isActive bool) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:        NewID(),
		Username:  username,
		Name:      name,
		IsStaff:   isStaff,
		IsActive:  isActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return user
}

// SeedLocation creates a test location, optionally bound to a user
func SeedLocation(t *testing.T, db *gorm.DB, name string, userID *string) *entity.Location {
	t.Helper()
	location := &entity.Location{
		ID:        NewID(),
		Name:      name,
		IsActive:  true,
		UserID:    userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(location).Error; err != nil {
		t.Fatalf("Failed to seed test location: %v", err)
	}
	return location
}

// SeedUnitType creates a test unit type
func SeedUnitType(t *testing.T, db *gorm.DB, name string, multiplier int) *entity.UnitType {
	t.Helper()
	unitType := &entity.UnitType{
		ID:         NewID(),
		Name:       name,
		Multiplier: multiplier,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := db.Create(unitType).Error; err != nil {
		t.Fatalf("Failed to seed test unit type: %v", err)
	}
	return unitType
}

// SeedBeverage creates a test beverage assigned to the given locations
func SeedBeverage(t *testing.T, db *gorm.DB, name, unitTypeID, litersPerUnit string, alarmMinimum int, locations ...*entity.Location) *entity.Beverage {
	t.Helper()
	lpu, err := decimal.NewFromString(litersPerUnit)
	if err != nil {
		t.Fatalf("Invalid liters per unit %q: %v", litersPerUnit, err)
	}
	beverage := &entity.Beverage{
		ID:            NewID(),
		Name:          name,
		UnitTypeID:    unitTypeID,
		LitersPerUnit: lpu,
		AlarmMinimum:  alarmMinimum,
		Color:         entity.DefaultColor,
		IsActive:      true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := db.Create(beverage).Error; err != nil {
		t.Fatalf("Failed to seed test beverage: %v", err)
	}
	for _, location := range locations {
		if err := db.Model(beverage).Association("Locations").Append(location); err != nil {
			t.Fatalf("Failed to assign beverage to location: %v", err)
		}
	}
	return beverage
}

// SeedStock creates a stock row for a beverage at a location
func SeedStock(t *testing.T, db *gorm.DB, beverageID, locationID, quantity string) *entity.Stock {
	t.Helper()
	qty, err := decimal.NewFromString(quantity)
	if err != nil {
		t.Fatalf("Invalid quantity %q: %v", quantity, err)
	}
	stock := &entity.Stock{
		ID:          NewID(),
		BeverageID:  beverageID,
		LocationID:  locationID,
		Quantity:    qty,
		LastUpdated: time.Now(),
	}
	if err := db.Create(stock).Error; err != nil {
		t.Fatalf("Failed to seed test stock: %v", err)
	}
	return stock
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
