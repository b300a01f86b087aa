// Package testutil provides shared utilities for testing.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/palemoky/poetry-importer/internal/config"
)

// TestKey is the API key the fake backend accepts.
const TestKey = "test-service-key"

// record is one row of any collection. Filters run against the JSON payload.
type record struct {
	ID         int64          `gorm:"primaryKey;autoIncrement"`
	Collection string         `gorm:"not null;index"`
	Payload    datatypes.JSON `gorm:"not null"`
}

// FakeBackend is a PostgREST-compatible stub for the dynasties, poets and poems
// collections. It enforces the API key headers, supports `?col=eq.value`
// filters and answers inserts with 201 and the created representation.
// Rows live in an in-memory SQLite database. There are no unique constraints.
type FakeBackend struct {
	Server *httptest.Server

	db *gorm.DB

	mu          sync.Mutex
	failCreate  map[string]int
	failSelect  map[string]int
	requests    map[string]int
	lastHeaders http.Header
	throttle    *throttle
}

var collections = map[string]bool{
	"dynasties": true,
	"poets":     true,
	"poems":     true,
}

// NewFakeBackend starts a fake backend that shuts down with the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory database")

	// :memory: is per connection
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gormDB.AutoMigrate(&record{}), "Failed to run migrations")

	f := &FakeBackend{
		db:         gormDB,
		failCreate: make(map[string]int),
		failSelect: make(map[string]int),
		requests:   make(map[string]int),
	}
	f.Server = httptest.NewServer(f.router())

	t.Cleanup(func() {
		f.Server.Close()
		_ = sqlDB.Close()
	})

	return f
}

// Config returns a backend configuration pointing at the fake.
func (f *FakeBackend) Config() config.BackendConfig {
	return config.BackendConfig{URL: f.Server.URL, Key: TestKey, Timeout: 5 * time.Second}
}

// FailCreates makes every POST to table answer with status.
func (f *FakeBackend) FailCreates(table string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failCreate[table] = status
}

// FailSelects makes every GET of table answer with status.
func (f *FakeBackend) FailSelects(table string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSelect[table] = status
}

// Requests returns how many requests with method hit table.
func (f *FakeBackend) Requests(method, table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[method+" "+table]
}

// LastHeaders returns the headers of the most recent request.
func (f *FakeBackend) LastHeaders() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastHeaders.Clone()
}

// Count returns the number of rows in table.
func (f *FakeBackend) Count(t *testing.T, table string) int {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&record{}).Where("collection = ?", table).Count(&n).Error)
	return int(n)
}

// Rows returns all rows of table in insertion order, with their ids.
func (f *FakeBackend) Rows(t *testing.T, table string) []map[string]any {
	t.Helper()
	var recs []record
	require.NoError(t, f.db.Where("collection = ?", table).Order("id").Find(&recs).Error)

	rows := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		row, err := rec.row()
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return rows
}

// Seed inserts a row directly, bypassing HTTP. It returns the new id.
func (f *FakeBackend) Seed(t *testing.T, table string, row map[string]any) int64 {
	t.Helper()
	payload, err := json.Marshal(row)
	require.NoError(t, err)
	rec := record{Collection: table, Payload: datatypes.JSON(payload)}
	require.NoError(t, f.db.Create(&rec).Error)
	return rec.ID
}

func (r record) row() (map[string]any, error) {
	row := make(map[string]any)
	if err := json.Unmarshal(r.Payload, &row); err != nil {
		return nil, err
	}
	row["id"] = r.ID
	return row, nil
}

func (f *FakeBackend) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery(), f.track(), f.auth(), f.rateLimit())
	router.GET("/rest/v1/*resource", f.handleSelect)
	router.POST("/rest/v1/*resource", f.handleInsert)
	return router
}

func (f *FakeBackend) track() gin.HandlerFunc {
	return func(c *gin.Context) {
		f.mu.Lock()
		f.requests[c.Request.Method+" "+resourceName(c)]++
		f.lastHeaders = c.Request.Header.Clone()
		f.mu.Unlock()
		c.Next()
	}
}

func (f *FakeBackend) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("apikey") != TestKey || c.GetHeader("Authorization") != "Bearer "+TestKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid API key"})
			return
		}
		c.Next()
	}
}

func resourceName(c *gin.Context) string {
	return strings.Trim(c.Param("resource"), "/")
}

func (f *FakeBackend) forcedStatus(m map[string]int, table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return m[table]
}

func (f *FakeBackend) handleSelect(c *gin.Context) {
	table := resourceName(c)
	if table == "" {
		c.JSON(http.StatusOK, gin.H{"swagger": "2.0"})
		return
	}
	if !collections[table] {
		c.JSON(http.StatusNotFound, gin.H{"message": "relation \"public." + table + "\" does not exist"})
		return
	}
	if status := f.forcedStatus(f.failSelect, table); status != 0 {
		c.JSON(status, gin.H{"message": "forced select failure"})
		return
	}

	query := f.db.Where("collection = ?", table)
	for column, values := range c.Request.URL.Query() {
		for _, v := range values {
			value, ok := strings.CutPrefix(v, "eq.")
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"message": "unsupported operator in " + v})
				return
			}
			query = query.Where(datatypes.JSONQuery("payload").Equals(value, column))
		}
	}

	var recs []record
	if err := query.Order("id").Find(&recs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	rows := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		row, err := rec.row()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		rows = append(rows, row)
	}
	c.JSON(http.StatusOK, rows)
}

func (f *FakeBackend) handleInsert(c *gin.Context) {
	table := resourceName(c)
	if !collections[table] {
		c.JSON(http.StatusNotFound, gin.H{"message": "relation \"public." + table + "\" does not exist"})
		return
	}
	if status := f.forcedStatus(f.failCreate, table); status != 0 {
		c.JSON(status, gin.H{"message": "forced insert failure"})
		return
	}

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	delete(payload, "id")

	raw, err := json.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	rec := record{Collection: table, Payload: datatypes.JSON(raw)}
	if err := f.db.Create(&rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	row, err := rec.row()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, []map[string]any{row})
}
