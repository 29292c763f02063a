package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createAPIKeyTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE api_keys (
		id TEXT PRIMARY KEY,
		bot_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		token_hash TEXT NOT NULL UNIQUE,
		permissions TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME
	);`)
}

func createBotProfileTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE bot_configs (
		bot_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		persona TEXT,
		tone TEXT,
		greeting TEXT,
		theme TEXT NOT NULL DEFAULT 'light',
		primary_color TEXT,
		position TEXT,
		avatar_url TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE bot_settings (
		bot_id TEXT PRIMARY KEY,
		business_name TEXT NOT NULL,
		business_description TEXT,
		model TEXT NOT NULL,
		temperature REAL,
		top_p REAL,
		max_tokens INTEGER,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE bot_runtime_settings (
		bot_id TEXT PRIMARY KEY,
		rate_limit_per_minute INTEGER,
		monthly_quota INTEGER,
		widget_enabled BOOLEAN,
		maintenance_mode BOOLEAN,
		allowed_origins TEXT DEFAULT '{}',
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func seedBotConfig(t *testing.T, db *gorm.DB, botID, userID string) {
	t.Helper()
	mustExec(t, db, `INSERT INTO bot_configs(bot_id,user_id,name,persona,tone,greeting,theme,primary_color,position,avatar_url,created_at,updated_at)
	VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`, botID, userID, "Helper", "You are helpful", "friendly", "Hi there", "dark", "#112233", nil, nil, time.Now(), time.Now())
}

func seedBotSettings(t *testing.T, db *gorm.DB, botID string) {
	t.Helper()
	mustExec(t, db, `INSERT INTO bot_settings(bot_id,business_name,business_description,model,temperature,top_p,max_tokens,created_at,updated_at)
	VALUES (?,?,?,?,?,?,?,?,?)`, botID, "Acme", "Widgets", "gpt-4o-mini", 0.5, 1.0, 1024, time.Now(), time.Now())
}

func seedBotRuntimeSettings(t *testing.T, db *gorm.DB, botID string) {
	t.Helper()
	mustExec(t, db, `INSERT INTO bot_runtime_settings(bot_id,rate_limit_per_minute,monthly_quota,widget_enabled,maintenance_mode,allowed_origins,created_at,updated_at)
	VALUES (?,?,?,?,?,?,?,?)`, botID, 60, 10000, true, false, "{https://acme.test,https://www.acme.test}", time.Now(), time.Now())
}
