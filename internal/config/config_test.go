package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("MAIN_CHAT_ID", "-1001")
	t.Setenv("PRICE_CHAT_ID", "-1002")
	t.Setenv("COMMUNICATION_CHAT_ID", "-1003")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBDriver != DriverSQLite {
		t.Errorf("expected sqlite driver, got %q", cfg.DBDriver)
	}
	if cfg.BlackListSyncInterval != 5*time.Second {
		t.Errorf("expected 5s sync interval, got %v", cfg.BlackListSyncInterval)
	}
	if cfg.Timezone != "Europe/Moscow" {
		t.Errorf("expected Europe/Moscow, got %q", cfg.Timezone)
	}
	if cfg.CategoriesSheet().Enabled() {
		t.Error("categories sheet must be disabled without ids")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "postgres://u:p@localhost/db?sslmode=disable")
	t.Setenv("BOOTSTRAP_ADMIN_IDS", "10,20")
	t.Setenv("BLACK_LIST_SHEET_NAME", "Blacklist")
	t.Setenv("BLACK_LIST_SPREADSHEET_ID", "sheet-id")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBDriver != DriverPostgres {
		t.Errorf("expected normalized postgres driver, got %q", cfg.DBDriver)
	}
	if len(cfg.BootstrapAdminIDs) != 2 || cfg.BootstrapAdminIDs[1] != 20 {
		t.Errorf("unexpected bootstrap admins: %v", cfg.BootstrapAdminIDs)
	}
	if !cfg.BlackListSheet().Enabled() {
		t.Error("black list sheet must be enabled")
	}
	if cfg.MainChatID != -1001 || cfg.PriceChatID != -1002 || cfg.CommunicationChatID != -1003 {
		t.Errorf("unexpected target chats: %d %d %d", cfg.MainChatID, cfg.PriceChatID, cfg.CommunicationChatID)
	}
}

func TestLoad_MissingTokenFails(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without BOT_TOKEN")
	}
}

func TestValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := &Config{BotToken: "x", DBDriver: "mysql", DBDSN: "x", BlackListSyncInterval: time.Second, Timezone: "UTC"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
