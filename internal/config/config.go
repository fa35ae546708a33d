package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SheetRef addresses one sheet inside a spreadsheet.
type SheetRef struct {
	SpreadsheetID string
	SheetName     string
}

func (r SheetRef) Enabled() bool {
	return r.SpreadsheetID != "" && r.SheetName != ""
}

// Config is the whole process configuration, read from the environment.
type Config struct {
	BotToken    string        `envconfig:"BOT_TOKEN" required:"true"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// Target chats: invites are issued for and bans applied to all three.
	MainChatID          int64 `envconfig:"MAIN_CHAT_ID" required:"true"`
	PriceChatID         int64 `envconfig:"PRICE_CHAT_ID" required:"true"`
	CommunicationChatID int64 `envconfig:"COMMUNICATION_CHAT_ID" required:"true"`

	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN    string `envconfig:"DB_DSN" default:"gorbushka.db"`

	GoogleCredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE"`

	CategoriesSpreadsheetID   string `envconfig:"CATEGORIES_SPREADSHEET_ID"`
	CategoriesSheetName       string `envconfig:"CATEGORIES_SHEET_NAME"`
	ApplicationsSpreadsheetID string `envconfig:"APPLICATIONS_SPREADSHEET_ID"`
	ApplicationsSheetName     string `envconfig:"APPLICATIONS_SHEET_NAME"`
	ApprovedSpreadsheetID     string `envconfig:"APPROVED_SPREADSHEET_ID"`
	ApprovedSheetName         string `envconfig:"APPROVED_SHEET_NAME"`
	BlackListSpreadsheetID    string `envconfig:"BLACK_LIST_SPREADSHEET_ID"`
	BlackListSheetName        string `envconfig:"BLACK_LIST_SHEET_NAME"`

	Timezone              string        `envconfig:"TIMEZONE" default:"Europe/Moscow"`
	BlackListSyncInterval time.Duration `envconfig:"BLACK_LIST_SYNC_INTERVAL" default:"5s"`

	BootstrapAdminIDs []int64 `envconfig:"BOOTSTRAP_ADMIN_IDS"`
	AlertChatID       int64   `envconfig:"ALERT_CHAT_ID"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q; allowed: sqlite, postgres", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.BlackListSyncInterval <= 0 {
		return fmt.Errorf("BLACK_LIST_SYNC_INTERVAL must be > 0")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) CategoriesSheet() SheetRef {
	return SheetRef{SpreadsheetID: c.CategoriesSpreadsheetID, SheetName: c.CategoriesSheetName}
}

func (c *Config) ApplicationsSheet() SheetRef {
	return SheetRef{SpreadsheetID: c.ApplicationsSpreadsheetID, SheetName: c.ApplicationsSheetName}
}

func (c *Config) ApprovedSheet() SheetRef {
	return SheetRef{SpreadsheetID: c.ApprovedSpreadsheetID, SheetName: c.ApprovedSheetName}
}

func (c *Config) BlackListSheet() SheetRef {
	return SheetRef{SpreadsheetID: c.BlackListSpreadsheetID, SheetName: c.BlackListSheetName}
}
