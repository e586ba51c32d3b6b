package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/harrisonrobin/invoicer/pkg/notion"
)

const (
	xdgAppName = "invoicer"
	configFile = "config.toml"
)

// Environment variables that override values from the config file.
const (
	EnvAssigneeID         = "INVOICER_ASSIGNEE_ID"
	EnvTasksDatabaseID    = "INVOICER_TASKS_DB"
	EnvPaymentsDatabaseID = "INVOICER_PAYMENTS_DB"
)

var ErrIncomplete = errors.New("incomplete configuration")

// Config holds the Notion databases and property names the invoice batch
// works against.
type Config struct {
	AssigneeID         string `toml:"assignee_id"`
	TasksDatabaseID    string `toml:"tasks_database_id"`
	PaymentsDatabaseID string `toml:"payments_database_id"`

	InvoiceNumberProperty string `toml:"invoice_number_property"`
	TaskRelationProperty  string `toml:"task_relation_property"`
	TitleProperty         string `toml:"title_property"`
	DueProperty           string `toml:"due_property"`
	AssigneeProperty      string `toml:"assignee_property"`

	// RemoteDateFormat is the Go time layout Notion date filters expect.
	RemoteDateFormat string `toml:"remote_date_format"`

	NotionVersion string `toml:"notion_version"`
	BaseURL       string `toml:"base_url"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		InvoiceNumberProperty: "Invoice #",
		TaskRelationProperty:  "Task",
		TitleProperty:         "Subtask",
		DueProperty:           "Due",
		AssigneeProperty:      "Assignee",
		RemoteDateFormat:      "2006-01-02",
		NotionVersion:         notion.DefaultVersion,
		BaseURL:               notion.DefaultBaseURL,
	}
}

func GetConfigPath() (string, error) {
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName, configFile), nil
}

// Load reads the config from the standard location.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path on top of Default and applies
// environment overrides. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAssigneeID); v != "" {
		c.AssigneeID = v
	}
	if v := os.Getenv(EnvTasksDatabaseID); v != "" {
		c.TasksDatabaseID = v
	}
	if v := os.Getenv(EnvPaymentsDatabaseID); v != "" {
		c.PaymentsDatabaseID = v
	}
}

// Validate checks required settings and normalizes Notion ids in place.
func (c *Config) Validate() error {
	var missing []string
	if c.TasksDatabaseID == "" {
		missing = append(missing, "tasks_database_id")
	}
	if c.PaymentsDatabaseID == "" {
		missing = append(missing, "payments_database_id")
	}
	if c.InvoiceNumberProperty == "" {
		missing = append(missing, "invoice_number_property")
	}
	if c.TaskRelationProperty == "" {
		missing = append(missing, "task_relation_property")
	}
	if c.DueProperty == "" {
		missing = append(missing, "due_property")
	}
	if c.RemoteDateFormat == "" {
		missing = append(missing, "remote_date_format")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}

	for _, id := range []*string{&c.TasksDatabaseID, &c.PaymentsDatabaseID} {
		normalized, err := notion.NormalizeID(*id)
		if err != nil {
			return err
		}
		*id = normalized
	}
	if c.AssigneeID != "" {
		normalized, err := notion.NormalizeID(c.AssigneeID)
		if err != nil {
			return fmt.Errorf("assignee_id: %w", err)
		}
		c.AssigneeID = normalized
	}
	return nil
}

// Save writes the config to the standard location.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return cfg.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory if needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
