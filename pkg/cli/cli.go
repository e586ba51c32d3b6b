package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hako/durafmt"
	"github.com/harrisonrobin/invoicer/pkg/auth"
	"github.com/harrisonrobin/invoicer/pkg/config"
	"github.com/harrisonrobin/invoicer/pkg/daterange"
	"github.com/harrisonrobin/invoicer/pkg/invoice"
	"github.com/harrisonrobin/invoicer/pkg/notion"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// CodeError carries the process exit code for a failure.
type CodeError struct {
	Code    int
	Message string
}

func (e *CodeError) Error() string {
	return e.Message
}

// Env holds the process streams and the Notion client constructor.
type Env struct {
	Stdout    io.Writer
	Stderr    io.Writer
	NewClient func(ctx context.Context, cfg *config.Config) (invoice.Client, error)
}

// DefaultEnv wires the real streams and an authenticated Notion client.
func DefaultEnv() Env {
	return Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewClient: func(ctx context.Context, cfg *config.Config) (invoice.Client, error) {
			c, err := notion.NewClient(ctx, cfg.BaseURL, cfg.NotionVersion)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}
}

type options struct {
	live        bool
	verbose     bool
	configPath  string
	setAssignee string
	setToken    string
}

func (o *options) setup() bool {
	return o.setAssignee != "" || o.setToken != ""
}

// NewRootCommand builds the invoicer command.
func NewRootCommand(env Env) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "invoicer <invoice_title> <start> <end>",
		Short: "Add invoices to tasks for a given date range",
		Long: `Add invoices to the Notion tasks due between start and end (inclusive).

Dates use the MM-DD-YYYY format. Without --live no invoice is written and a
placeholder id is reported for each task.`,
		Example:       "  invoicer 'May Invoice' 01-01-2024 01-31-2024",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.setup() {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(3)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.NewWithOptions(cmd.OutOrStdout(), log.Options{Prefix: "invoicer"})
			if opts.verbose {
				logger.SetLevel(log.DebugLevel)
			}
			if opts.setup() {
				return runSetup(logger, opts)
			}
			return runBatch(cmd.Context(), env, logger, opts, args)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.live, "live", false, "create invoices in Notion (default is a dry run)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	f.StringVar(&opts.configPath, "config", "", "path to config.toml (default ~/.config/invoicer/config.toml)")
	f.StringVar(&opts.setAssignee, "set-assignee", "", "save the default assignee person id and exit")
	f.StringVar(&opts.setToken, "set-token", "", "save the Notion integration token and exit")
	return cmd
}

// Execute runs the command with args and returns the process exit code.
func Execute(ctx context.Context, args []string, env Env) int {
	cmd := NewRootCommand(env)
	cmd.SetArgs(args)
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	errLogger := log.NewWithOptions(env.Stderr, log.Options{Prefix: "invoicer"})
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		errLogger.Error(codeErr.Message)
		return codeErr.Code
	}

	// Anything else comes from cobra's flag and argument handling.
	errLogger.Error(err.Error())
	fmt.Fprint(env.Stderr, cmd.UsageString())
	return ExitUsage
}

// loadConfig reads --config when given, otherwise the standard location.
func loadConfig(opts *options) (*config.Config, string, error) {
	if opts.configPath != "" {
		cfg, err := config.LoadFrom(opts.configPath)
		return cfg, opts.configPath, err
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load()
	return cfg, path, err
}

func saveConfig(opts *options, cfg *config.Config) error {
	if opts.configPath != "" {
		return cfg.SaveTo(opts.configPath)
	}
	return config.Save(cfg)
}

func runSetup(logger *log.Logger, opts *options) error {
	if opts.setToken != "" {
		path, err := auth.SaveToken(opts.setToken)
		if err != nil {
			return &CodeError{Code: ExitError, Message: fmt.Sprintf("Error saving token: %v", err)}
		}
		logger.Info("Notion token saved", "path", path)
	}

	if opts.setAssignee != "" {
		id, err := notion.NormalizeID(opts.setAssignee)
		if err != nil {
			return &CodeError{Code: ExitUsage, Message: err.Error()}
		}
		cfg, path, err := loadConfig(opts)
		if err != nil {
			return &CodeError{Code: ExitError, Message: fmt.Sprintf("Error loading config: %v", err)}
		}
		cfg.AssigneeID = id
		if err := saveConfig(opts, cfg); err != nil {
			return &CodeError{Code: ExitError, Message: fmt.Sprintf("Error saving config: %v", err)}
		}
		logger.Info("Default assignee set", "id", id, "path", path)
	}
	return nil
}

func runBatch(ctx context.Context, env Env, logger *log.Logger, opts *options, args []string) error {
	title := args[0]
	r, err := daterange.Parse(args[1], args[2])
	if err != nil {
		if errors.Is(err, daterange.ErrInvalidRange) {
			return &CodeError{Code: ExitError, Message: "Error: Start date must not be after end date."}
		}
		return &CodeError{Code: ExitUsage, Message: err.Error()}
	}

	cfg, path, err := loadConfig(opts)
	if err != nil {
		return &CodeError{Code: ExitError, Message: fmt.Sprintf("Error loading config: %v", err)}
	}
	if err := cfg.Validate(); err != nil {
		return &CodeError{Code: ExitError, Message: fmt.Sprintf("Invalid config %s: %v", path, err)}
	}
	logger.Debug("config loaded", "path", path, "tasks_db", cfg.TasksDatabaseID, "payments_db", cfg.PaymentsDatabaseID)

	client, err := env.NewClient(ctx, cfg)
	if err != nil {
		return &CodeError{Code: ExitError, Message: fmt.Sprintf("Error creating Notion client: %v", err)}
	}

	mode := invoice.DryRun
	if opts.live {
		mode = invoice.Live
	} else {
		logger.Warn("Dry run: no invoices will be written to Notion (use --live to create them)")
	}

	began := time.Now()
	w := invoice.New(cfg, client, func(message string) { logger.Info(message) })
	summary, err := w.Run(ctx, title, r, mode)
	if err != nil {
		return &CodeError{Code: ExitError, Message: fmt.Sprintf("Error adding invoices: %v", err)}
	}

	if summary.Skipped > 0 {
		logger.Warn("Some tasks had no id and were skipped", "skipped", summary.Skipped, "created", summary.Created)
	}
	logger.Debug("batch finished",
		"mode", mode,
		"created", summary.Created,
		"elapsed", durafmt.Parse(time.Since(began)).LimitFirstN(2).String(),
	)
	return nil
}
