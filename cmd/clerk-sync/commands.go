package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/clerk-sync/internal/config"
	"github.com/mattjoyce/clerk-sync/internal/lock"
	"github.com/mattjoyce/clerk-sync/internal/log"
	"github.com/mattjoyce/clerk-sync/internal/signature"
	"github.com/mattjoyce/clerk-sync/internal/storage"
	"github.com/mattjoyce/clerk-sync/internal/users"
	"github.com/mattjoyce/clerk-sync/internal/webhook"
)

// --- ACTION IMPLEMENTATIONS ---

func runStart(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return runStartContext(ctx, args)
}

// runStartContext serves until ctx is cancelled and the server has drained.
func runStartContext(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("clerk-sync starting", "version", version, "config", cfg.SourcePath)

	if cfg.State.Path != ":memory:" {
		lockPath := lock.PathFor(cfg.State.Path)
		pidLock, err := lock.Acquire(lockPath)
		if err != nil {
			logger.Error("failed to acquire state lock (another instance may be running)", "path", lockPath, "error", err)
			return 1
		}
		defer func() { _ = pidLock.Release() }()
		logger.Info("acquired state lock", "path", lockPath)
	}

	// Opening is not tied to ctx; a stop request during startup still ends in a clean shutdown.
	db, err := storage.OpenSQLite(context.Background(), cfg.State.Path)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.State.Path, "error", err)
		return 1
	}
	defer db.Close()
	logger.Info("database opened", "path", cfg.State.Path)

	webhookConfig, err := webhook.FromGlobalConfig(cfg)
	if err != nil {
		logger.Error("failed to configure webhook", "error", err)
		return 1
	}
	verifier := signature.NewSvixVerifier(webhookConfig.Tolerance)
	server := webhook.New(webhookConfig, verifier, users.NewStore(db), log.WithComponent("webhook"))

	// Start returns only after in-flight deliveries drain, so the deferred
	// db.Close and lock release never race a running handler.
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	logger.Info("clerk-sync running (press Ctrl+C to stop)")

	err = <-done
	if ctx.Err() == nil || !errors.Is(err, context.Canceled) {
		logger.Error("webhook server failed", "error", err)
		return 1
	}

	logger.Info("clerk-sync stopped")
	return 0
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Println(styleError.Render("✗ ") + fmt.Sprintf("Configuration invalid: %v", err))
		return 1
	}

	result := config.Check(cfg)
	printCheckResult(os.Stdout, cfg, result)
	if !result.Passed {
		return 1
	}
	return 0
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("lock", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	manifestPath, err := config.Lock(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lock failed: %v\n", err)
		return 1
	}

	fmt.Println(styleOK.Render("✓ ") + "Checksums written to " + manifestPath)
	return 0
}

func runUserList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	store, db, err := openStore(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer db.Close()

	all, err := store.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *jsonOut {
		if all == nil {
			all = []*users.User{}
		}
		return printJSON(all)
	}
	printUserTable(os.Stdout, all)
	return 0
}

func runUserShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}
	// Allow flags after the id: 'clerk-sync user show user_123 --json'.
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: clerk-sync user show EXTERNAL_ID [--config PATH] [--json]")
		return 1
	}
	externalID := fs.Arg(0)
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	store, db, err := openStore(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer db.Close()

	u, err := store.Get(context.Background(), externalID)
	if errors.Is(err, users.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "User %q not found\n", externalID)
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *jsonOut {
		return printJSON(u)
	}
	printUser(os.Stdout, u)
	return 0
}

func runWebhookSign(args []string) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory (for the secret)")
	secret := fs.String("secret", "", "Signing secret (overrides config)")
	file := fs.String("file", "", "Payload file, or - for stdin")
	id := fs.String("id", "", "svix-id (default: random msg_ id)")
	ts := fs.Int64("timestamp", 0, "svix-timestamp in unix seconds (default: now)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		return 1
	}

	key := *secret
	if key == "" {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			return 1
		}
		key = cfg.Webhook.Secret
	}

	body, err := readPayload(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	msgID := *id
	if msgID == "" {
		msgID = "msg_" + uuid.NewString()
	}
	at := time.Now()
	if *ts != 0 {
		at = time.Unix(*ts, 0)
	}

	sig, err := signature.Sign(key, msgID, at, body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("%s: %s\n", signature.HeaderID, msgID)
	fmt.Printf("%s: %s\n", signature.HeaderTimestamp, strconv.FormatInt(at.Unix(), 10))
	fmt.Printf("%s: %s\n", signature.HeaderSignature, sig)
	return 0
}

// --- HELPERS ---

func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	return config.Load(configPath)
}

func openStore(configPath string) (*users.Store, *sql.DB, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := storage.OpenSQLite(context.Background(), cfg.State.Path)
	if err != nil {
		return nil, nil, err
	}
	return users.NewStore(db), db, nil
}

func readPayload(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func printJSON(v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(string(data))
	return 0
}
