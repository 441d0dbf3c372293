package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/angelmondragon/procureflow-backend/internal/auth"
	"github.com/angelmondragon/procureflow-backend/internal/users"
	"github.com/angelmondragon/procureflow-backend/pkg/config"
	"github.com/angelmondragon/procureflow-backend/pkg/db"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
	"github.com/angelmondragon/procureflow-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

type options struct {
	dir        string
	name       string
	version    string
	adminEmail string
	adminName  string
}

// env bundles what the database commands share.
type env struct {
	cfg    *config.Config
	client *db.Client
	runner *migrate.Runner
}

type command struct {
	needsDB bool
	run     func(ctx context.Context, opts options, e *env) (string, error)
}

var commands = map[string]command{
	"create": {run: func(_ context.Context, opts options, _ *env) (string, error) {
		if opts.name == "" {
			return "", errors.New("-name is required")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		return "created " + path, err
	}},
	"validate": {run: func(_ context.Context, opts options, _ *env) (string, error) {
		return "migrations valid", migrate.ValidateDir(opts.dir)
	}},
	"up": {needsDB: true, run: func(ctx context.Context, _ options, e *env) (string, error) {
		applied, err := e.runner.Up(ctx)
		return fmt.Sprintf("applied %d migration(s) %v", len(applied), applied), err
	}},
	"down": {needsDB: true, run: func(ctx context.Context, _ options, e *env) (string, error) {
		version, err := e.runner.Down(ctx)
		return fmt.Sprintf("rolled back %d", version), err
	}},
	"status": {needsDB: true, run: func(ctx context.Context, _ options, e *env) (string, error) {
		states, err := e.runner.Status(ctx)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, s := range states {
			mark := "pending"
			if s.Applied {
				mark = "applied"
			}
			fmt.Fprintf(&b, "%-8s %d %s\n", mark, s.Version, s.Path)
		}
		return strings.TrimRight(b.String(), "\n"), nil
	}},
	"version": {needsDB: true, run: func(ctx context.Context, opts options, e *env) (string, error) {
		if opts.version == "" {
			return "", errors.New("-version is required")
		}
		moved, err := e.runner.To(ctx, opts.version)
		return fmt.Sprintf("at %s after %d step(s)", opts.version, len(moved)), err
	}},
	"seed-admin": {needsDB: true, run: func(ctx context.Context, opts options, e *env) (string, error) {
		password := os.Getenv("PROCUREFLOW_ADMIN_PASSWORD")
		created, err := auth.EnsureAdmin(ctx, users.NewRepository(e.client.DB()), e.cfg.Password, opts.adminEmail, opts.adminName, password)
		if err != nil {
			return "", err
		}
		if !created {
			return "admin already present: " + opts.adminEmail, nil
		}
		return "admin created: " + opts.adminEmail, nil
	}},
}

func commandNames() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

func main() {
	_ = godotenv.Load()

	var opts options
	name := flag.String("cmd", "up", "migration command: "+commandNames())
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name (create)")
	flag.StringVar(&opts.version, "version", "", "target version YYYYMMDDHHMMSS (version)")
	flag.StringVar(&opts.adminEmail, "admin-email", "", "admin email (seed-admin)")
	flag.StringVar(&opts.adminName, "admin-name", "Administrator", "admin display name (seed-admin)")
	flag.Parse()

	cmd, ok := commands[*name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown -cmd %q, want one of %s\n", *name, commandNames())
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *name,
		"dir": opts.dir,
	})

	e := &env{cfg: cfg}
	if cmd.needsDB {
		e.client, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "database unavailable", err)
			os.Exit(1)
		}
		defer e.client.Close()

		sqlDB, err := e.client.DB().DB()
		if err == nil {
			e.runner, err = migrate.NewRunner(sqlDB, opts.dir)
		}
		if err != nil {
			logg.Error(ctx, "migration runner unavailable", err)
			e.client.Close()
			os.Exit(1)
		}
	}

	out, err := cmd.run(ctx, opts, e)
	if err != nil {
		logg.Error(ctx, "migrate command failed", err)
		if e.client != nil {
			e.client.Close()
		}
		os.Exit(1)
	}
	logg.Info(ctx, "migrate command finished")
	fmt.Println(out)
}
