package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/config"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/evidence"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/manifest"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/observability"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/runner"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/store"
)

// runVerifyCmd implements `ctt verify`.
//
// Exit codes:
//
//	0 = all phases passed and finalization completed
//	1 = a violation was detected or finalization was incomplete
//	2 = runtime error (bad flags, unreadable manifest, infrastructure)
func runVerifyCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		manifestPath string
		jsonOutput   bool
		noArchive    bool
	)
	cmd.StringVar(&manifestPath, "manifest", "", "Path to the run manifest YAML (REQUIRED)")
	cmd.BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	cmd.BoolVar(&noArchive, "no-archive", false, "Skip evidence archiving")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if manifestPath == "" {
		fmt.Fprintln(stderr, "Error: -manifest is required")
		return 2
	}

	loader, err := manifest.NewLoader()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	m, err := loader.LoadRun(manifestPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	ctx := context.Background()
	cfg := config.Load()

	r := runner.New()

	auditStore, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer closeDB()
	r.WithStore(auditStore)

	if !noArchive {
		archive, err := evidence.NewArchiveFromEnv(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		r.WithArchive(archive)
	}

	if cfg.OTLPEndpoint != "" {
		obsCfg := observability.DefaultConfig()
		obsCfg.OTLPEndpoint = cfg.OTLPEndpoint
		obsCfg.ServiceVersion = Version
		obs, err := observability.New(ctx, obsCfg)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		defer func() { _ = obs.Shutdown(ctx) }()
		r.WithObservability(obs)
	}

	rep, err := r.Run(ctx, m)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
	} else {
		printReport(stdout, rep)
	}

	if rep.Pass() {
		return 0
	}
	return 1
}

// openStore builds the audit store from configuration. The returned close
// func releases the underlying database handle, if any.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	noop := func() {}
	switch cfg.AuditBackend {
	case "memory", "":
		return store.NewMemoryStore(), noop, nil
	case "sqlite":
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite audit db: %w", err)
		}
		s, err := store.NewSQLiteStore(db)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return s, func() { _ = db.Close() }, nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres audit db: %w", err)
		}
		s := store.NewPostgresStore(db)
		if err := s.Init(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return s, func() { _ = db.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unsupported audit backend: %s", cfg.AuditBackend)
	}
}

func printReport(w io.Writer, rep *runner.Report) {
	fmt.Fprintf(w, "Run      %s\n", rep.RunID)
	fmt.Fprintf(w, "Contract %s\n", rep.ContractID)
	fmt.Fprintf(w, "Verdict  %s\n", rep.Verdict)
	fmt.Fprintln(w, "")

	for _, p := range rep.Phases {
		mark := "PASS"
		if !p.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "  [%s] %s", mark, p.Label)
		if p.Detail != "" {
			fmt.Fprintf(w, "  %s", p.Detail)
		}
		fmt.Fprintln(w, "")
	}

	if rep.Violation != nil {
		fmt.Fprintf(w, "\nViolation: %s\n", rep.Violation.Error())
	}
	if len(rep.Incomplete) > 0 {
		parts := make([]string, len(rep.Incomplete))
		for i, l := range rep.Incomplete {
			parts[i] = string(l)
		}
		fmt.Fprintf(w, "\nIncomplete finalization, missing: %s\n", strings.Join(parts, ", "))
	}
	if rep.Receipt != nil {
		fmt.Fprintf(w, "\nReceipt %s version=%d checksum=%#x\n",
			rep.Receipt.ReceiptID, rep.Receipt.Version, rep.Receipt.Computed)
	}
	if rep.BundleDigest != "" {
		fmt.Fprintf(w, "Evidence %s\n", rep.BundleDigest)
	}
}
