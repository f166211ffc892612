// Command order-ingest validates gzipped JSONL order dumps offline: one
// order per line, one file per worker. Verdicts are tallied per code, and
// optionally recorded to the audit database. A bloom filter flags order IDs
// that were (probably) already seen during the run.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/order-settlement/internal/domain/order"
	"github.com/xenking/order-settlement/internal/storage/postgres"
)

const (
	bloomFPR = 0.001

	// Order lines can get long; allow up to 16 MiB per line.
	scanBufSize = 1 << 20
	scanBufMax  = 16 << 20
)

func main() {
	var (
		databaseURL   string
		maxOrderTotal string
		bloomCapacity uint
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL for verdict auditing (or DATABASE_URL env; empty skips recording)")
	flag.StringVar(&maxOrderTotal, "max-order-total", "999999.99", "ceiling on the product total of a single order")
	flag.UintVar(&bloomCapacity, "bloom-capacity", 10_000_000, "expected number of distinct order IDs")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("no input files: pass one or more .jsonl.gz paths")
		os.Exit(1)
	}

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, files, databaseURL, maxOrderTotal, bloomCapacity); err != nil {
		slog.Error("order ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// tally accumulates run statistics across file workers.
type tally struct {
	mu         sync.Mutex
	codes      map[order.Code]int
	orders     int
	malformed  int
	duplicates int
	filter     *bloom.BloomFilter
}

func (t *tally) record(v order.Verdict) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.orders++
	t.codes[v.Code]++
	if v.OrderID != "" && t.filter.TestOrAddString(v.OrderID) {
		t.duplicates++
	}
}

func (t *tally) recordMalformed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.malformed++
}

func run(ctx context.Context, files []string, databaseURL, maxOrderTotal string, bloomCapacity uint) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	maxTotal, err := decimal.NewFromString(maxOrderTotal)
	if err != nil {
		return errors.Wrapf(err, "parse max order total %q", maxOrderTotal)
	}
	limits := order.DefaultLimits()
	limits.MaxOrderTotal = maxTotal
	validator := order.NewValidator(limits)

	var recorder *postgres.VerdictRepository
	if databaseURL != "" {
		pool, err := postgres.NewPool(ctx, databaseURL)
		if err != nil {
			return errors.Wrap(err, "connect to database")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		recorder = postgres.NewVerdictRepository(pool)
	}

	t := &tally{
		codes:  make(map[order.Code]int),
		filter: bloom.NewWithEstimates(bloomCapacity, bloomFPR),
	}

	slog.Info("validating order dumps", slog.Int("files", len(files)))

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(processFile(ctx, f, validator, recorder, t))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("ingest complete",
		slog.Int("orders", t.orders),
		slog.Int("malformed", t.malformed),
		slog.Int("probable_duplicates", t.duplicates),
	)
	for code, count := range t.codes {
		slog.Info("verdicts", slog.String("code", string(code)), slog.Int("count", count))
	}
	return nil
}

func processFile(ctx context.Context, path string, validator *order.Validator, recorder *postgres.VerdictRepository, t *tally) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer f.Close()

		zr, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "gzip reader %s", path)
		}
		defer zr.Close()

		sc := bufio.NewScanner(zr)
		sc.Buffer(make([]byte, 0, scanBufSize), scanBufMax)

		lineNo := 0
		for sc.Scan() {
			lineNo++
			if lineNo%10_000 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			line := sc.Bytes()
			if len(line) == 0 {
				continue
			}

			o, err := order.DecodeOrder(line)
			if err != nil {
				t.recordMalformed()
				slog.Warn("skipping malformed line",
					slog.String("file", path),
					slog.Int("line", lineNo),
				)
				continue
			}

			verdict := validator.Validate(o)
			t.record(verdict)

			if recorder != nil {
				if err := recorder.Record(ctx, verdict); err != nil {
					return errors.Wrapf(err, "record verdict at %s:%d", path, lineNo)
				}
			}
		}
		if err := sc.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("file done", slog.String("file", path), slog.Int("lines", lineNo))
		return nil
	}
}
