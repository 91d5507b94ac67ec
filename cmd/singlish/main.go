package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/jusunglee/singlish/internal/db/open"
	"github.com/jusunglee/singlish/internal/logger"
	"github.com/jusunglee/singlish/internal/repl"
	"github.com/jusunglee/singlish/internal/tables"
	"github.com/jusunglee/singlish/internal/translation"
	"github.com/jusunglee/singlish/internal/transliteration"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/rivo/uniseg"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("singlish")
	var (
		scriptName  = fs.StringLong("script", "sinhala", "Target script: sinhala or tamil")
		trace       = fs.BoolLong("trace", "Print how every word was resolved")
		workers     = fs.IntLong("workers", runtime.NumCPU(), "Lines converted in parallel when reading stdin")
		live        = fs.BoolLong("live", "Open the live terminal editor")
		tablesDir   = fs.StringLong("tables-dir", "", "Directory with replacement table files")
		databaseURL = fs.StringLong("database-url", "", "Load custom words from this database")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("SINGLISH")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	script, err := transliteration.ParseScript(*scriptName)
	if err != nil {
		return err
	}
	if *workers < 1 {
		return errors.New("workers must be at least 1")
	}

	log := logger.New()
	ctx := context.Background()

	base, err := loadTables(*tablesDir)
	if err != nil {
		return err
	}

	translator, closeRepo, err := newTranslator(ctx, base, *databaseURL)
	if err != nil {
		return err
	}
	defer closeRepo()
	log.Debug("tables loaded", "stats", translator.Engine().Stats())

	if *live {
		return repl.Run(translator, script)
	}

	var lines []string
	if args := fs.GetArgs(); len(args) > 0 {
		lines = []string{strings.Join(args, " ")}
	} else {
		lines, err = readLines(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	results, err := convertLines(ctx, translator, lines, script, *workers)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for _, r := range results {
		fmt.Fprintln(out, transliteration.Recompose(r))
		if *trace {
			writeTrace(out, r)
		}
	}
	return nil
}

func loadTables(dir string) (transliteration.Tables, error) {
	if dir == "" {
		return tables.Load()
	}
	t, err := tables.LoadFS(os.DirFS(dir))
	if err != nil {
		return transliteration.Tables{}, fmt.Errorf("loading tables from %s: %w", dir, err)
	}
	return t, nil
}

func newTranslator(ctx context.Context, base transliteration.Tables, databaseURL string) (*translation.Translator, func(), error) {
	if databaseURL == "" {
		t, err := translation.NewTranslator(ctx, base, nil)
		return t, func() {}, err
	}

	repo, err := open.Repository(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	t, err := translation.NewTranslator(ctx, base, repo)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	return t, func() { repo.Close() }, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

type tracer interface {
	Trace(text string, script transliteration.Script, caller string) []transliteration.Conversion
}

// convertLines converts each line on up to workers goroutines and returns
// the traces in input order.
func convertLines(ctx context.Context, t tracer, lines []string, script transliteration.Script, workers int) ([][]transliteration.Conversion, error) {
	results := make([][]transliteration.Conversion, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, line := range lines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = t.Trace(line, script, "cli")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeTrace(w io.Writer, trace []transliteration.Conversion) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range trace {
		if c.Token.Kind != transliteration.Word {
			continue
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\n",
			c.Token.Text, c.Result.Output, c.Result.Source, uniseg.GraphemeClusterCount(c.Result.Output))
	}
	tw.Flush()
}
