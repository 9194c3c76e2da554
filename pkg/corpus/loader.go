package corpus

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/CTAG07/markovdot/pkg/markov"
	"golang.org/x/sync/errgroup"
)

// Kind identifies how a file's records are extracted.
type Kind string

const (
	// KindText reads one record per line.
	KindText Kind = "txt"
	// KindJSON reads one record per string "text" field of the top-level
	// "messages" array.
	KindJSON Kind = "json"
	// KindSQLite reads one record per row returned by the configured query.
	KindSQLite Kind = "sqlite"
)

const (
	// DefaultMinTokens is the smallest record, in tokens, delivered as a chain.
	DefaultMinTokens = 5
	// DefaultSQLQuery selects the text records of an SQLite source.
	DefaultSQLQuery = "SELECT text FROM messages"
	// maxLineLength bounds a single line of a text source.
	maxLineLength = 1 << 20
)

// ErrUnknownFileType is returned for files whose extension maps to no Kind.
var ErrUnknownFileType = errors.New("unknown file type")

// Sink receives chains. *markov.Model satisfies it.
type Sink interface {
	AddChain(tokens []string)
}

// DetectKind maps a file name's extension to a Kind.
func DetectKind(name string) (Kind, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "txt":
		return KindText, nil
	case "json":
		return KindJSON, nil
	case "db", "sqlite", "sqlite3":
		return KindSQLite, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFileType, ext)
	}
}

// Loader reads files, tokenizes their records and delivers them as chains.
type Loader struct {
	tokenizer Tokenizer
	minTokens int
	sqlQuery  string
	logger    *slog.Logger
}

// LoaderOption Is a function that configures a Loader.
type LoaderOption func(*Loader)

// WithMinTokens sets the minimum number of tokens a record needs to be
// delivered. Shorter records are skipped. Default: 5
func WithMinTokens(n int) LoaderOption {
	return func(l *Loader) { l.minTokens = n }
}

// WithSQLQuery sets the query run against SQLite sources. It must return a
// single text column. Default: "SELECT text FROM messages"
func WithSQLQuery(query string) LoaderOption {
	return func(l *Loader) { l.sqlQuery = query }
}

// WithLogger sets the logger for the Loader. By default, all logs are discarded.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader using tokenizer, which may be nil to use a
// DefaultTokenizer.
func NewLoader(tokenizer Tokenizer, opts ...LoaderOption) *Loader {
	if tokenizer == nil {
		tokenizer = NewDefaultTokenizer()
	}
	l := &Loader{
		tokenizer: tokenizer,
		minTokens: DefaultMinTokens,
		sqlQuery:  DefaultSQLQuery,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFiles loads every path into its own partial model concurrently, then
// merges the partial models in argument order. Files of unknown type are
// skipped with a warning; any other failure aborts the load.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) (*markov.Model, error) {
	parts := make([]*markov.Model, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			part := markov.NewModel()
			n, err := l.LoadFile(gctx, path, part)
			if errors.Is(err, ErrUnknownFileType) {
				l.logger.WarnContext(gctx, "Unknown file type, skipping", slog.String("path", path), slog.Any("error", err))
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			l.logger.InfoContext(gctx, "File parsed",
				slog.String("path", path),
				slog.Int("chains", n),
				slog.Int("nodes", part.Len()),
			)
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	model := markov.NewModel()
	model.SetLogger(l.logger)
	for _, part := range parts {
		model.Merge(part)
	}

	stats := model.Stats()
	l.logger.InfoContext(ctx, "Corpus loaded",
		slog.Int("files", len(paths)),
		slog.Int("chains", stats.Chains),
		slog.Int("nodes", stats.Nodes),
		slog.Int("transitions", stats.Transitions),
	)
	return model, nil
}

// LoadFile reads the file at path according to its extension and delivers
// its records to sink. It returns the number of chains delivered.
func (l *Loader) LoadFile(ctx context.Context, path string, sink Sink) (int, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return 0, err
	}

	l.logger.InfoContext(ctx, "Parsing file", slog.String("path", path), slog.String("kind", string(kind)))

	if kind == KindSQLite {
		return l.loadSQLite(ctx, path, sink)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	return l.LoadReader(ctx, kind, f, sink)
}

// LoadReader delivers the records of a text or JSON stream to sink. SQLite
// sources need a file and are rejected here.
func (l *Loader) LoadReader(ctx context.Context, kind Kind, r io.Reader, sink Sink) (int, error) {
	switch kind {
	case KindText:
		return l.loadText(ctx, r, sink)
	case KindJSON:
		return l.loadJSON(ctx, r, sink)
	default:
		return 0, fmt.Errorf("%w: %q cannot be read from a stream", ErrUnknownFileType, kind)
	}
}

// addRecord tokenizes text and delivers it if it is long enough.
func (l *Loader) addRecord(text string, sink Sink) bool {
	if text == "" {
		return false
	}
	tokens := l.tokenizer.Tokens(text)
	if len(tokens) == 0 || len(tokens) < l.minTokens {
		return false
	}
	sink.AddChain(tokens)
	return true
}

func (l *Loader) loadText(ctx context.Context, r io.Reader, sink Sink) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var chains int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return chains, err
		}
		if l.addRecord(scanner.Text(), sink) {
			chains++
		}
	}
	if err := scanner.Err(); err != nil {
		return chains, fmt.Errorf("failed to read text: %w", err)
	}
	return chains, nil
}

// messageLog is the subset of a chat export that is read. Text is kept raw
// because some exports store formatted messages as arrays instead of strings.
type messageLog struct {
	Messages []struct {
		Text json.RawMessage `json:"text"`
	} `json:"messages"`
}

func (l *Loader) loadJSON(ctx context.Context, r io.Reader, sink Sink) (int, error) {
	var msgLog messageLog
	if err := json.NewDecoder(r).Decode(&msgLog); err != nil {
		return 0, fmt.Errorf("failed to decode json message log: %w", err)
	}

	var chains int
	for _, msg := range msgLog.Messages {
		if err := ctx.Err(); err != nil {
			return chains, err
		}
		var text string
		if err := json.Unmarshal(msg.Text, &text); err != nil {
			continue // not a string
		}
		if l.addRecord(text, sink) {
			chains++
		}
	}
	return chains, nil
}

func (l *Loader) loadSQLite(ctx context.Context, path string, sink Sink) (int, error) {
	// sql.Open would create a missing database file.
	if _, err := os.Stat(path); err != nil {
		return 0, err
	}

	db, err := openDB(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer func(db *sql.DB) {
		_ = db.Close()
	}(db)

	rows, err := db.QueryContext(ctx, l.sqlQuery)
	if err != nil {
		return 0, fmt.Errorf("could not query records: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var chains int
	for rows.Next() {
		var text sql.NullString
		if err = rows.Scan(&text); err != nil {
			return chains, fmt.Errorf("failed to scan record: %w", err)
		}
		if text.Valid && l.addRecord(text.String, sink) {
			chains++
		}
	}
	if err = rows.Err(); err != nil {
		return chains, err
	}
	return chains, nil
}
