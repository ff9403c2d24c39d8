// Package sink exports data sets to ClickHouse in long format, one row per
// (data set, date, wavelength) sample, using native columnar inserts.
package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/ch-go/proto"
	"github.com/sirupsen/logrus"

	"github.com/rayference/tengen/internal/config"
	"github.com/rayference/tengen/internal/dataset"
)

// DefaultBatchSize bounds the rows sent per INSERT.
const DefaultBatchSize = 100_000

// Doer runs a query; *ch.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, q ch.Query) error
}

// Dial opens a native connection using LZ4 compression.
func Dial(ctx context.Context, cfg config.ClickHouseConfig) (*ch.Client, error) {
	conn, err := ch.Dial(ctx, ch.Options{
		Address:     cfg.Host,
		Database:    cfg.Database,
		Compression: ch.CompressionLZ4,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse connect %s: %w", cfg.Host, err)
	}
	return conn, nil
}

// Batch holds the columns of one INSERT.
type Batch struct {
	Dataset *proto.ColStr
	T       *proto.ColNullable[time.Time]
	W       *proto.ColFloat64
	SSI     *proto.ColFloat64
}

// NewBatch allocates empty columns.
func NewBatch() *Batch {
	return &Batch{
		Dataset: new(proto.ColStr),
		T:       new(proto.ColDate32).Nullable(),
		W:       new(proto.ColFloat64),
		SSI:     new(proto.ColFloat64),
	}
}

func (b *Batch) Reset() {
	b.Dataset.Reset()
	b.T.Reset()
	b.W.Reset()
	b.SSI.Reset()
}

func (b *Batch) Len() int {
	return b.W.Rows()
}

// Input maps the columns onto the table layout.
func (b *Batch) Input() proto.Input {
	return proto.Input{
		{Name: "dataset", Data: b.Dataset},
		{Name: "t", Data: b.T},
		{Name: "w", Data: b.W},
		{Name: "ssi", Data: b.SSI},
	}
}

// Add appends one sample. A zero t is stored as NULL.
func (b *Batch) Add(name string, t time.Time, w, ssi float64) {
	b.Dataset.Append(name)
	if t.IsZero() {
		b.T.Append(proto.Null[time.Time]())
	} else {
		b.T.Append(proto.NewNullable(t))
	}
	b.W.Append(w)
	b.SSI.Append(ssi)
}

// Writer inserts data sets into one table.
type Writer struct {
	conn      Doer
	table     string
	batchSize int
	logger    logrus.FieldLogger
}

// NewWriter targets table, given as database.table.
func NewWriter(conn Doer, table string, logger logrus.FieldLogger) *Writer {
	return &Writer{conn: conn, table: table, batchSize: DefaultBatchSize, logger: logger}
}

// WithBatchSize overrides DefaultBatchSize.
func (w *Writer) WithBatchSize(n int) *Writer {
	if n > 0 {
		w.batchSize = n
	}
	return w
}

// EnsureTable creates the target table when it does not exist.
func (w *Writer) EnsureTable(ctx context.Context) error {
	return w.conn.Do(ctx, ch.Query{Body: CreateTableSQL(w.table)})
}

// CreateTableSQL returns the DDL of the long-format table.
func CreateTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    dataset LowCardinality(String),
    t Nullable(Date32),
    w Float64,
    ssi Float64
) ENGINE = MergeTree
ORDER BY (dataset, w)`, table)
}

// Write inserts every sample of ds under name and returns the row count.
func (w *Writer) Write(ctx context.Context, name string, ds *dataset.Dataset) (int, error) {
	if ds == nil {
		return 0, errors.New("nil data set")
	}
	if err := ds.Validate(); err != nil {
		return 0, err
	}

	nt := 1
	if ds.HasTime() {
		nt = len(ds.T)
	}

	batch := NewBatch()
	total := 0
	for ti := 0; ti < nt; ti++ {
		var t time.Time
		if ds.HasTime() {
			t = ds.T[ti]
		}
		for wi, wl := range ds.W {
			batch.Add(name, t, wl, ds.At(ti, wi))
			if batch.Len() >= w.batchSize {
				if err := w.flush(ctx, batch); err != nil {
					return total, err
				}
				total += batch.Len()
				batch.Reset()
			}
		}
	}
	if batch.Len() > 0 {
		if err := w.flush(ctx, batch); err != nil {
			return total, err
		}
		total += batch.Len()
	}

	if w.logger != nil {
		w.logger.WithFields(logrus.Fields{
			"action":   "clickhouse_insert",
			"resource": name,
			"table":    w.table,
			"rows":     total,
		}).Info("data set exported")
	}
	return total, nil
}

func (w *Writer) flush(ctx context.Context, batch *Batch) error {
	query := fmt.Sprintf("INSERT INTO %s (dataset, t, w, ssi) VALUES", w.table)
	if err := w.conn.Do(ctx, ch.Query{Body: query, Input: batch.Input()}); err != nil {
		return fmt.Errorf("insert into %s: %w", w.table, err)
	}
	return nil
}
