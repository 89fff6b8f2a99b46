package datarecording

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/tebeka/atexit"
)

// ClickHouseRecorder records into a ClickHouse server. Tables are created if
// they do not exist, so several runs can share a database.
type ClickHouseRecorder struct {
	conn clickhouse.Conn

	mu         sync.Mutex
	tables     map[string]*chTable
	tableOrder []string
	batchSize  int
	entryCount int
	closed     bool
}

type chTable struct {
	structType reflect.Type
	rows       [][]any
}

// NewClickHouseRecorder connects to the server named by dsn, for example
// clickhouse://localhost:9000/vtester?username=default. The buffered entries
// are flushed at exit.
func NewClickHouseRecorder(dsn string) (*ClickHouseRecorder, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("datarecording: %w", err)
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("datarecording: cannot connect to ClickHouse: %w",
			err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("datarecording: cannot ping ClickHouse: %w", err)
	}

	r := &ClickHouseRecorder{
		conn:      conn,
		tables:    make(map[string]*chTable),
		batchSize: DefaultBatchSize,
	}

	atexit.Register(func() { r.Flush() })

	return r, nil
}

// CreateTable creates a MergeTree table whose columns follow the fields of
// sampleEntry.
func (r *ClickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	mustBeIdentifier(tableName)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s already exists", tableName))
	}

	query, err := createClickHouseTableQuery(tableName, sampleEntry)
	if err != nil {
		panic(err)
	}

	if err := r.conn.Exec(context.Background(), query); err != nil {
		panic(fmt.Errorf("failed to create table %s: %w", tableName, err))
	}

	r.tables[tableName] = &chTable{structType: reflect.TypeOf(sampleEntry)}
	r.tableOrder = append(r.tableOrder, tableName)
}

// InsertData buffers an entry.
func (r *ClickHouseRecorder) InsertData(tableName string, entry any) {
	r.mu.Lock()

	t, exists := r.tables[tableName]
	if !exists {
		r.mu.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.structType {
		r.mu.Unlock()
		panic(fmt.Sprintf("table %s expects %s, got %T",
			tableName, t.structType, entry))
	}

	t.rows = append(t.rows, clickHouseRow(entry))
	r.entryCount++

	full := r.entryCount >= r.batchSize
	r.mu.Unlock()

	if full {
		r.Flush()
	}
}

// ListTables returns the tables in creation order.
func (r *ClickHouseRecorder) ListTables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tables := make([]string, len(r.tableOrder))
	copy(tables, r.tableOrder)

	return tables
}

// Flush sends one batch per table.
func (r *ClickHouseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entryCount == 0 || r.closed {
		return
	}

	ctx := context.Background()

	for _, tableName := range r.tableOrder {
		t := r.tables[tableName]
		if len(t.rows) == 0 {
			continue
		}

		r.sendBatch(ctx, tableName, t.rows)
		t.rows = t.rows[:0]
	}

	r.entryCount = 0
}

func (r *ClickHouseRecorder) sendBatch(
	ctx context.Context,
	tableName string,
	rows [][]any,
) {
	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO `"+tableName+"`")
	if err != nil {
		panic(fmt.Errorf("failed to prepare batch for %s: %w", tableName, err))
	}

	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			panic(fmt.Errorf("failed to append to batch: %w", err))
		}
	}

	if err := batch.Send(); err != nil {
		panic(fmt.Errorf("failed to send batch: %w", err))
	}
}

// Close flushes the remaining entries and closes the connection.
func (r *ClickHouseRecorder) Close() error {
	r.Flush()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true

	if err := r.conn.Close(); err != nil {
		return fmt.Errorf("failed to close ClickHouse connection: %w", err)
	}

	return nil
}

func createClickHouseTableQuery(tableName string, sample any) (string, error) {
	if _, err := fieldNames(sample); err != nil {
		return "", err
	}

	t := reflect.TypeOf(sample)
	columns := make([]string, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		columns = append(columns,
			"`"+f.Name+"` "+clickHouseType(f.Type.Kind()))
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS `%s` (\n\t%s\n) ENGINE = MergeTree()\nORDER BY tuple()",
		tableName, strings.Join(columns, ",\n\t")), nil
}

func clickHouseType(kind reflect.Kind) string {
	switch kind {
	case reflect.Bool:
		return "Bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "Int64"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		return "UInt64"
	case reflect.Float32, reflect.Float64:
		return "Float64"
	default:
		return "String"
	}
}

// clickHouseRow widens the fields of entry to the column types.
func clickHouseRow(entry any) []any {
	v := reflect.ValueOf(entry)
	row := make([]any, 0, v.NumField())

	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)

		switch clickHouseType(f.Kind()) {
		case "Bool":
			row = append(row, f.Bool())
		case "Int64":
			row = append(row, f.Int())
		case "UInt64":
			row = append(row, f.Uint())
		case "Float64":
			row = append(row, f.Float())
		default:
			row = append(row, f.String())
		}
	}

	return row
}
