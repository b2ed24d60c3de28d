package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"library-backend/internal/platform/db"
)

const (
	FlavorMySQL    = "mysql"
	FlavorPostgres = "postgres"

	sqlCountersTable = "doc_counters"
)

// sqlDialect holds the JSON-specific fragments that differ between engines.
type sqlDialect struct {
	goqu string
	// 1 placeholder: JSON text of the wanted sub-document
	contains string
	// 1 placeholder: JSON path (mysql) or field name (postgres)
	extractInt string
	fieldPath  func(field string) string
	// 1 placeholder: JSON patch
	merge     string
	createDDL func(table string) []string
	// placeholders: name, floor
	nextSeq     string
	seqReturns  bool
	countersDDL string
}

var mysqlDialect = sqlDialect{
	goqu:       "mysql",
	contains:   "JSON_CONTAINS(doc, ?)",
	extractInt: "CAST(JSON_UNQUOTE(JSON_EXTRACT(doc, ?)) AS SIGNED)",
	fieldPath:  func(f string) string { return "$." + f },
	merge:      "JSON_MERGE_PATCH(doc, ?)",
	createDDL: func(t string) []string {
		return []string{fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` ("+
			"doc_key VARCHAR(64) NOT NULL PRIMARY KEY, "+
			"doc JSON NOT NULL"+
			") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4", t)}
	},
	// LAST_INSERT_ID(expr) を使うと採番結果が OK パケットの insert id で返る
	nextSeq: "INSERT INTO " + sqlCountersTable + " (name, value) VALUES (?, LAST_INSERT_ID(? + 1)) " +
		"ON DUPLICATE KEY UPDATE value = LAST_INSERT_ID(GREATEST(value + 1, VALUES(value)))",
	countersDDL: "CREATE TABLE IF NOT EXISTS " + sqlCountersTable + " (" +
		"name VARCHAR(64) NOT NULL PRIMARY KEY, " +
		"value BIGINT NOT NULL" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
}

var postgresDialect = sqlDialect{
	goqu:       "postgres",
	contains:   "doc @> ?::jsonb",
	extractInt: "(doc->>?)::bigint",
	fieldPath:  func(f string) string { return f },
	merge:      "doc || ?::jsonb",
	createDDL: func(t string) []string {
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s" (doc_key VARCHAR(64) PRIMARY KEY, doc JSONB NOT NULL)`, t),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "%s_doc_gin" ON "%s" USING GIN (doc jsonb_path_ops)`, t, t),
		}
	},
	nextSeq: "INSERT INTO " + sqlCountersTable + " (name, value) VALUES (?, ?::bigint + 1) " +
		"ON CONFLICT (name) DO UPDATE SET value = GREATEST(" + sqlCountersTable + ".value + 1, EXCLUDED.value) " +
		"RETURNING value",
	seqReturns: true,
	countersDDL: "CREATE TABLE IF NOT EXISTS " + sqlCountersTable + " (" +
		"name VARCHAR(64) PRIMARY KEY, " +
		"value BIGINT NOT NULL)",
}

func dialectFor(flavor string) (sqlDialect, error) {
	switch flavor {
	case FlavorMySQL:
		return mysqlDialect, nil
	case FlavorPostgres:
		return postgresDialect, nil
	default:
		return sqlDialect{}, fmt.Errorf("docstore: unsupported sql flavor %q", flavor)
	}
}

// SQLBackend stores each collection as a (doc_key, doc) table with a JSON column.
type SQLBackend struct {
	db *sqlx.DB
	d  sqlDialect
}

func NewSQLBackend(conn *sqlx.DB, flavor string) (*SQLBackend, error) {
	d, err := dialectFor(flavor)
	if err != nil {
		return nil, err
	}
	return &SQLBackend{db: conn, d: d}, nil
}

type txKey struct{}

// conn は ctx に Tx があればそれを、なければプールを返す
func (b *SQLBackend) conn(ctx context.Context) db.DBTX {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return b.db
}

func (b *SQLBackend) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}
	return db.RunInTx(ctx, b.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (b *SQLBackend) Next(ctx context.Context, name string, floor int64) (int64, error) {
	q := b.db.Rebind(b.d.nextSeq)
	if b.d.seqReturns {
		var v int64
		if err := b.conn(ctx).GetContext(ctx, &v, q, name, floor); err != nil {
			return 0, fmt.Errorf("next counter %s: %w", name, err)
		}
		return v, nil
	}
	res, err := b.conn(ctx).ExecContext(ctx, q, name, floor)
	if err != nil {
		return 0, fmt.Errorf("next counter %s: %w", name, err)
	}
	return res.LastInsertId()
}

func (b *SQLBackend) EnsureSchema(ctx context.Context, specs ...CollectionSpec) error {
	stmts := []string{b.d.countersDDL}
	for _, s := range specs {
		if err := checkIdent(s.Name); err != nil {
			return err
		}
		stmts = append(stmts, b.d.createDDL(s.Name)...)
		if b.d.goqu != FlavorPostgres {
			continue
		}
		for _, ix := range s.Indexes {
			if err := checkIdent(ix.Field); err != nil {
				return err
			}
			unique := ""
			if ix.Unique {
				unique = "UNIQUE "
			}
			stmts = append(stmts, fmt.Sprintf(`CREATE %sINDEX IF NOT EXISTS "%s_%s_idx" ON "%s" ((doc->>'%s'))`,
				unique, s.Name, ix.Field, s.Name, ix.Field))
		}
	}
	for _, q := range stmts {
		if _, err := b.conn(ctx).ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (b *SQLBackend) Close(context.Context) error { return b.db.Close() }

type sqlRow struct {
	Key string `db:"doc_key"`
	Doc []byte `db:"doc"`
}

type sqlCollection[D Document] struct {
	b     *SQLBackend
	table string
	dial  goqu.DialectWrapper
}

func newSQLCollection[D Document](b *SQLBackend, name string) *sqlCollection[D] {
	if err := checkIdent(name); err != nil {
		panic(err)
	}
	return &sqlCollection[D]{b: b, table: name, dial: goqu.Dialect(b.d.goqu)}
}

func (c *sqlCollection[D]) Name() string { return c.table }

// where turns a Filter into goqu expressions: the key becomes a column
// comparison and the remaining fields one JSON containment test.
func (c *sqlCollection[D]) where(f Filter) ([]exp.Expression, error) {
	key, hasKey, fields := splitFilter(f)
	var conds []exp.Expression
	if hasKey {
		conds = append(conds, goqu.C("doc_key").Eq(key))
	}
	if len(fields) > 0 {
		raw, err := encodeDoc(fields)
		if err != nil {
			return nil, err
		}
		conds = append(conds, goqu.L(c.b.d.contains, string(raw)))
	}
	return conds, nil
}

func (c *sqlCollection[D]) selectRows(ctx context.Context, f Filter, limit uint) ([]sqlRow, error) {
	conds, err := c.where(f)
	if err != nil {
		return nil, err
	}
	ds := c.dial.From(c.table).Prepared(true).
		Select("doc_key", "doc").
		Where(conds...).
		Order(goqu.C("doc_key").Asc())
	if limit > 0 {
		ds = ds.Limit(limit)
	}
	q, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	var rows []sqlRow
	if err := c.b.conn(ctx).SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *sqlCollection[D]) Find(ctx context.Context, f Filter) ([]D, error) {
	rows, err := c.selectRows(ctx, f, 0)
	if err != nil {
		return nil, err
	}
	out := make([]D, 0, len(rows))
	for _, r := range rows {
		d, err := decodeDoc[D](r.Key, r.Doc)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (c *sqlCollection[D]) FindOne(ctx context.Context, f Filter) (D, error) {
	var zero D
	rows, err := c.selectRows(ctx, f, 1)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, ErrNotFound
	}
	return decodeDoc[D](rows[0].Key, rows[0].Doc)
}

func (c *sqlCollection[D]) Count(ctx context.Context, f Filter) (int64, error) {
	conds, err := c.where(f)
	if err != nil {
		return 0, err
	}
	q, args, err := c.dial.From(c.table).Prepared(true).
		Select(goqu.COUNT("*")).
		Where(conds...).
		ToSQL()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := c.b.conn(ctx).GetContext(ctx, &n, q, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *sqlCollection[D]) MaxInt(ctx context.Context, field string) (int64, error) {
	q, args, err := c.dial.From(c.table).Prepared(true).
		Select(goqu.L("COALESCE(MAX("+c.b.d.extractInt+"), 0)", c.b.d.fieldPath(field))).
		ToSQL()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := c.b.conn(ctx).GetContext(ctx, &n, q, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *sqlCollection[D]) InsertOne(ctx context.Context, doc D) error {
	if doc.DocKey() == "" {
		doc.SetDocKey(newULID())
	}
	raw, err := encodeDoc(doc)
	if err != nil {
		return err
	}
	q, args, err := c.dial.Insert(c.table).Prepared(true).
		Rows(goqu.Record{"doc_key": doc.DocKey(), "doc": string(raw)}).
		ToSQL()
	if err != nil {
		return err
	}
	if _, err := c.b.conn(ctx).ExecContext(ctx, q, args...); err != nil {
		if isDuplicate(err) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

// firstKey resolves the key of the first match; "" when nothing matches.
func (c *sqlCollection[D]) firstKey(ctx context.Context, f Filter) (string, error) {
	rows, err := c.selectRows(ctx, f, 1)
	if err != nil || len(rows) == 0 {
		return "", err
	}
	return rows[0].Key, nil
}

func (c *sqlCollection[D]) ReplaceOne(ctx context.Context, f Filter, doc D) (int64, error) {
	key, err := c.firstKey(ctx, f)
	if err != nil || key == "" {
		return 0, err
	}
	switch doc.DocKey() {
	case "":
		doc.SetDocKey(key)
	case key:
	default:
		return 0, ErrKeyMismatch
	}
	raw, err := encodeDoc(doc)
	if err != nil {
		return 0, err
	}
	return c.update(ctx, key, goqu.Record{"doc": string(raw)})
}

func (c *sqlCollection[D]) UpdateOne(ctx context.Context, f Filter, set Fields) (int64, error) {
	key, err := c.firstKey(ctx, f)
	if err != nil || key == "" {
		return 0, err
	}
	patch, err := encodeDoc(set)
	if err != nil {
		return 0, err
	}
	return c.update(ctx, key, goqu.Record{"doc": goqu.L(c.b.d.merge, string(patch))})
}

func (c *sqlCollection[D]) update(ctx context.Context, key string, rec goqu.Record) (int64, error) {
	q, args, err := c.dial.Update(c.table).Prepared(true).
		Set(rec).
		Where(goqu.C("doc_key").Eq(key)).
		ToSQL()
	if err != nil {
		return 0, err
	}
	if _, err := c.b.conn(ctx).ExecContext(ctx, q, args...); err != nil {
		return 0, err
	}
	// MySQL は値が変わらない UPDATE を 0 件と数えるので、一致件数で返す
	return 1, nil
}

func (c *sqlCollection[D]) DeleteOne(ctx context.Context, f Filter) (int64, error) {
	key, err := c.firstKey(ctx, f)
	if err != nil || key == "" {
		return 0, err
	}
	return c.delete(ctx, Filter{KeyField: key})
}

func (c *sqlCollection[D]) DeleteMany(ctx context.Context, f Filter) (int64, error) {
	return c.delete(ctx, f)
}

func (c *sqlCollection[D]) delete(ctx context.Context, f Filter) (int64, error) {
	conds, err := c.where(f)
	if err != nil {
		return 0, err
	}
	q, args, err := c.dial.Delete(c.table).Prepared(true).Where(conds...).ToSQL()
	if err != nil {
		return 0, err
	}
	res, err := c.b.conn(ctx).ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
