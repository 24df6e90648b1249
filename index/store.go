// Package index keeps raster footprints in a PostGIS table keyed by path.
package index

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"golang.org/x/net/context"
)

var ErrNotFound = errors.New("footprint not found")

// Record is one indexed raster. A nil Polygon means the raster has no
// footprint.
type Record struct {
	Path    string
	PosixID string
	Polygon orb.Polygon
	BBox    []float64
	Error   string
	Updated time.Time
}

type Store struct {
	db    *sql.DB
	table string
}

const (
	DefaultTable = "footprints"
	defaultPool  = 8
	defaultLimit = 64
)

// Open connects lazily to the database at dsn; the first query reports
// connection failures.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening footprint index")
	}
	db.SetMaxIdleConns(defaultPool)
	db.SetMaxOpenConns(defaultLimit)
	return &Store{db: db, table: DefaultTable}, nil
}

// WithTable returns a store writing to another table of the same database.
func (s *Store) WithTable(name string) *Store {
	return &Store{db: s.db, table: name}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Init creates the PostGIS extension and the footprint table if missing.
func (s *Store) Init(ctx context.Context) error {
	table := pq.QuoteIdentifier(s.table)
	stmts := []string{
		`create extension if not exists postgis`,
		`create table if not exists ` + table + ` (
			path text primary key,
			posix_id text not null default '',
			geom geometry(Polygon, 4326),
			bbox double precision[],
			error text not null default '',
			updated timestamptz not null default now()
		)`,
		`create index if not exists ` + pq.QuoteIdentifier(s.table+"_geom_idx") + ` on ` + table + ` using gist (geom)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "initialising footprint index")
		}
	}
	return nil
}

// Upsert inserts rec or replaces the record stored for the same path.
func (s *Store) Upsert(ctx context.Context, rec *Record) error {
	geom, err := MarshalEWKB(rec.Polygon)
	if err != nil {
		return errors.Wrapf(err, "encoding footprint of %s", rec.Path)
	}
	bbox := rec.BBox
	if len(bbox) == 0 && len(rec.Polygon) > 0 {
		b := rec.Polygon.Bound()
		bbox = []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
	}

	_, err = s.db.ExecContext(ctx,
		`insert into `+pq.QuoteIdentifier(s.table)+` (path, posix_id, geom, bbox, error, updated)
		values ($1, $2, ST_GeomFromEWKB($3::bytea), $4, $5, now())
		on conflict (path) do update set
			posix_id = excluded.posix_id,
			geom = excluded.geom,
			bbox = excluded.bbox,
			error = excluded.error,
			updated = excluded.updated`,
		rec.Path, rec.PosixID, geom, pq.Array(bbox), rec.Error)
	if err != nil {
		return errors.Wrapf(err, "indexing %s", rec.Path)
	}
	return nil
}

// Lookup returns the record stored for path, or ErrNotFound.
func (s *Store) Lookup(ctx context.Context, path string) (*Record, error) {
	rec := &Record{Path: path}
	var geom []byte
	err := s.db.QueryRowContext(ctx,
		`select posix_id, ST_AsEWKB(geom), bbox, error, updated
		from `+pq.QuoteIdentifier(s.table)+` where path = $1`, path,
	).Scan(&rec.PosixID, &geom, pq.Array(&rec.BBox), &rec.Error, &rec.Updated)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "looking up %s", path)
	}
	if rec.Polygon, err = UnmarshalEWKB(geom); err != nil {
		return nil, errors.Wrapf(err, "decoding footprint of %s", path)
	}
	return rec, nil
}
