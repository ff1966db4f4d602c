package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sholt94/congress-ai/pkg/billstatus"
)

// Options tunes batching behavior.
type Options struct {
	// CommitEvery commits the open transaction after this many bills.
	CommitEvery int

	// FlushRows flushes buffered action/cosponsor rows once their
	// combined count exceeds this threshold.
	FlushRows int
}

// DefaultOptions returns options matching the standing ETL tuning.
func DefaultOptions() Options {
	return Options{
		CommitEvery: 5000,
		FlushRows:   20000,
	}
}

// Store writes parsed BILLSTATUS records to Postgres. Bills are upserted
// one at a time; actions and cosponsors are buffered and bulk-inserted to
// keep round trips down. Not safe for concurrent use.
type Store struct {
	conn *pgx.Conn
	tx   pgx.Tx
	opts Options

	actions    []actionRow
	cosponsors []cosponsorRow
	billsInTx  int
}

type actionRow struct {
	congress   int
	billType   string
	billNumber int
	actionTime *time.Time
	actor      string
	text       string
	code       string
	sourcePath string
}

type cosponsorRow struct {
	congress   int
	billType   string
	billNumber int
	bioguide   string
	fullName   string
	party      string
	state      string
	joined     *time.Time
	isOriginal *bool
}

// schemaStatements holds the DDL for the tables this store writes, one
// statement per entry (pgx's extended protocol runs one at a time).
var schemaStatements = []string{`
create table if not exists bills (
    congress            integer not null,
    bill_type           text    not null,
    bill_number         integer not null,
    chamber             text,
    title               text,
    introduced_date     date,
    latest_action       text,
    latest_action_date  timestamptz,
    sponsor_bioguide    text,
    sponsor_fullname    text,
    primary key (congress, bill_type, bill_number)
)`, `
create table if not exists bill_actions (
    congress        integer not null,
    bill_type       text    not null,
    bill_number     integer not null,
    action_datetime timestamptz,
    actor           text,
    action_text     text,
    action_code     text,
    source_path     text,
    unique (congress, bill_type, bill_number, action_datetime, action_text)
)`, `
create table if not exists bill_cosponsors (
    congress    integer not null,
    bill_type   text    not null,
    bill_number integer not null,
    bioguide    text    not null,
    fullname    text,
    party       text,
    state       text,
    joined_date date,
    is_original boolean,
    primary key (congress, bill_type, bill_number, bioguide)
)`,
}

const upsertBillSQL = `
insert into bills
  (congress, bill_type, bill_number, chamber, title, introduced_date,
   latest_action, latest_action_date, sponsor_bioguide, sponsor_fullname)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
on conflict (congress, bill_type, bill_number) do update set
  chamber            = excluded.chamber,
  title              = coalesce(excluded.title, bills.title),
  introduced_date    = coalesce(excluded.introduced_date, bills.introduced_date),
  latest_action      = coalesce(excluded.latest_action, bills.latest_action),
  latest_action_date = coalesce(excluded.latest_action_date, bills.latest_action_date),
  sponsor_bioguide   = coalesce(excluded.sponsor_bioguide, bills.sponsor_bioguide),
  sponsor_fullname   = coalesce(excluded.sponsor_fullname, bills.sponsor_fullname)
`

const insertActionSQL = `
insert into bill_actions
  (congress, bill_type, bill_number, action_datetime, actor, action_text, action_code, source_path)
values ($1, $2, $3, $4, $5, $6, $7, $8)
on conflict (congress, bill_type, bill_number, action_datetime, action_text) do nothing
`

const insertCosponsorSQL = `
insert into bill_cosponsors
  (congress, bill_type, bill_number, bioguide, fullname, party, state, joined_date, is_original)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
on conflict (congress, bill_type, bill_number, bioguide) do update set
  fullname    = coalesce(excluded.fullname, bill_cosponsors.fullname),
  party       = coalesce(excluded.party, bill_cosponsors.party),
  state       = coalesce(excluded.state, bill_cosponsors.state),
  joined_date = coalesce(excluded.joined_date, bill_cosponsors.joined_date),
  is_original = coalesce(excluded.is_original, bill_cosponsors.is_original)
`

// Connect opens a connection and begins the first transaction.
func Connect(ctx context.Context, databaseURL string, opts Options) (*Store, error) {
	if opts.CommitEvery <= 0 {
		opts.CommitEvery = DefaultOptions().CommitEvery
	}
	if opts.FlushRows <= 0 {
		opts.FlushRows = DefaultOptions().FlushRows
	}

	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("store: begin: %w", err)
	}

	return &Store{conn: conn, tx: tx, opts: opts}, nil
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("store: ensure schema: %w", err)
		}
	}
	return nil
}

// Add upserts one bill and buffers its actions and cosponsors. Buffers
// are flushed and the transaction committed in batches.
func (s *Store) Add(ctx context.Context, rec *billstatus.Record) error {
	_, err := s.tx.Exec(ctx, upsertBillSQL,
		rec.Congress,
		rec.BillType,
		rec.BillNumber,
		nullString(rec.Chamber),
		nullString(rec.Title),
		rec.IntroducedDate,
		nullString(rec.LatestActionText),
		rec.LatestActionTime,
		nullString(rec.SponsorBioguide),
		nullString(rec.SponsorFullName),
	)
	if err != nil {
		return fmt.Errorf("store: upsert bill %d/%s/%d: %w", rec.Congress, rec.BillType, rec.BillNumber, err)
	}

	for _, a := range rec.Actions {
		s.actions = append(s.actions, actionRow{
			congress:   rec.Congress,
			billType:   rec.BillType,
			billNumber: rec.BillNumber,
			actionTime: a.Time,
			actor:      a.Actor,
			text:       a.Text,
			code:       a.Code,
			sourcePath: rec.SourcePath,
		})
	}
	for _, cs := range rec.Cosponsors {
		s.cosponsors = append(s.cosponsors, cosponsorRow{
			congress:   rec.Congress,
			billType:   rec.BillType,
			billNumber: rec.BillNumber,
			bioguide:   cs.Bioguide,
			fullName:   cs.FullName,
			party:      cs.Party,
			state:      cs.State,
			joined:     cs.Joined,
			isOriginal: cs.IsOriginal,
		})
	}

	s.billsInTx++

	if len(s.actions)+len(s.cosponsors) >= s.opts.FlushRows {
		if err := s.flush(ctx); err != nil {
			return err
		}
	}

	if s.billsInTx >= s.opts.CommitEvery {
		if err := s.commit(ctx); err != nil {
			return err
		}
	}

	return nil
}

// flush bulk-inserts the buffered rows inside the open transaction.
// Cosponsors are deduplicated first so the ON CONFLICT DO UPDATE never
// sees the same key twice in one statement batch.
func (s *Store) flush(ctx context.Context) error {
	if len(s.actions) == 0 && len(s.cosponsors) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	for _, a := range s.actions {
		batch.Queue(insertActionSQL,
			a.congress, a.billType, a.billNumber,
			a.actionTime, nullString(a.actor), nullString(a.text), nullString(a.code),
			nullString(a.sourcePath),
		)
	}
	for _, cs := range dedupeCosponsors(s.cosponsors) {
		batch.Queue(insertCosponsorSQL,
			cs.congress, cs.billType, cs.billNumber,
			cs.bioguide, nullString(cs.fullName), nullString(cs.party), nullString(cs.state),
			cs.joined, cs.isOriginal,
		)
	}

	if err := s.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("store: flush buffers: %w", err)
	}

	s.actions = s.actions[:0]
	s.cosponsors = s.cosponsors[:0]
	return nil
}

// commit flushes, commits the open transaction, and begins a new one.
func (s *Store) commit(ctx context.Context) error {
	if err := s.flush(ctx); err != nil {
		return err
	}
	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	s.tx = tx
	s.billsInTx = 0
	return nil
}

// Close flushes remaining rows, commits, and closes the connection.
func (s *Store) Close(ctx context.Context) error {
	defer s.conn.Close(ctx)

	if err := s.flush(ctx); err != nil {
		s.tx.Rollback(ctx)
		return err
	}
	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// dedupeCosponsors merges rows sharing (congress, type, number, bioguide).
// Later non-empty fields win; is_original is true if any row said so.
func dedupeCosponsors(rows []cosponsorRow) []cosponsorRow {
	type key struct {
		congress   int
		billType   string
		billNumber int
		bioguide   string
	}

	merged := make(map[key]int)
	var out []cosponsorRow

	for _, row := range rows {
		k := key{row.congress, row.billType, row.billNumber, row.bioguide}
		idx, ok := merged[k]
		if !ok {
			merged[k] = len(out)
			out = append(out, row)
			continue
		}

		cur := &out[idx]
		if row.fullName != "" {
			cur.fullName = row.fullName
		}
		if row.party != "" {
			cur.party = row.party
		}
		if row.state != "" {
			cur.state = row.state
		}
		if row.joined != nil {
			cur.joined = row.joined
		}
		if row.isOriginal != nil {
			if cur.isOriginal == nil || *row.isOriginal {
				cur.isOriginal = row.isOriginal
			}
		}
	}

	return out
}

// nullString maps empty strings to SQL NULL.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
