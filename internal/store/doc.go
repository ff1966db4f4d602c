// Package store persists parsed BILLSTATUS records to Postgres.
//
// Bills are upserted individually on (congress, bill_type, bill_number);
// actions and cosponsors are buffered in memory and bulk-inserted with a
// single pgx batch once the buffers pass a row threshold. Transactions
// commit every N bills so a long ingest makes durable progress without
// per-row commit overhead.
//
// Cosponsors are deduplicated within each flush: Postgres rejects ON
// CONFLICT DO UPDATE statements that touch the same key twice in one
// command, and older BILLSTATUS files repeat cosponsor entries.
package store
