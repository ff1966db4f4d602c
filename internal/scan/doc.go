// Package scan locates downloaded bulk-data files under a project root.
//
// The govinfo tool writes retrieved documents under data/, nested by
// congress, collection, and bill. This package knows the two layouts we
// consume: bill text (BILLS-*.xml under per-congress bills directories)
// and bill status metadata (BILLSTATUS-*.xml, plus the legacy
// fdsys_billstatus.xml naming).
package scan
