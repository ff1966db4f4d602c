// Package billstatus parses BILLSTATUS XML files from the govinfo bulk
// data collection, including the older fdsys variants.
//
// Element names and nesting changed across BILLSTATUS generations, so
// the parser works on a generic element tree with namespace-agnostic,
// suffix-based matching rather than a fixed schema.
//
// # Identity
//
// A bill is identified by (congress, bill type, bill number). Three
// extraction strategies run in order, each filling fields the previous
// one missed:
//
//  1. XML elements (congress/billCongress, type/billType,
//     number/billNumber)
//  2. The filename (BILLSTATUS-<congress><type><number>.xml)
//  3. The directory layout
//     (.../<congress>/bills/<type>/<type><number>/...)
//
// A file that yields no complete identity fails with
// [ErrMissingIdentity].
//
// # Usage
//
//	rec, err := billstatus.ParseFile(path)
//	if err != nil {
//	    // skip the file, or inspect errors.Is(err, billstatus.ErrMissingIdentity)
//	}
//	fmt.Println(rec.Congress, rec.BillType, rec.BillNumber, rec.Title)
package billstatus
