package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// BillTextPattern matches bill text files as laid out by the govinfo
// bulk-data tool: per-congress "bills" subdirectories holding BILLS-*.xml.
const BillTextPattern = "data/**/bills/**/BILLS-*.xml"

// BillStatusPatterns match BILLSTATUS metadata files, including the older
// fdsys layout which names every file fdsys_billstatus.xml.
var BillStatusPatterns = []string{
	"data/**/BILLSTATUS-*.xml",
	"data/**/fdsys_billstatus.xml",
}

// BillTextFiles walks the data tree under root and returns all bill text
// files matching BillTextPattern, in file-system traversal order.
func BillTextFiles(root string) ([]string, error) {
	return matchTree(root, []string{BillTextPattern}, false)
}

// BillStatusFiles returns all BILLSTATUS files under root, deduplicated
// and sorted for a stable processing order.
func BillStatusFiles(root string) ([]string, error) {
	return matchTree(root, BillStatusPatterns, true)
}

func matchTree(root string, patterns []string, sorted bool) ([]string, error) {
	var matches []string
	seen := make(map[string]bool)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The data tree may not exist yet on a fresh checkout.
			if path == root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		for _, pattern := range patterns {
			ok, err := doublestar.Match(pattern, rel)
			if err != nil {
				return fmt.Errorf("scan: bad pattern %q: %w", pattern, err)
			}
			if ok {
				if !seen[path] {
					seen[path] = true
					matches = append(matches, path)
				}
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan: walk %s: %w", root, err)
	}

	if sorted {
		sort.Strings(matches)
	}
	return matches, nil
}
