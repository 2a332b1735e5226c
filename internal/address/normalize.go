// Package address cleans raw address lists before geocoding.
package address

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Result is the outcome of normalizing a raw address list.
type Result struct {
	Addresses      []string // Addresses are the trimmed, unique, non-empty lines in input order.
	RawCount       int      // RawCount is the number of input lines.
	BlankCount     int      // BlankCount is the number of lines that were empty after trimming.
	DuplicateCount int      // DuplicateCount is the number of exact repeats that were dropped.
}

// Normalize trims every line, drops blank lines and removes exact duplicates.
// The first occurrence of an address wins and the relative order is preserved.
func Normalize(lines []string) Result {
	res := Result{
		Addresses: make([]string, 0, len(lines)),
		RawCount:  len(lines),
	}
	seen := make(map[string]struct{}, len(lines))

	for _, line := range lines {
		addr := strings.TrimSpace(line)
		if addr == "" {
			res.BlankCount++
			continue
		}
		if _, ok := seen[addr]; ok {
			res.DuplicateCount++
			continue
		}
		seen[addr] = struct{}{}
		res.Addresses = append(res.Addresses, addr)
	}

	return res
}

// StripDepot removes every address that matches the depot, ignoring case and surrounding space.
func StripDepot(addresses []string, depot string) []string {
	lower := cases.Lower(language.Und)
	depotKey := lower.String(strings.TrimSpace(depot))

	out := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if lower.String(strings.TrimSpace(addr)) == depotKey {
			continue
		}
		out = append(out, addr)
	}

	return out
}
