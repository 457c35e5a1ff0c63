package billing

import (
	"fmt"
	"regexp"
	"strconv"
)

// NumberPrefix is the literal every invoice number starts with.
const NumberPrefix = "KHAATA"

var numberPattern = regexp.MustCompile(`^` + NumberPrefix + `-(\d+)$`)

// NextInvoiceNumber returns the number to assign to the next invoice given
// every number issued so far: "KHAATA-NNNN" with NNNN zero-padded to at least
// four digits, growing as needed. Numbers not matching the pattern contribute
// zero, so the sequence continues from the highest issued suffix and starts at
// 1 when none match.
//
// Correct only while a single writer generates and persists numbers; the
// commit service therefore calls this inside its transaction.
func NextInvoiceNumber(existing []string) string {
	highest := 0
	for _, n := range existing {
		m := numberPattern.FindStringSubmatch(n)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if v > highest {
			highest = v
		}
	}
	return fmt.Sprintf("%s-%04d", NumberPrefix, highest+1)
}
