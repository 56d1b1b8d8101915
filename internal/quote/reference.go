package quote

import (
	"fmt"
	"strconv"
	"strings"
)

// ReferencePrefix returns "DEV-<year>-".
func ReferencePrefix(year int) string {
	return fmt.Sprintf("DEV-%d-", year)
}

// NextReference returns DEV-<year>-NNN where NNN follows the highest number
// already used for that year. References that do not parse are ignored.
func NextReference(year int, existing []string) string {
	prefix := ReferencePrefix(year)
	highest := 0
	for _, ref := range existing {
		rest, ok := strings.CutPrefix(ref, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return fmt.Sprintf("%s%03d", prefix, highest+1)
}
