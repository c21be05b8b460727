package receiving

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NumberSource is satisfied by any repository exposing a
// MaxXxxNumberWithPrefix(ctx, likePattern) lookup.
type NumberSource func(ctx context.Context, likePattern string) (string, error)

// dateFmt6 is Go's reference layout for YYMMDD.
const dateFmt6 = "060102"

// NextNumber implements the "find the lexicographic max existing number for
// today's date pattern, parse its trailing counter, increment" scheme shared
// by batch numbers, GRNs, dispatch notes and delivery notes.
func NextNumber(ctx context.Context, lookup NumberSource, prefix string, now time.Time, width int) (string, error) {
	dateStr := now.Format(dateFmt6)
	likePattern := fmt.Sprintf("%s-%s-%%", prefix, dateStr)

	last, err := lookup(ctx, likePattern)
	if err != nil {
		return "", err
	}

	seq := 1
	if last != "" {
		parts := strings.Split(last, "-")
		if n, convErr := strconv.Atoi(parts[len(parts)-1]); convErr == nil {
			seq = n + 1
		}
	}

	return fmt.Sprintf("%s-%s-%0*d", prefix, dateStr, width, seq), nil
}
