package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/genomebank/internal/genome"
)

// Region is one BED line: a chromosome name and a 0-based half-open interval.
type Region struct {
	Chrom string
	genome.Interval
}

// ParseBED reads the first three columns of BED content. Header, track and
// comment lines are skipped. Unlike GTF, a malformed line is an error: the
// regions are a query and silently dropping one would change its answer.
func ParseBED(r io.Reader) ([]Region, error) {
	scanner := bufio.NewScanner(r)

	var regions []Region
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: BED line %d: expected at least 3 fields, got %d",
				genome.ErrInvalidInput, lineNum, len(fields))
		}
		start, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: BED line %d: parse start: %v", genome.ErrInvalidInput, lineNum, err)
		}
		end, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: BED line %d: parse end: %v", genome.ErrInvalidInput, lineNum, err)
		}
		regions = append(regions, Region{Chrom: fields[0], Interval: genome.Interval{Start: start, End: end}})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan BED: %w", err)
	}
	return regions, nil
}
