package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// GTFGene is a gene feature converted to half-open 0-based coordinates.
type GTFGene struct {
	Chrom  string
	GeneID string
	Symbol string
	Start  int64 // 0-based, inclusive
	End    int64 // 0-based, exclusive
	Strand string
}

// ParseGTF reads the "gene" features of GTF content. GTF coordinates are
// 1-based and closed; [s, e] becomes [s-1, e). Malformed lines are skipped
// and counted.
func ParseGTF(r io.Reader) (genes []GTFGene, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		g, ok, err := parseGeneLine(line)
		if err != nil {
			skipped++
			continue
		}
		if ok {
			genes = append(genes, g)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scan GTF: %w", err)
	}
	return genes, skipped, nil
}

// parseGeneLine parses one GTF line. ok is false for features other than genes.
func parseGeneLine(line string) (g GTFGene, ok bool, err error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return g, false, fmt.Errorf("invalid GTF line: expected 9 fields, got %d", len(fields))
	}
	if fields[2] != "gene" {
		return g, false, nil
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return g, false, fmt.Errorf("parse start: %w", err)
	}
	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return g, false, fmt.Errorf("parse end: %w", err)
	}

	attrs := parseAttributes(fields[8])
	symbol := attrs["gene_name"]
	if symbol == "" {
		symbol = attrs["gene_id"]
	}

	return GTFGene{
		Chrom:  fields[0],
		GeneID: attrs["gene_id"],
		Symbol: symbol,
		Start:  start - 1,
		End:    end,
		Strand: fields[6],
	}, true, nil
}

// parseAttributes parses the GTF attribute column.
// Format: key "value"; key "value"; ...
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		idx := strings.Index(part, " ")
		if idx == -1 {
			continue
		}

		key := part[:idx]
		value := strings.Trim(strings.TrimSpace(part[idx+1:]), "\"")
		attrs[key] = value
	}

	return attrs
}
