package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cli runs commands against one sqlite database and config file.
type cli struct {
	t   *testing.T
	dir string
	db  string
	cfg string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	return &cli{
		t:   t,
		dir: dir,
		db:  filepath.Join(dir, "genomebank.db"),
		cfg: filepath.Join(dir, "genomebank.yaml"),
	}
}

func (c *cli) run(args ...string) (stdout, stderr string, code int) {
	c.t.Helper()
	return c.runWithInput("", args...)
}

func (c *cli) runWithInput(input string, args ...string) (stdout, stderr string, code int) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--config", c.cfg, "--driver", "sqlite", "--db", c.db}, args...)
	code = run(context.Background(), full, strings.NewReader(input), &out, &errOut)
	return out.String(), errOut.String(), code
}

// ok runs a command that must succeed and returns its stdout.
func (c *cli) ok(args ...string) string {
	c.t.Helper()
	stdout, stderr, code := c.run(args...)
	require.Equal(c.t, ExitSuccess, code, "genomebank %s: %s", strings.Join(args, " "), stderr)
	return stdout
}

func (c *cli) writeFile(name, content string) string {
	c.t.Helper()
	path := filepath.Join(c.dir, name)
	require.NoError(c.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCLI_EndToEnd(t *testing.T) {
	c := newCLI(t)

	out := c.ok("chromosome", "create", "chr1", "--sequence", "ACGTACGTAC")
	assert.Contains(t, out, "1\tchr1\t10\tYES\t")

	c.ok("gene", "create", "--chromosome", "1", "--symbol", "G1", "--start", "2", "--end", "6")
	c.ok("gene", "create", "--chromosome", "1", "--symbol", "G2", "--start", "0", "--end", "10", "--strand", "-")

	out = c.ok("analysis", "genes", "--chromosome", "1", "--start", "5", "--end", "7")
	assert.Equal(t,
		"#geneId\tsymbol\tchromosomeName\tstartPosition\tendPosition\tstrand\n"+
			"2\tG2\tchr1\t0\t10\t-\n"+
			"1\tG1\tchr1\t2\t6\t+\n",
		out)

	out = c.ok("analysis", "stats", "--chromosome", "1")
	assert.Contains(t, out, "1\tchr1\t10\t2\t50.00\t3\t3\t2\t2\t0\n")

	out = c.ok("sequence", "get", "1", "--start", "2", "--end", "5")
	assert.Equal(t, "GTA\n", out)

	out = c.ok("gene", "search", "g1")
	assert.Contains(t, out, "\tG1\t")
	assert.NotContains(t, out, "\tG2\t")

	c.ok("gene", "update", "1", "--symbol", "GENE1")
	out = c.ok("gene", "get", "1")
	assert.Contains(t, out, "1\t1\tGENE1\t2\t6\t+\t-\n")

	c.ok("gene", "sequence", "set", "1", "GTAC")
	assert.Equal(t, "GTAC\n", c.ok("gene", "sequence", "get", "1"))

	out = c.ok("--format", "json", "chromosome", "list")
	assert.Contains(t, out, `"name":"chr1"`)
}

func TestCLI_Functions(t *testing.T) {
	c := newCLI(t)
	c.ok("chromosome", "create", "chr1", "--sequence", "ACGT")
	c.ok("gene", "create", "--chromosome", "1", "--symbol", "KRAS", "--start", "0", "--end", "4")

	out := c.ok("function", "create", "--code", "GO:0003924", "--name", "GTPase activity", "--category", "MF")
	assert.Contains(t, out, "1\tGO:0003924\tGTPase activity\tMF\t-\n")

	_, _, code := c.run("function", "create", "--code", "GO:0003924", "--name", "dup", "--category", "MF")
	assert.Equal(t, ExitError, code, "duplicate code is a conflict")

	c.ok("function", "associate", "1", "1", "--evidence", "IDA")
	out = c.ok("function", "associations", "--gene", "1")
	assert.Contains(t, out, "1\t1\tIDA\n")

	c.ok("function", "dissociate", "1", "1")
	_, _, code = c.run("function", "dissociate", "1", "1")
	assert.Equal(t, ExitNotFound, code)

	_, _, code = c.run("function", "associations")
	assert.Equal(t, ExitUsage, code)

	c.ok("function", "create", "--code", "GO:0008150", "--name", "biological_process", "--category", "BP")
	out = c.ok("function", "search", "--category", "BP")
	assert.Contains(t, out, "2\tGO:0008150\t")
	assert.NotContains(t, out, "GO:0003924")
	out = c.ok("function", "search", "--code", "3924")
	assert.Contains(t, out, "1\tGO:0003924\t")

	out = c.ok("function", "update", "1", "--description", "GTP hydrolysis")
	assert.Contains(t, out, "1\tGO:0003924\tGTPase activity\tMF\tGTP hydrolysis\n")
	_, _, code = c.run("function", "update", "1", "--code", "GO:0008150")
	assert.Equal(t, ExitError, code, "code held by another function is a conflict")
	_, _, code = c.run("function", "update", "1", "--category", "XX")
	assert.Equal(t, ExitUsage, code)

	c.ok("function", "associate", "1", "2")
	c.ok("function", "delete", "2")
	out = c.ok("function", "associations", "--gene", "1")
	assert.NotContains(t, out, "1\t2\t")
	_, _, code = c.run("function", "get", "2")
	assert.Equal(t, ExitNotFound, code)
}

func TestCLI_Import(t *testing.T) {
	c := newCLI(t)
	fasta := c.writeFile("ref.fa", ">chr1 test\nACGTAC\nGTAC\n>chr2\nNNNN\n")
	gtf := c.writeFile("genes.gtf",
		"#!genome-build test\n"+
			"chr1\ttest\tgene\t3\t6\t.\t+\t.\tgene_id \"G1\"; gene_name \"ONE\";\n"+
			"chr1\ttest\texon\t3\t6\t.\t+\t.\tgene_id \"G1\"; gene_name \"ONE\";\n"+
			"chrX\ttest\tgene\t1\t2\t.\t+\t.\tgene_id \"G2\"; gene_name \"TWO\";\n")

	_, stderr, code := c.run("import", "fasta", fasta)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stderr, "created 2, updated 0, unchanged 0, skipped 0")

	_, stderr, code = c.run("import", "gtf", gtf)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stderr, "created 1")

	out := c.ok("gene", "list", "--chromosome", "1")
	assert.Contains(t, out, "\tONE\t2\t6\t+\t")

	regions := c.writeFile("regions.bed", "chr1\t0\t3\nchr2\t0\t4\nchr1\t5\t10\n")
	out = c.ok("analysis", "genes", "--regions", regions)
	assert.Equal(t, 2, strings.Count(out, "\tONE\t"))

	out = c.ok("analysis", "report")
	assert.Contains(t, out, "\tchr1\t10\t")
	assert.Contains(t, out, "\tchr2\t4\t0\t0.00\t0\t0\t0\t0\t4\n")
}

func TestCLI_SequenceFromStdin(t *testing.T) {
	c := newCLI(t)
	c.ok("chromosome", "create", "chr1", "--length", "8")

	_, stderr, code := c.runWithInput(">chr1\nACGT\nACGT\n", "sequence", "set", "1", "--file", "-")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "ACGTACGT\n", c.ok("sequence", "get", "1"))

	_, _, code = c.runWithInput("ACG", "sequence", "set", "1", "--file", "-")
	assert.Equal(t, ExitUsage, code, "length mismatch")
}

func TestCLI_ExitCodes(t *testing.T) {
	c := newCLI(t)
	c.ok("chromosome", "create", "chr1", "--sequence", "ACGT")
	c.ok("chromosome", "create", "chrM", "--length", "16569")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown chromosome", []string{"chromosome", "get", "99"}, ExitNotFound},
		{"bad id", []string{"chromosome", "get", "abc"}, ExitUsage},
		{"missing argument", []string{"chromosome", "get"}, ExitUsage},
		{"unknown flag", []string{"chromosome", "list", "--bogus"}, ExitUsage},
		{"missing required flag", []string{"gene", "list"}, ExitUsage},
		{"unknown command", []string{"frobnicate"}, ExitUsage},
		{"inverted range", []string{"sequence", "get", "1", "--start", "3", "--end", "1"}, ExitUsage},
		{"range past end", []string{"sequence", "get", "1", "--start", "0", "--end", "5"}, ExitUsage},
		{"no sequence", []string{"sequence", "get", "2"}, ExitNotFound},
		{"stats without sequence", []string{"analysis", "stats", "--chromosome", "2"}, ExitNotFound},
		{"gene past chromosome end", []string{"gene", "create", "--chromosome", "1", "--symbol", "X", "--start", "0", "--end", "5"}, ExitUsage},
		{"gene on unknown chromosome", []string{"gene", "create", "--chromosome", "9", "--symbol", "X", "--start", "0", "--end", "1"}, ExitNotFound},
		{"delete unknown gene", []string{"gene", "delete", "7"}, ExitNotFound},
		{"bad output format", []string{"--format", "xml", "chromosome", "list"}, ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := c.run(tt.args...)
			assert.Equal(t, tt.want, code, stderr)
			assert.True(t, strings.HasPrefix(stderr, "Error: "), stderr)
		})
	}
}

func TestCLI_Config(t *testing.T) {
	c := newCLI(t)

	_, stderr, code := c.run("config", "set", "output.format", "json")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "json\n", c.ok("config", "get", "output.format"))

	data, err := os.ReadFile(c.cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "format: json")
	assert.NotContains(t, string(data), "workers", "defaults are not persisted")

	_, _, code = c.run("config", "set", "store.driver", "postgres")
	assert.Equal(t, ExitUsage, code)
	_, _, code = c.run("config", "get", "no.such.key")
	assert.Equal(t, ExitUsage, code)

	out := c.ok("chromosome", "create", "chr1", "--length", "4")
	assert.Contains(t, out, `"name":"chr1"`, "output format comes from the config file")
}
