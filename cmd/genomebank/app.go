package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/genomebank/internal/analysis"
	"github.com/inodb/genomebank/internal/config"
	"github.com/inodb/genomebank/internal/genome"
	"github.com/inodb/genomebank/internal/index"
	"github.com/inodb/genomebank/internal/loader"
	"github.com/inodb/genomebank/internal/output"
	"github.com/inodb/genomebank/internal/sequence"
	"github.com/inodb/genomebank/internal/sqlstore"
	"github.com/inodb/genomebank/internal/store"
)

// app holds the state shared by all commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
	repo    store.Repository

	stdin          io.Reader
	stdout, stderr io.Writer
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	v := viper.New()
	config.SetDefaults(v)
	config.BindEnv(v)
	return &app{
		v:      v,
		logger: zap.NewNop(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

// init reads the config file and builds the logger. The store is opened on
// first use so that config commands work without one.
func (a *app) init() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(home)
			a.v.SetConfigName(".genomebank")
			a.v.SetConfigType("yaml")
		}
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) close() {
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.logger.Warn("closing store", zap.Error(err))
		}
		a.repo = nil
	}
	_ = a.logger.Sync()
}

// openStore opens the configured repository once.
func (a *app) openStore() (store.Repository, error) {
	if a.repo != nil {
		return a.repo, nil
	}

	switch a.cfg.Store.Driver {
	case config.DriverMemory:
		a.repo = store.NewMemStore()
	default:
		s, err := sqlstore.Open(a.cfg.Store.Driver, a.cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.repo = s
	}
	a.logger.Debug("store opened",
		zap.String("driver", a.cfg.Store.Driver),
		zap.String("path", a.cfg.Store.Path))
	return a.repo, nil
}

func (a *app) newSequenceStore() (*sequence.Store, error) {
	repo, err := a.openStore()
	if err != nil {
		return nil, err
	}
	s := sequence.NewStore(repo)
	s.SetLogger(a.logger)
	return s, nil
}

func (a *app) newIndex() (*index.Index, error) {
	repo, err := a.openStore()
	if err != nil {
		return nil, err
	}
	ix := index.New(repo)
	ix.SetLogger(a.logger)
	return ix, nil
}

func (a *app) newAnalysis() (*analysis.Service, error) {
	ix, err := a.newIndex()
	if err != nil {
		return nil, err
	}
	svc := analysis.NewService(a.repo, ix, a.cfg.Workers)
	svc.SetLogger(a.logger)
	return svc, nil
}

func (a *app) newImporter() (*loader.Importer, error) {
	repo, err := a.openStore()
	if err != nil {
		return nil, err
	}
	im := loader.NewImporter(repo)
	im.SetLogger(a.logger)
	return im, nil
}

// write renders results with the configured output format and flushes.
func (a *app) write(fn func(w output.Writer) error) error {
	w, err := output.New(a.stdout, a.cfg.Output.Format)
	if err != nil {
		return err
	}
	if err := fn(w); err != nil {
		return err
	}
	return w.Flush()
}

// parseID parses a positional or flag id.
func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s id must be a positive integer, got %q", genome.ErrInvalidInput, what, s)
	}
	return id, nil
}

// readSequence returns a sequence given inline, from a file, or from stdin
// when the file is "-". A file may be raw text or FASTA, plain or compressed;
// for FASTA the first record is used.
func (a *app) readSequence(inline, path string) (string, error) {
	if path == "" {
		return inline, nil
	}
	if inline != "" {
		return "", fmt.Errorf("%w: give a sequence or a file, not both", genome.ErrInvalidInput)
	}

	var r io.Reader
	if path == "-" {
		r = a.stdin
	} else {
		f, err := loader.Open(filepath.Clean(path))
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read sequence: %w", err)
	}
	text := string(data)
	if strings.HasPrefix(strings.TrimSpace(text), ">") {
		rec, err := loader.NewFASTAReader(strings.NewReader(text)).Next()
		if err != nil {
			return "", err
		}
		return rec.Sequence, nil
	}
	return strings.Join(strings.Fields(text), ""), nil
}
