package scan

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/dmi"
)

const numWorkers = 10

// Scanner walks a directory tree indexing every DMI file it finds.
type Scanner struct {
	db     *StateDB
	logger *log.Logger
}

// New returns a Scanner recording into db. Progress and skipped files
// are reported through logger.
func New(db *StateDB, logger *log.Logger) *Scanner {
	return &Scanner{
		db:     db,
		logger: logger,
	}
}

func (s *Scanner) findFiles(ctx context.Context, base string) (<-chan string, <-chan error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || !strings.EqualFold(filepath.Ext(file), ".dmi") {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc
}

func (s *Scanner) fileWorker(in <-chan string) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			f, err := os.Open(file)
			if err != nil {
				errc <- err
				return
			}

			meta, err := dmi.DecodeMetadata(f)
			f.Close()
			if err != nil {
				// Malformed files are common in the wild; note them
				// and keep scanning.
				s.logger.Printf("skipping %q: %v\n", file, err)
				continue
			}

			if err := s.db.AddFile(file, meta.States); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path and records the states of every DMI file below it.
func (s *Scanner) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc := s.findFiles(ctx, dir)
	errcList = append(errcList, errc)

	for i := 0; i < numWorkers; i++ {
		errcList = append(errcList, s.fileWorker(files))
	}

	return waitForPipeline(errcList...)
}
