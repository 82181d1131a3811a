package precompile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/grindlemire/go-isml/internal/log"
)

const (
	TemplateExtension = ".isml"
	PageExtension     = ".jsp"
)

// Job is one template of a batch.
type Job struct {
	Name   string // template name below the source root, e.g. "en_US/inc/Header.isml"
	Source string
	Target string
}

// Failure is a template that did not compile.
type Failure struct {
	Job Job
	Err error
}

// Summary reports a finished batch.
type Summary struct {
	Compiled []Job
	Skipped  []Job
	Failed   []Failure
}

// Err returns nil if every template compiled, otherwise an error counting
// the failures.
func (s *Summary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d file(s) had errors", len(s.Failed))
}

// Batch compiles a template tree. The source root holds one directory per
// language; every template below a language directory is compiled to the
// same relative path below Dest with the page extension.
type Batch struct {
	Source string
	Dest   string
	// Jobs bounds the number of parallel compilations. Zero or less means
	// one per CPU.
	Jobs int
	// Force compiles templates whose page is up to date.
	Force bool
	// Progress, if set, is called after every compilation. Calls are
	// serialized.
	Progress func(job Job, res *Result, err error)
}

// Plan lists the templates of the tree, split into those that need compiling
// and those whose page is newer than the template.
func (b *Batch) Plan() (compile, skip []Job, err error) {
	if b.Source == "" || b.Dest == "" {
		return nil, nil, errors.New("source and destination directories must be set")
	}
	info, err := os.Stat(b.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", b.Source, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%s is not a directory", b.Source)
	}

	langs, err := os.ReadDir(b.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("reading directory %s: %w", b.Source, err)
	}
	for _, lang := range langs {
		if !lang.IsDir() {
			continue
		}
		root := filepath.Join(b.Source, lang.Name())
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !IsTemplate(d.Name()) {
				return nil
			}
			rel, err := filepath.Rel(b.Source, p)
			if err != nil {
				return err
			}
			job := Job{
				Name:   filepath.ToSlash(rel),
				Source: p,
				Target: filepath.Join(b.Dest, rel[:len(rel)-len(TemplateExtension)]+PageExtension),
			}
			if !b.Force && upToDate(job) {
				log.Info("Skipping file: %s. Target is up to date.", p)
				skip = append(skip, job)
				return nil
			}
			compile = append(compile, job)
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	sort.Slice(compile, func(i, j int) bool { return compile[i].Name < compile[j].Name })
	return compile, skip, nil
}

// IsTemplate matches "*.isml" case-insensitively, but not a bare ".isml".
func IsTemplate(name string) bool {
	return len(name) > len(TemplateExtension) && strings.HasSuffix(strings.ToLower(name), TemplateExtension)
}

func upToDate(job Job) bool {
	target, err := os.Stat(job.Target)
	if err != nil || !target.Mode().IsRegular() {
		return false
	}
	source, err := os.Stat(job.Source)
	if err != nil {
		return false
	}
	return !target.ModTime().Before(source.ModTime())
}

// Run compiles every template that needs it. A failing template does not
// stop the others; failures are collected in the summary. The returned
// error is only set when the tree cannot be read or ctx is done.
func (b *Batch) Run(ctx context.Context, p *Precompiler) (*Summary, error) {
	compile, skip, err := b.Plan()
	if err != nil {
		return nil, err
	}
	sum := &Summary{Skipped: skip}
	if len(compile) == 0 {
		return sum, nil
	}
	log.Info("Compiling %d source files to %s.", len(compile), b.Dest)

	limit := b.Jobs
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, job := range compile {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := b.compile(p, job)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error("Error compiling '%s'. Reason: %v", job.Source, err)
				sum.Failed = append(sum.Failed, Failure{Job: job, Err: err})
			} else {
				sum.Compiled = append(sum.Compiled, job)
			}
			if b.Progress != nil {
				b.Progress(job, res, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sum, err
	}

	sort.Slice(sum.Compiled, func(i, j int) bool { return sum.Compiled[i].Name < sum.Compiled[j].Name })
	sort.Slice(sum.Failed, func(i, j int) bool { return sum.Failed[i].Job.Name < sum.Failed[j].Job.Name })
	return sum, nil
}

// compile removes the stale page, then compiles the template.
func (b *Batch) compile(p *Precompiler, job Job) (*Result, error) {
	if err := os.Remove(job.Target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("removing stale page: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(job.Target), 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}
	return p.CompileFile(job.Source, job.Target)
}
