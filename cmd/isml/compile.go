package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grindlemire/go-isml/internal/precompile"
)

// runCompile implements the compile subcommand. Given a directory it
// compiles the template tree below it; given a file it compiles that one
// template.
func runCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	var opts options
	opts.register(fs)
	jobs := fs.Int("j", 0, "Parallel compilations (default one per CPU)")
	force := fs.Bool("force", false, "Recompile pages that are up to date")

	if err := fs.Parse(args); err != nil {
		return err
	}

	closeLog, err := opts.setupLog()
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := opts.config()
	if err != nil {
		return err
	}
	p := precompile.New(cfg)

	paths := fs.Args()
	if len(paths) == 0 {
		return errors.New("missing source path")
	}
	info, err := os.Stat(paths[0])
	if err != nil {
		return fmt.Errorf("stat %s: %w", paths[0], err)
	}

	if !info.IsDir() {
		if len(paths) > 2 {
			return errors.New("too many arguments given")
		}
		target := pageFileName(paths[0])
		if len(paths) == 2 {
			target = paths[1]
		}
		return compileOne(p, paths[0], target, opts.verbose)
	}

	if len(paths) != 2 {
		return errors.New("compile needs a source and a destination directory")
	}
	b := &precompile.Batch{
		Source: paths[0],
		Dest:   paths[1],
		Jobs:   *jobs,
		Force:  *force,
		Progress: func(job precompile.Job, res *precompile.Result, err error) {
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", job.Source, err)
				return
			}
			printWarnings(res)
			if opts.verbose {
				fmt.Printf("Compiled %s -> %s\n", job.Source, job.Target)
			}
		},
	}

	sum, err := b.Run(context.Background(), p)
	if err != nil {
		return err
	}
	if opts.verbose {
		fmt.Printf("Compiled %d file(s), %d up to date\n", len(sum.Compiled), len(sum.Skipped))
	}
	return sum.Err()
}

func compileOne(p *precompile.Precompiler, src, dst string, verbose bool) error {
	if verbose {
		fmt.Printf("Processing %s -> %s\n", src, dst)
	}
	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	res, err := p.CompileFile(src, dst)
	if err != nil {
		return err
	}
	printWarnings(res)
	return nil
}

// pageFileName converts a template filename to its page filename.
//
//	Home.isml -> Home.jsp
//	inc/Header.ISML -> inc/Header.jsp
func pageFileName(src string) string {
	ext := filepath.Ext(src)
	if strings.EqualFold(ext, precompile.TemplateExtension) {
		return strings.TrimSuffix(src, ext) + precompile.PageExtension
	}
	return src + precompile.PageExtension
}

func printWarnings(res *precompile.Result) {
	if res == nil {
		return
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "%s: warning: %s\n", w.Pos.File, w.Message)
	}
}
