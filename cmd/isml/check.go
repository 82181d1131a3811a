package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/grindlemire/go-isml/internal/isml"
	"github.com/grindlemire/go-isml/internal/precompile"
)

// runCheck implements the check subcommand.
// It compiles templates in memory and reports faults without writing pages.
func runCheck(args []string) error {
	flags := flag.NewFlagSet("check", flag.ContinueOnError)
	var opts options
	opts.register(flags)

	if err := flags.Parse(args); err != nil {
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

	paths := flags.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := collectTemplates(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .isml files found")
	}

	if opts.verbose {
		fmt.Printf("Checking %d .isml file(s)\n", len(files))
	}

	faults := isml.NewErrorList()
	for _, path := range files {
		if opts.verbose {
			fmt.Printf("Checking %s\n", path)
		}
		if err := checkFile(p, path); err != nil {
			var e *isml.Error
			if errors.As(err, &e) {
				faults.Add(e)
			} else {
				faults.AddErrorf(isml.InternalFault, isml.Position{File: path}, "%v", err)
			}
		}
	}

	if err := faults.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("%d file(s) had errors", faults.Len())
	}
	if opts.verbose {
		fmt.Printf("All %d file(s) passed checks\n", len(files))
	}
	return nil
}

func checkFile(p *precompile.Precompiler, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	res, err := p.Compile(path, source, io.Discard)
	printWarnings(res)
	return err
}

// collectTemplates finds all .isml files from the given paths.
// Supports:
//   - Direct file paths: "Home.isml"
//   - Directory paths: "./en_US" (not recursive)
//   - Recursive pattern: "./..."
func collectTemplates(paths []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		if strings.HasSuffix(path, "/...") || path == "..." {
			root := strings.TrimSuffix(strings.TrimSuffix(path, "..."), "/")
			if root == "" {
				root = "."
			}

			err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && precompile.IsTemplate(d.Name()) {
					files = append(files, p)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking %s: %w", root, err)
			}
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if info.IsDir() {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("reading directory %s: %w", path, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() && precompile.IsTemplate(entry.Name()) {
					files = append(files, filepath.Join(path, entry.Name()))
				}
			}
		} else if precompile.IsTemplate(filepath.Base(path)) {
			files = append(files, path)
		}
	}

	return files, nil
}
