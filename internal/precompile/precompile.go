// Package precompile drives the template compiler over files and directory
// trees. It resolves each template's charsets, escapes the source, compiles
// it and writes the page in its output charset.
package precompile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/grindlemire/go-isml/internal/charset"
	"github.com/grindlemire/go-isml/internal/config"
	"github.com/grindlemire/go-isml/internal/isml"
	"github.com/grindlemire/go-isml/internal/log"
)

// Precompiler compiles templates with one configuration. Synthetic names in
// the generated code are unique across every page it compiles. It is safe
// for concurrent use.
type Precompiler struct {
	resolver *charset.Resolver
	counter  *isml.Counter
}

// Result describes one compiled template.
type Result struct {
	Decision *charset.Decision
	// Warnings holds an EncodingFault for every charset candidate that was
	// discarded. They never fail a compilation.
	Warnings []*isml.Error
}

// New creates a Precompiler. A nil cfg means config.Default().
func New(cfg *config.Config) *Precompiler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Precompiler{
		resolver: charset.NewResolver(cfg, cfg.PlatformEncoding()),
		counter:  isml.NewCounter(),
	}
}

// Compile compiles the template src and writes the page to w. name is used
// in diagnostics. On failure w may have received part of the page.
func (p *Precompiler) Compile(name string, src []byte, w io.Writer) (*Result, error) {
	d := p.resolver.Resolve(src)
	res := &Result{Decision: d}
	for _, f := range d.Faults {
		res.Warnings = append(res.Warnings, &isml.Error{
			Kind:    isml.EncodingFault,
			Pos:     isml.Position{File: name},
			Message: f.Error(),
			Err:     f.Err,
		})
	}

	escaped, err := charset.Escape(src, d.SourceCharset)
	if err != nil {
		return res, &isml.Error{
			Kind:    isml.EncodingFault,
			Pos:     isml.Position{File: name},
			Message: fmt.Sprintf("cannot read template as %s", d.SourceCharset),
			Err:     err,
		}
	}

	enc, err := charset.Lookup(d.OutputCharset)
	if err != nil {
		return res, &isml.Error{
			Kind:    isml.EncodingFault,
			Pos:     isml.Position{File: name},
			Message: fmt.Sprintf("cannot write page as %s", d.OutputCharset),
			Err:     err,
		}
	}

	// Characters the page charset cannot represent are replaced.
	out := transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder()))
	c := isml.NewCompiler(out, isml.Options{
		Filename:        name,
		Encoding:        d.OutputCharset,
		ContentDeclared: d.ContentDeclared,
		Counter:         p.counter,
	})
	if err := c.Compile(isml.NewLexer(name, escaped)); err != nil {
		return res, err
	}
	if err := out.Close(); err != nil {
		return res, fmt.Errorf("encoding page as %s: %w", d.OutputCharset, err)
	}
	return res, nil
}

// CompileFile compiles the template at src into the page at dst. dst is
// removed again if compilation fails or panics, so a page on disk is always
// complete. A panic is reported as an InternalFault.
func (p *Precompiler) CompileFile(src, dst string) (res *Result, err error) {
	log.Compile("compiling %s to %s", src, dst)

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			err = &isml.Error{
				Kind:    isml.InternalFault,
				Pos:     isml.Position{File: src},
				Message: fmt.Sprintf("compilation failed: %v", r),
			}
		}
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing page: %w", cerr)
		}
		if err != nil {
			if rerr := os.Remove(dst); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
				log.Error("removing incomplete page %s: %v", dst, rerr)
			}
		}
	}()

	bw := bufio.NewWriter(f)
	res, err = p.Compile(src, data, bw)
	if err != nil {
		return res, err
	}
	if err := bw.Flush(); err != nil {
		return res, fmt.Errorf("writing page: %w", err)
	}
	for _, w := range res.Warnings {
		log.Encoding("%v", w)
	}
	return res, nil
}
