package isml

import (
	"errors"
	"fmt"
	"io"

	"github.com/grindlemire/go-isml/internal/charset"
	"github.com/grindlemire/go-isml/internal/log"
)

const (
	scriptletStart = "<%"
	scriptletEnd   = "%>"
)

// pageDirective opens every generated page.
const pageDirective = `<%@  page buffer="none" import="java.util.*,java.io.*,` +
	`com.intershop.beehive.core.internal.template.*,com.intershop.beehive.core.internal.template.isml.*,` +
	`com.intershop.beehive.core.capi.log.*,com.intershop.beehive.core.capi.resource.*,` +
	`com.intershop.beehive.core.capi.util.UUIDMgr,com.intershop.beehive.core.capi.util.XMLHelper,` +
	`com.intershop.beehive.foundation.util.*,com.intershop.beehive.core.internal.url.*,` +
	`com.intershop.beehive.core.internal.resource.*,com.intershop.beehive.core.internal.wsrp.*,` +
	`com.intershop.beehive.core.capi.pipeline.PipelineDictionary,com.intershop.beehive.core.capi.naming.NamingMgr,` +
	`com.intershop.beehive.core.capi.pagecache.PageCacheMgr,com.intershop.beehive.core.capi.request.SessionMgr,` +
	`com.intershop.beehive.core.internal.request.SessionMgrImpl,com.intershop.beehive.core.pipelet.PipelineConstants" ` +
	`extends="com.intershop.beehive.core.internal.template.AbstractTemplate" %>` + "\n"

const pageHeader = `<% boolean _boolean_result=false;` +
	`TemplateExecutionConfig context = getTemplateExecutionConfig();` +
	`createTemplatePageConfig(context.getServletRequest());` +
	`printHeader(out);` +
	` %>`

const pageFooter = `<% printFooter(out); %>`

// Options configures a Compiler.
type Options struct {
	// Filename is used in positions of diagnostics.
	Filename string
	// Encoding is the canonical charset the page is written in.
	Encoding string
	// ContentDeclared reports that the template has its own ISCONTENT. When
	// false the compiler emits one for the page charset first.
	ContentDeclared bool
	// Counter supplies synthetic variable names. Nil means a private counter.
	Counter *Counter
}

// Compiler turns a token stream into a JSP page. A Compiler compiles one
// page and is not safe for concurrent use.
type Compiler struct {
	opts    Options
	w       *CompactingWriter
	nesting *Validator
	counter *Counter
}

// NewCompiler creates a compiler writing to w.
func NewCompiler(w io.Writer, opts Options) *Compiler {
	counter := opts.Counter
	if counter == nil {
		counter = NewCounter()
	}
	return &Compiler{
		opts:    opts,
		w:       NewCompactingWriter(w, opts.Encoding),
		nesting: NewValidator(),
		counter: counter,
	}
}

// Compile consumes src until EOF and writes the complete page. Tokens are
// validated and translated one at a time as they are read. The first fault
// stops compilation.
func (c *Compiler) Compile(src TokenSource) error {
	log.Compile("compiling %s (page charset %s)", c.opts.Filename, c.opts.Encoding)

	if err := c.w.Print(pageDirective + pageHeader); err != nil {
		return fmt.Errorf("writing page header: %w", err)
	}

	if !c.opts.ContentDeclared {
		content := &Tag{
			Kind: TagContent,
			Pos:  Position{File: c.opts.Filename, Line: 1, Column: 1},
			Attrs: NewAttributeSet(Attribute{
				Name:  "charset",
				Value: Literal(charset.MapCharsetToHTTP(c.opts.Encoding)),
			}),
		}
		if err := c.CompileTag(content); err != nil {
			return err
		}
	}

	for {
		tok, err := src.Next()
		if err != nil {
			return err
		}
		switch tok.Type {
		case TokenText:
			if err := c.w.PrintCompact(tok.Text); err != nil {
				return fmt.Errorf("writing page: %w", err)
			}
		case TokenTag:
			if err := c.CompileTag(tok.Tag); err != nil {
				return err
			}
		case TokenEOF:
			return c.finish()
		}
	}
}

func (c *Compiler) finish() error {
	if err := c.nesting.Finish(); err != nil {
		return err
	}
	if err := c.w.Print(pageFooter); err != nil {
		return fmt.Errorf("writing page footer: %w", err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("flushing page: %w", err)
	}
	return nil
}

// CompileTag validates the nesting of one tag, runs its handler and writes
// the generated scriptlet. Every error it returns is an *Error positioned at
// the tag, except write errors of the underlying sink.
func (c *Compiler) CompileTag(tag *Tag) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{
				Kind:    InternalFault,
				Pos:     tag.Pos,
				Tag:     tag.Kind.String(),
				Message: fmt.Sprintf("tag compilation failed: %v", r),
			}
		}
	}()

	handler, ok := handlers[tag.Kind]
	if !ok {
		return &Error{Kind: InternalFault, Pos: tag.Pos, Message: fmt.Sprintf("Invalid tag (%q)", tag.Kind)}
	}

	drained, err := c.nesting.Check(tag)
	if err != nil {
		return annotate(tag, err)
	}

	t := &tagCtx{c: c, tag: tag, drained: drained}
	if err := handler(t); err != nil {
		return annotate(tag, err)
	}

	if err := c.w.Print(scriptletStart + t.b.String() + scriptletEnd); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	return nil
}

// annotate stamps the tag's position and name on a handler error. Errors
// that are not *Error become InternalFault.
func annotate(tag *Tag, err error) error {
	var e *Error
	if !errors.As(err, &e) {
		return &Error{Kind: InternalFault, Pos: tag.Pos, Tag: tag.Kind.String(), Message: err.Error(), Err: err}
	}
	out := *e
	if out.Pos == (Position{}) {
		out.Pos = tag.Pos
	}
	if out.Tag == "" {
		out.Tag = tag.Kind.String()
	}
	return &out
}

// handlers maps every tag kind to its code generator.
var handlers = map[TagKind]func(*tagCtx) error{
	TagIf:            compileIf,
	TagElseIf:        compileIf,
	TagElse:          compileElse,
	TagIfEnd:         compileIfEnd,
	TagLoop:          compileLoop,
	TagLoopEnd:       compileBlockEnd,
	TagBreak:         compileBreak,
	TagNext:          compileNext,
	TagContent:       compileContent,
	TagPrint:         compilePrint,
	TagText:          compileText,
	TagSelect:        compileSelect,
	TagInclude:       compileInclude,
	TagModule:        compileModule,
	TagCustom:        compileCustom,
	TagCustomEnd:     compileCustomEnd,
	TagPipeline:      compilePipeline,
	TagDictionary:    compileDictionary,
	TagCache:         compileCache,
	TagCacheKey:      compileCacheKey,
	TagCookie:        compileCookie,
	TagRedirect:      compileRedirect,
	TagBinary:        compileBinary,
	TagSet:           compileSet,
	TagForm:          compileForm,
	TagFormEnd:       compileFormEnd,
	TagFileBundle:    compileFileBundle,
	TagFileBundleEnd: compileFileBundleEnd,
	TagFile:          compileFile,
	TagRender:        compileRender,
	TagRenderEnd:     compileRenderEnd,
	TagPlaceholder:   compilePlaceholder,
	TagPlacement:     compilePlacement,
	TagPlacementEnd:  compilePlacementEnd,
}
