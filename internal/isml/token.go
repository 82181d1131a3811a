package isml

import "fmt"

// TokenType distinguishes literal template text from ISML tags.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenText
	TokenTag
)

// TagKind identifies an ISML tag.
type TagKind int

const (
	TagInvalid TagKind = iota
	TagBreak
	TagCache
	TagCacheKey
	TagDictionary
	TagContent
	TagCookie
	TagElse
	TagElseIf
	TagIf
	TagIfEnd
	TagInclude
	TagLoop
	TagLoopEnd
	TagModule
	TagNext
	TagPrint
	TagRedirect
	TagSelect
	TagSet
	TagFile
	TagRender
	TagRenderEnd
	TagFileBundle
	TagFileBundleEnd
	TagForm
	TagFormEnd
	TagBinary
	TagPipeline
	TagText
	TagCustom
	TagCustomEnd
	TagPlaceholder
	TagPlacement
	TagPlacementEnd
)

var tagKindNames = map[TagKind]string{
	TagInvalid:       "INVALID",
	TagBreak:         "ISBREAK",
	TagCache:         "ISCACHE",
	TagCacheKey:      "ISCACHEKEY",
	TagDictionary:    "ISDICTIONARY",
	TagContent:       "ISCONTENT",
	TagCookie:        "ISCOOKIE",
	TagElse:          "ISELSE",
	TagElseIf:        "ISELSEIF",
	TagIf:            "ISIF",
	TagIfEnd:         "/ISIF",
	TagInclude:       "ISINCLUDE",
	TagLoop:          "ISLOOP",
	TagLoopEnd:       "/ISLOOP",
	TagModule:        "ISMODULE",
	TagNext:          "ISNEXT",
	TagPrint:         "ISPRINT",
	TagRedirect:      "ISREDIRECT",
	TagSelect:        "ISSELECT",
	TagSet:           "ISSET",
	TagFile:          "ISFILE",
	TagRender:        "ISRENDER",
	TagRenderEnd:     "/ISRENDER",
	TagFileBundle:    "ISFILEBUNDLE",
	TagFileBundleEnd: "/ISFILEBUNDLE",
	TagForm:          "ISFORM",
	TagFormEnd:       "/ISFORM",
	TagBinary:        "ISBINARY",
	TagPipeline:      "ISPIPELINE",
	TagText:          "ISTEXT",
	TagCustom:        "ISX",
	TagCustomEnd:     "/ISX",
	TagPlaceholder:   "ISPLACEHOLDER",
	TagPlacement:     "ISPLACEMENT",
	TagPlacementEnd:  "/ISPLACEMENT",
}

func (k TagKind) String() string {
	if s, ok := tagKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TagKind(%d)", int(k))
}

// openTags maps the lowercased name following "<is" to its kind.
var openTags = map[string]TagKind{
	"break":       TagBreak,
	"cache":       TagCache,
	"cachekey":    TagCacheKey,
	"dictionary":  TagDictionary,
	"content":     TagContent,
	"cookie":      TagCookie,
	"else":        TagElse,
	"elseif":      TagElseIf,
	"if":          TagIf,
	"include":     TagInclude,
	"loop":        TagLoop,
	"module":      TagModule,
	"next":        TagNext,
	"print":       TagPrint,
	"redirect":    TagRedirect,
	"select":      TagSelect,
	"set":         TagSet,
	"file":        TagFile,
	"render":      TagRender,
	"filebundle":  TagFileBundle,
	"form":        TagForm,
	"binary":      TagBinary,
	"pipeline":    TagPipeline,
	"text":        TagText,
	"placeholder": TagPlaceholder,
	"placement":   TagPlacement,
}

// closeTags maps the lowercased name following "</is" to its kind.
var closeTags = map[string]TagKind{
	"if":         TagIfEnd,
	"loop":       TagLoopEnd,
	"render":     TagRenderEnd,
	"filebundle": TagFileBundleEnd,
	"form":       TagFormEnd,
	"placement":  TagPlacementEnd,
}

// Tag is one ISML tag as produced by the lexer.
type Tag struct {
	Kind  TagKind
	Name  string // custom tag name without the "is" prefix, lowercased
	Pos   Position
	Attrs AttributeSet
}

// Token is one unit of the lexer's output stream.
type Token struct {
	Type TokenType
	Text string // literal text for TokenText
	Tag  *Tag   // set for TokenTag
	Pos  Position
}

// String returns a debug representation of the token.
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return fmt.Sprintf("EOF at %d:%d", t.Pos.Line, t.Pos.Column)
	case TokenTag:
		return fmt.Sprintf("%s at %d:%d", t.Tag.Kind, t.Pos.Line, t.Pos.Column)
	}
	lit := t.Text
	if len(lit) > 20 {
		lit = lit[:17] + "..."
	}
	return fmt.Sprintf("TEXT(%q) at %d:%d", lit, t.Pos.Line, t.Pos.Column)
}

// TokenSource produces tokens in stream order. Next returns a TokenEOF token
// once the input is exhausted.
type TokenSource interface {
	Next() (Token, error)
}
