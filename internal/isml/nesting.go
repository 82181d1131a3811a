package isml

// Frame is one open block on the nesting stack.
type Frame struct {
	Kind TagKind
	Pos  Position
}

// placementRestricted lists the kinds that may not appear anywhere inside
// an open ISPLACEMENT.
var placementRestricted = map[TagKind]bool{
	TagCache:       true,
	TagCacheKey:    true,
	TagDictionary:  true,
	TagContent:     true,
	TagCookie:      true,
	TagInclude:     true,
	TagModule:      true,
	TagRedirect:    true,
	TagSelect:      true,
	TagBinary:      true,
	TagPipeline:    true,
	TagText:        true,
	TagCustom:      true,
	TagCustomEnd:   true,
	TagPlaceholder: true,
	TagPlacement:   true,
}

// closers maps each closing kind other than /ISIF to the opener it pops.
var closers = map[TagKind]TagKind{
	TagLoopEnd:       TagLoop,
	TagRenderEnd:     TagRender,
	TagFileBundleEnd: TagFileBundle,
	TagFormEnd:       TagForm,
	TagPlacementEnd:  TagPlacement,
}

// closerFor is the reverse of closers plus ISIF, used for hints.
var closerFor = map[TagKind]string{
	TagIf:         "</isif>",
	TagElseIf:     "</isif>",
	TagElse:       "</isif>",
	TagLoop:       "</isloop>",
	TagRender:     "</isrender>",
	TagFileBundle: "</isfilebundle>",
	TagForm:       "</isform>",
	TagPlacement:  "</isplacement>",
}

// Validator tracks open blocks while tags stream through the compiler.
type Validator struct {
	stack []Frame
}

// NewValidator returns a validator with an empty stack.
func NewValidator() *Validator {
	return &Validator{}
}

// Check applies tag to the stack. For /ISIF it returns the frames it popped,
// innermost first, so the caller can close every branch that was opened.
func (v *Validator) Check(tag *Tag) ([]Frame, error) {
	if placementRestricted[tag.Kind] && v.Contains(TagPlacement) {
		return nil, nestingErr("Tag %s not allowed in ISPLACEMENT.", tag.Kind)
	}

	frame := Frame{Kind: tag.Kind, Pos: tag.Pos}
	switch tag.Kind {
	case TagBreak, TagNext:
		if !v.Contains(TagLoop) {
			return nil, nestingErr("%s outside ISLOOP.", tag.Kind)
		}

	case TagElse, TagElseIf:
		if !v.topIs(TagIf) && !v.topIs(TagElseIf) {
			return nil, nestingErr("There is no corresponding ISIF for this %s.", tag.Kind)
		}
		v.push(frame)

	case TagIf, TagLoop, TagForm, TagFileBundle, TagPlacement:
		v.push(frame)

	case TagRender:
		if !v.topIs(TagFileBundle) {
			return nil, nestingErr("The ISRENDER tag is only in a ISFILEBUNDLE allowed.")
		}
		v.push(frame)

	case TagFile:
		if !v.topIs(TagFileBundle) {
			return nil, nestingErr("The ISFILE tag is only in a ISFILEBUNDLE allowed.")
		}

	case TagIfEnd:
		if !v.topIs(TagIf) && !v.topIs(TagElseIf) && !v.topIs(TagElse) {
			return nil, nestingErr("There is no corresponding ISIF for this /ISIF.")
		}
		var drained []Frame
		for {
			top := v.pop()
			drained = append(drained, top)
			if top.Kind == TagIf {
				break
			}
			if len(v.stack) == 0 {
				return drained, &Error{Kind: InternalFault, Message: "branch frames without an ISIF below them"}
			}
		}
		return drained, nil

	default:
		if opener, ok := closers[tag.Kind]; ok {
			if !v.topIs(opener) {
				return nil, nestingErr("There is no corresponding %s for this %s.", opener, tag.Kind)
			}
			return []Frame{v.pop()}, nil
		}
	}
	return nil, nil
}

// Finish reports an error if any block is still open, pointing at the
// innermost unmatched opener.
func (v *Validator) Finish() error {
	if len(v.stack) == 0 {
		return nil
	}
	top := v.stack[len(v.stack)-1]
	// Branches belong to their ISIF; report the ISIF itself.
	for i := len(v.stack) - 1; i >= 0; i-- {
		if k := v.stack[i].Kind; k != TagElse && k != TagElseIf {
			top = v.stack[i]
			break
		}
	}
	return &Error{
		Kind:    NestingFault,
		Pos:     top.Pos,
		Tag:     top.Kind.String(),
		Message: "tag is never closed",
		Hint:    "add " + closerFor[top.Kind],
	}
}

// Contains reports whether a frame of kind is open anywhere on the stack.
func (v *Validator) Contains(kind TagKind) bool {
	for i := len(v.stack) - 1; i >= 0; i-- {
		if v.stack[i].Kind == kind {
			return true
		}
	}
	return false
}

// Top returns the innermost open frame.
func (v *Validator) Top() (Frame, bool) {
	if len(v.stack) == 0 {
		return Frame{}, false
	}
	return v.stack[len(v.stack)-1], true
}

// Depth returns the number of open frames.
func (v *Validator) Depth() int {
	return len(v.stack)
}

func (v *Validator) topIs(kind TagKind) bool {
	top, ok := v.Top()
	return ok && top.Kind == kind
}

func (v *Validator) push(f Frame) {
	v.stack = append(v.stack, f)
}

func (v *Validator) pop() Frame {
	f := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	return f
}
