package isml

import "strings"

// Placeholders and placements are resolved by the web adapter: a placement's
// content is moved into the placeholder with the same id.

func compilePlaceholder(t *tagCtx) error {
	id, ok := t.raw("id")
	if !ok || blankAttr(t, "id") {
		return malformed("Missing 'id' attribute on <isplaceholder>.")
	}
	args := []string{id}
	for _, attr := range []string{"prepend", "separator", "append", "preserveorder", "removeduplicates"} {
		args = append(args, orNull(t.raw(attr)))
	}
	t.print("out.print(context.prepareWAPlaceHolder(", strings.Join(args, ", "), "));")
	return nil
}

func compilePlacement(t *tagCtx) error {
	id, ok := t.raw("placeholderid")
	if !ok || blankAttr(t, "placeholderid") {
		return malformed("Missing 'placeholderid' attribute on <isplacement> line %d, column %d.",
			t.tag.Pos.Line, t.tag.Pos.Column)
	}
	t.print("out.print(context.prepareWAPlacement(", id, "));")
	return nil
}

func compilePlacementEnd(t *tagCtx) error {
	t.print(`out.print("</waplacement>");`)
	return nil
}

func blankAttr(t *tagCtx, attr string) bool {
	v, _ := t.tag.Attrs.Get(attr)
	return strings.TrimSpace(v.Text) == ""
}
