package isml

import (
	"strconv"
	"strings"
)

// compileForm opens an HTML form carrying a CSRF token. Every attribute
// that ISFORM does not consume itself is copied onto the form element.
func compileForm(t *tagCtx) error {
	var (
		action      = "null"
		site        string
		serverGroup string
		attrs       strings.Builder
	)
	for _, a := range t.tag.Attrs.List() {
		switch a.Name {
		case "secure", "method":
			// resolved below
		case "site":
			site = stringCode(a.Value)
		case "servergroup":
			serverGroup = stringCode(a.Value)
		default:
			if a.Name == "action" {
				action = stringCode(a.Value)
			}
			attrs.WriteString(`out.print(" ` + htmlAttrText(a.Name) + `=\"");`)
			attrs.WriteString("out.print(" + stringCode(a.Value) + ");")
			attrs.WriteString(`out.print("\"");`)
		}
	}

	secure, hasSecure, err := t.flag("secure")
	if err != nil {
		return err
	}
	method, hasMethod, err := t.enum("method", "GET", "POST")
	if err != nil {
		return err
	}
	switch {
	case !hasMethod && secure:
		return malformed("Attribute %q in %s cannot be true for default method GET.", "secure", t.name())
	case !hasMethod:
		method = "get"
	case method == "get" && secure:
		return malformed("Attribute %q in %s cannot be true for method GET.", "secure", t.name())
	case method == "post" && !hasSecure:
		secure = true
	}

	id := strconv.FormatInt(t.c.counter.Next(), 10)
	actionVar, siteVar, groupVar, valueVar := "action"+id, "site"+id, "serverGroup"+id, "actionValue"+id

	t.print("URLPipelineAction ", actionVar, " = new URLPipelineAction(", action, ");",
		"String ", siteVar, " = null;",
		"String ", groupVar, " = null;",
		"String ", valueVar, " = ", action, ";")
	if site != "" {
		t.print(siteVar, " = ", site, ";")
	}
	t.print("if (", siteVar, " == null)",
		"{",
		"  ", siteVar, " = ", actionVar, ".getDomain();",
		"  if (", siteVar, " == null)",
		"  {",
		"      ", siteVar, " = com.intershop.beehive.core.capi.request.Request.getCurrent().getRequestSite().getDomainName();",
		"  }",
		"}")
	if serverGroup != "" {
		t.print(groupVar, " = ", serverGroup, ";")
	}
	t.print("if (", groupVar, " == null)",
		"{",
		"  ", groupVar, " = ", actionVar, ".getServerGroup();",
		"  if (", groupVar, " == null)",
		"  {",
		"      ", groupVar, " = com.intershop.beehive.core.capi.request.Request.getCurrent().getRequestSite().getServerGroup();",
		"  }",
		"}")

	t.print(`out.print("<form");`,
		`out.print(" method=\"");`,
		`out.print("`, strings.ToUpper(method), `");`,
		`out.print("\"");`,
		attrs.String(),
		`out.print(">");`,
		"out.print(context.prepareWACSRFTag(", valueVar, ", ", siteVar, ", ", groupVar, ",", strconv.FormatBool(secure), "));")
	return nil
}

func compileFormEnd(t *tagCtx) error {
	t.print(`out.print("</form>");`)
	return nil
}
