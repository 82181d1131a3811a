package isml

import (
	"strconv"
	"strings"
)

const includeResponse = "(com.intershop.beehive.core.capi.request.ServletResponse)response"

// compileInclude includes a local template, an extension point or a remote
// URL, in that order of precedence.
func compileInclude(t *tagCtx) error {
	template, hasTemplate := t.value("template")

	extension := ""
	hasExtension := false
	url := ""
	if !hasTemplate {
		ext, ok, err := t.literal("extensionpoint")
		if err != nil {
			return err
		}
		if ok {
			extension, hasExtension = javaString(ext), true
		} else if url, ok = t.value("url"); !ok {
			e := malformed("Missing template locator attribute in %s.", t.name())
			e.Hint = "add template=\"...\", extensionpoint=\"...\" or url=\"...\""
			return e
		}
	}

	username, password, server := "null", "null", false
	if url != "" {
		u, hasUser := t.value("username")
		p, hasPassword := t.value("password")
		switch {
		case hasUser && !hasPassword:
			return malformed("Attribute %q in %s has no corresponding %q attribute.", "username", t.name(), "password")
		case hasPassword && !hasUser:
			return malformed("Attribute %q in %s has no corresponding %q attribute.", "password", t.name(), "username")
		case hasUser:
			username, password = u, p
		}
		mode, ok, err := t.enum("mode", "automatic", "server")
		if err != nil {
			return err
		}
		server = ok && mode == "server"
	}

	dictionary, hasDictionary := t.value("dictionary")
	if hasDictionary && !hasTemplate {
		return malformed("Attribute %q in %s is only allowed with attribute %q.", "dictionary", t.name(), "template")
	}
	if !hasDictionary {
		dictionary = "null"
	}

	line := javaString(strconv.Itoa(t.line()))
	t.print("{out.flush();")
	switch {
	case hasTemplate:
		t.print("processLocalIncludeByServer(", includeResponse, ",", template, ", ", dictionary, ", ", line, ");")
	case hasExtension:
		t.print("processExtensionPoint(", includeResponse, ",", extension, ", ", dictionary, ", ", line, ");")
	default:
		process := "processRemoteIncludeAutomatic"
		if server {
			process = "processRemoteIncludeByServer"
		}
		// Remote content is not URL-rewritten.
		t.print("%><%@page import=\"com.intershop.beehive.core.capi.url.*\"%><%",
			"URLRewriteHandler handler = getTemplateExecutionConfig().getURLRewriteHandler();\n",
			"try\n{\n",
			"getTemplateExecutionConfig().setURLRewriteHandler(NullURLRewriteHandler.getInstance());\n",
			process, "(", includeResponse, ",", url, ", ", username, ", ", password, ", ", line, ");",
			"}\nfinally\n{\n",
			"    getTemplateExecutionConfig().setURLRewriteHandler(handler);\n}")
	}
	t.print("}")
	return nil
}

// compileModule declares a custom tag implemented by a template.
func compileModule(t *tagCtx) error {
	template, err := t.requireValue("template")
	if err != nil {
		return err
	}
	name, err := t.requireLiteral("name")
	if err != nil {
		return err
	}
	strict := false
	if s, ok, err := t.literal("strict"); err != nil {
		return err
	} else if ok {
		strict = strings.EqualFold(strings.TrimSpace(s), "true")
	}

	params, err := literalList(t, "attribute")
	if err != nil {
		return err
	}
	returns, err := literalList(t, "returnattribute")
	if err != nil {
		return err
	}
	if len(returns) > 0 && !strict {
		return malformed("%s declares a returnattribute, but is not declared as to be strict.", t.name())
	}
	for _, r := range returns {
		for _, p := range params {
			if r == p {
				e := malformed("%s attributes and returnattributes must be distinct.", t.name())
				e.Hint = "remove " + strconv.Quote(r) + " from one of the lists"
				return e
			}
		}
	}

	t.print("context.setCustomTagTemplateName(", javaString(strings.ToLower(name)), ",", template, ",",
		strconv.FormatBool(strict), ",", stringArray(params), ",", stringArray(returns), ");")
	return nil
}

// literalList collects every literal value of a repeated attribute.
func literalList(t *tagCtx, attr string) ([]string, error) {
	var out []string
	for _, v := range t.tag.Attrs.All(attr) {
		if v.Expr {
			return nil, malformed("Attribute %q in %s must not have an expression value.", attr, t.name())
		}
		out = append(out, v.Text)
	}
	return out, nil
}

// stringArray renders values as a Java String[] or null when empty.
func stringArray(values []string) string {
	if len(values) == 0 {
		return "null"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = javaString(v)
	}
	return "new String[]{" + strings.Join(quoted, ",") + "}"
}

// tagParameters renders all attributes of the tag as TagParameter
// constructors, one per line.
func tagParameters(t *tagCtx) string {
	attrs := t.tag.Attrs.List()
	params := make([]string, len(attrs))
	for i, a := range attrs {
		params[i] = "new TagParameter(" + javaString(a.Name) + "," + objectCode(a.Value) + ")"
	}
	return strings.Join(params, ",\n")
}

func compileCustom(t *tagCtx) error {
	t.print("processOpenTag(response, pageContext, ", javaString(t.tag.Name), ", new TagParameter[] {\n",
		tagParameters(t), "}, ", strconv.Itoa(t.line()), ");")
	return nil
}

func compileCustomEnd(t *tagCtx) error {
	t.print("processCloseTag(response, pageContext, ", javaString(t.tag.Name), ", ", strconv.Itoa(t.line()), ");\n")
	return nil
}

func compilePipeline(t *tagCtx) error {
	pipeline, err := t.requireValue("pipeline")
	if err != nil {
		return err
	}
	params := "java.util.Collections.emptyMap()"
	if p, ok, err := t.expr("params"); err != nil {
		return err
	} else if ok {
		params = "((java.util.Map)(" + p + "))"
	}
	alias, err := t.requireValue("alias")
	if err != nil {
		return err
	}

	t.print("{try{executePipeline(", pipeline, ",", params, ",", alias, ");",
		"}catch(Exception e){",
		"Logger.error(",
		"this,")
	t.printf("\"ISPIPELINE failed. Line: %d.\",e);", t.line())
	t.print("}}")
	return nil
}

func compileDictionary(t *tagCtx) error {
	source, err := t.requireExpr("source")
	if err != nil {
		return err
	}
	alias, err := optionalLiteral(t, "alias")
	if err != nil {
		return err
	}

	t.print("{try{",
		"importDictionary(", source, ",", alias, ");",
		"}catch(Exception e){",
		"Logger.error(")
	t.printf("this,\"ISDICTIONARY has an invalid expression. Line: {%d}\",e);", t.line())
	t.print("}}")
	return nil
}
