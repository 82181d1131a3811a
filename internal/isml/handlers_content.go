package isml

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/grindlemire/go-isml/internal/charset"
)

// Content types selected by ISCONTENT's encoding attribute.
const (
	typeText = "text/plain"
	typeHTML = "text/html"
	typeXML  = "text/xml"
	typeWML  = "text/vnd.wap.wml"
)

var contentEncodingTypes = map[string]string{
	"off":  typeText,
	"html": typeHTML,
	"xml":  typeXML,
	"wml":  typeWML,
}

// compileContent declares the page's content type. The charset written into
// the declaration is always the page charset; a charset attribute only
// influenced how the page charset was chosen.
func compileContent(t *tagCtx) error {
	compact, ok, err := t.flag("compact")
	if err != nil {
		return err
	}
	if ok && compact {
		t.c.w.Enable()
	}

	marker, ok, err := t.flag("templatemarker")
	if err != nil {
		return err
	}
	if ok {
		value := "Boolean.FALSE"
		if marker {
			value = "Boolean.TRUE"
		}
		t.print("%><%! protected Boolean printTemplateMarker() { return ", value, "; } %><%")
	}

	contentType := typeHTML
	dynamicType := ""
	if v, ok := t.tag.Attrs.Get("type"); ok {
		if v.Expr {
			dynamicType = stringCode(v)
		} else {
			contentType = v.Text
		}
	}

	if _, _, err := t.literal("charset"); err != nil {
		return err
	}
	httpCharset := charset.MapCharsetToHTTP(t.c.w.Encoding())

	encType := contentType
	if dynamicType == "" {
		t.print("%><%@ page contentType=\"", contentType, ";charset=", httpCharset, "\" %><%")
	} else {
		t.print("response.setContentType(", dynamicType, "+\";charset=", httpCharset, "\");")
		encType = dynamicType
	}

	if err := httpStatus(t, numberSlot{name: "httpstatus", min: 1, max: 2147483647}, ""); err != nil {
		return err
	}

	session, ok, err := t.flag("session")
	if err != nil {
		return err
	}
	if ok && !session {
		t.print("%><%@ page session=\"false\"%><%")
	}

	personalized, ok, err := t.flag("personalized")
	if err != nil {
		return err
	}
	if ok && personalized {
		t.print("response.setHeader(TemplateConstants.PERSONALIZED_HEADER, \"1\");")
	}

	enc, ok, err := t.enum("encoding", "on", "off", "html", "xml", "wml")
	if err != nil {
		return err
	}
	if ok && enc != "on" {
		encType = contentEncodingTypes[enc]
	}

	if dynamicType != "" && encType == dynamicType {
		t.print("setEncodingType(", encType, ");")
	} else {
		t.print("setEncodingType(", javaString(encType), ");")
	}
	return nil
}

var styleName = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*|-?[0-9]+)$`)

func compilePrint(t *tagCtx) error {
	encode := true
	encodings := ""
	if s, ok, err := t.literal("encoding"); err != nil {
		return err
	} else if ok {
		switch strings.ToLower(s) {
		case "on", "html":
		case "off":
			encode = false
		default:
			if strings.TrimSpace(s) == "" {
				return malformed("Attribute %q in %s has an invalid value.", "encoding", t.name())
			}
			encodings = s
		}
	}

	value, err := t.requireExpr("value")
	if err != nil {
		return err
	}

	format := "null"
	style, hasStyle, err := t.literal("style")
	if err != nil {
		return err
	}
	if hasStyle {
		if !styleName.MatchString(strings.TrimSpace(style)) {
			return malformed("Attribute %q in %s has a wrong value.", "style", t.name())
		}
		format = "Integer.valueOf(" + strings.TrimSpace(style) + ")"
	} else if f, ok := t.value("formatter"); ok {
		format = f
	}

	symbols := "null"
	if s, ok := t.value("symbols"); ok {
		symbols = s
	}

	padding, hasPadding, err := t.number(numberSlot{
		name:     "padding",
		min:      -2147483648,
		max:      2147483647,
		fraction: true,
	})
	if err != nil {
		return err
	}

	t.print("{String value = null;try{",
		"value=context.getFormattedValue(", value, ",", format, ",", symbols, ");")
	if hasPadding {
		t.print("value=pad(value,", padding.code, ");")
	}
	t.print("}catch(Exception e){value=null;",
		"Logger.error(this,\"ISPRINT has an invalid expression. Returning empty string. Line: {")
	t.printf("%d}\",e);}", t.line())
	t.print("if (value==null) value=\"\";")
	switch {
	case encodings != "":
		t.print("value = encodeString(value,", javaString(encodings), ");")
	case encode:
		t.print("value = encodeString(value);")
	}
	t.print("out.write(value);}")
	return nil
}

// textParams is the number of positional parameters ISTEXT passes on.
const textParams = 10

func compileText(t *tagCtx) error {
	key, err := t.requireValue("key")
	if err != nil {
		return err
	}

	encoding := `""`
	if s, ok, err := t.literal("encoding"); err != nil {
		return err
	} else if ok {
		switch strings.ToLower(s) {
		case "on", "html":
		case "off":
			encoding = "null"
		default:
			if strings.TrimSpace(s) == "" {
				return malformed("Attribute %q in %s has an invalid value.", "encoding", t.name())
			}
			encoding = javaString(s)
		}
	}

	args := []string{key, encoding, orNull(t.raw("locale"))}
	for i := 0; i < textParams; i++ {
		args = append(args, orNull(t.raw("parameter"+strconv.Itoa(i))))
	}
	t.print("{out.write(localizeISText(", strings.Join(args, ","), "));}")
	return nil
}

func orNull(code string, ok bool) string {
	if !ok {
		return "null"
	}
	return code
}

// compileSelect writes a SELECT element whose options come from an
// iterator.
func compileSelect(t *tagCtx) error {
	nameAttr, ok := t.tag.Attrs.Get("name")
	if !ok {
		return t.missing("name")
	}
	iterator, err := t.requireLiteral("iterator")
	if err != nil {
		return err
	}
	condition, hasCondition, err := t.expr("condition")
	if err != nil {
		return err
	}
	value, err := t.requireExpr("value")
	if err != nil {
		return err
	}
	description, err := t.requireExpr("description")
	if err != nil {
		return err
	}
	enc, ok, err := t.enum("encoding", "on", "off")
	if err != nil {
		return err
	}
	encode := !ok || enc == "on"

	disabled := false
	if v, ok := t.tag.Attrs.Get("disabled"); ok && !v.Expr {
		disabled = strings.EqualFold(v.Text, "true")
	}
	class := ""
	if v, ok := t.tag.Attrs.Get("class"); ok && !v.Expr {
		class = v.Text
	}

	name := htmlAttrText(nameAttr.Text)
	if nameAttr.Expr {
		name = `"+context.getFormattedValue(` + nameAttr.Text + `,null)+"`
	}
	suffix := `>`
	if disabled {
		suffix = ` disabled=\"disabled\">`
	}

	t.print("{out.write(\"<\");",
		`out.write("SELECT class=\"`, htmlAttrText(class), `\" NAME=\"`, name, `\"`, suffix, `");`)
	t.print("String value, description;",
		"while (loop(", javaString(iterator), ",null)){",
		"out.write(\"<\");",
		"out.write(\"OPTION \");")
	if hasCondition {
		t.print("_boolean_result=false;",
			"try {",
			"_boolean_result=((Boolean)(", condition, ")).booleanValue();",
			"} catch (Exception e) {",
			"Logger.debug(this,\"Boolean expression in line {} could not be evaluated. False returned. Consider using the 'isDefined' ISML function.\",")
		t.printf("%d,e);", t.line())
		t.print("}", "if (_boolean_result) {", "out.write(\"SELECTED \");", "}")
	}
	t.print(`out.print("VALUE =\"");`,
		"value = context.getFormattedValue(", value, ",null);",
		"description = context.getFormattedValue(", description, ",null);")
	if encode {
		t.print("value = encodeString(value);", "description = encodeString(description);")
	}
	t.print(`out.write(value + "\">");`,
		`out.write(description + "</OPTION>");`,
		"}",
		`out.write("</SELECT>");`,
		"}")
	return nil
}

// htmlAttrText escapes s for use inside a double-quoted HTML attribute that
// is itself inside a Java string literal.
func htmlAttrText(s string) string {
	q := javaString(strings.ReplaceAll(s, `"`, "&quot;"))
	return q[1 : len(q)-1]
}
