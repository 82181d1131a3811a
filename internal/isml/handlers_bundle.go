package isml

import (
	"strconv"
	"strings"
)

// A file bundle collects resources with ISFILE, processes them once and
// renders each result with the body of its ISRENDER. The generated blocks
// only balance in the order ISFILEBUNDLE, ISFILE*, ISRENDER, /ISRENDER,
// /ISFILEBUNDLE.

const bundleResponse = "(com.intershop.beehive.core.capi.request.ServletResponse) response"

func compileFileBundle(t *tagCtx) error {
	name, err := t.requireValue("name")
	if err != nil {
		return err
	}
	processors, err := t.requireLiteral("processors")
	if err != nil {
		return err
	}

	t.print("{ ISFileBundle filebundle = new ISFileBundle(", name, ");",
		"List<? extends Resource> resources = null;\n",
		"boolean processesResources = (filebundle.isCheckSource() || !filebundle.hasCachedResources());",
		"if (processesResources) {",
		"filebundle.setDefaultProcessors(new String[]{", splitProcessors(processors), "});")
	return nil
}

func compileFileBundleEnd(t *tagCtx) error {
	line := strconv.Itoa(t.line())
	t.print("resources = filebundle.process();\n",
		"} else {",
		"resources = filebundle.getChachedResources();\n",
		"}",
		"for(Resource resource : resources) {\n",
		"PipelineDictionary newDict = context.createPipelineDictionary();\n",
		"newDict.put(\"File\", resource);\n",
		"for(TagParameter parameter : parameters) {",
		"newDict.put(parameter.getKey(), parameter.getValue());",
		"}",
		"context.pushPipelineDictionary(newDict);",
		"renderer.processOpenTag(pageContext, ", bundleResponse, ", this, ", line, ");\n",
		"renderer.processCloseTag(pageContext, ", bundleResponse, ", this, ", line, ");\n",
		"context.popPipelineDictionary();",
		"}}")
	return nil
}

func compileFile(t *tagCtx) error {
	name, err := t.requireValue("name")
	if err != nil {
		return err
	}
	processors, hasProcessors, err := t.literal("processors")
	if err != nil {
		return err
	}

	t.print("{\nString fileName = ", name, ";\n",
		"String[] processors = null;")
	if hasProcessors {
		t.print("processors = new String[]{", splitProcessors(processors), "};")
	}
	t.print("filebundle.addResource(fileName, processors);\n",
		"}\n")
	return nil
}

// compileRender leaves the processing branch opened by ISFILEBUNDLE and
// starts an anonymous renderer whose body is the content up to /ISRENDER.
func compileRender(t *tagCtx) error {
	t.print("}",
		"TagParameter[] parameters = new TagParameter[] {\n", tagParameters(t), "};",
		"\nCustomTag renderer = new CustomTag() {{\n",
		"isStrict = true;\n",
		"tagName = \"FileBundleRenderer\";\n",
		"}\n",
		"public void processOpenTag(PageContext pageContext, com.intershop.beehive.core.capi.request.ServletResponse response, AbstractTemplate template, int line) throws IOException, ServletException {\n",
		"ServletContext application = pageContext.getServletContext();\n",
		"ServletConfig config = pageContext.getServletConfig();\n",
		"JspWriter out = pageContext.getOut();\n",
		"Object page = template;\n",
		"TemplateExecutionConfig context = getTemplateExecutionConfig();")
	return nil
}

func compileRenderEnd(t *tagCtx) error {
	t.print("\n}};\n",
		"if (processesResources) {")
	return nil
}

// splitProcessors turns a comma separated processor list into the elements
// of a Java String array initializer.
func splitProcessors(list string) string {
	parts := strings.Split(list, ",")
	for i, p := range parts {
		parts[i] = javaString(strings.TrimSpace(p))
	}
	return strings.Join(parts, ",")
}
