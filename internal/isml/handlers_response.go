package isml

import "fmt"

// Tags that talk to the HTTP response: status, redirects, caching headers,
// cookies, binary bodies and scoped variables.

// httpStatus emits the X-IS-HTTPResponseStatus header for slot. A literal is
// checked against the slot's range here; every emitted value is checked
// again at runtime. Nothing is written when the attribute is absent and there
// is no default.
func httpStatus(t *tagCtx, slot numberSlot, defaultCode string) error {
	n, ok, err := t.number(slot)
	if err != nil {
		return err
	}
	code := defaultCode
	if ok {
		code = n.code
	}
	if code == "" {
		return nil
	}
	t.print("int _httpStatusCode = ", code, ";\n")
	t.printf("if (_httpStatusCode < %d || _httpStatusCode > %d) \n", slot.min, slot.max)
	t.print("{\n",
		"    throw new ServletException(\n",
		"      \"Redirection error in template \"+getTemplateExecutionConfig().getTemplateName()+\". \" + \n")
	t.printf("      \"Unsupported HTTP status code \" + _httpStatusCode + \". Supported interval [%d, %d]\");\n", slot.min, slot.max)
	t.print("}",
		"response.setHeader(\"X-IS-HTTPResponseStatus\", String.valueOf(_httpStatusCode));")
	return nil
}

func compileRedirect(t *tagCtx) error {
	location, err := t.requireValue("location")
	if err != nil {
		return err
	}
	if err := httpStatus(t, numberSlot{name: "httpstatus", min: 300, max: 399}, "302"); err != nil {
		return err
	}
	t.print("response.setHeader(\"Location\", ", location, ");")
	return nil
}

const (
	cacheServletResponse = "(String)((com.intershop.beehive.core.capi.request.ServletResponse)response)"
	cacheForbidden       = `"00"`
)

// cacheBounds holds the literal ranges of ISCACHE's hour and minute per
// cache type.
var cacheBounds = map[string]struct{ minute, hour int64 }{
	"daily":     {minute: 59, hour: 23},
	"relative":  {minute: 2147483647, hour: 2147483647},
	"forbidden": {minute: 2147483647, hour: 2147483647},
}

func compileCache(t *tagCtx) error {
	kind, ok, err := t.enum("type", "daily", "relative", "forbidden")
	if err != nil {
		return err
	}
	if !ok {
		return t.missing("type")
	}

	bounds := cacheBounds[kind]
	t.print("{")
	minute, err := cacheTime(t, numberSlot{name: "minute", max: bounds.minute, long: true}, "_cacheMinute")
	if err != nil {
		return err
	}
	hour, err := cacheTime(t, numberSlot{name: "hour", max: bounds.hour, long: true}, "_cacheHour")
	if err != nil {
		return err
	}

	t.print("try{",
		"String currentCacheTime = ", cacheServletResponse, ".getHeaderValue(TemplateConstants.PAGECACHE_HEADER);")
	switch kind {
	case "daily":
		t.print("if (currentCacheTime!=null && \"00\".equals(currentCacheTime)) {Logger.debug(this, \"ISCACHE declaration is ignored since a prior 'forbidden'.\");}",
			"else {",
			"long time = System.currentTimeMillis()/1000;",
			"long minute=", minute, ";",
			"if (minute <0) minute=0;",
			"if (minute >59) minute=59;",
			"long hour=", hour, ";",
			"if (hour <0)  hour=0;",
			"if (hour >23) hour=23;",
			"Calendar calendar = new GregorianCalendar();",
			"calendar.set(Calendar.HOUR_OF_DAY,Long.valueOf(hour).intValue());",
			"calendar.set(Calendar.MINUTE,Long.valueOf(minute).intValue());",
			"calendar.set(Calendar.SECOND,0);",
			"calendar.set(Calendar.MILLISECOND,0);",
			"long expireTime = calendar.getTime().getTime()/1000;",
			"if (expireTime < time) { expireTime += 86400; }",
			"time = expireTime;")
		cacheMerge(t)
	case "relative":
		t.print("if (currentCacheTime!=null && \"00\".equals(currentCacheTime)) {Logger.debug(this, \"ISCACHE declaration is ignored since a prior 'forbidden'.\");}",
			"else {",
			"long time = System.currentTimeMillis()/1000;",
			"long minute=", minute, ";",
			"if (minute <0) minute=0;",
			"long hour=", hour, ";",
			"if (hour <0)  hour=0;",
			"time += 60*minute+3600*hour;")
		cacheMerge(t)
	case "forbidden":
		t.print("if (currentCacheTime!=null && !\"00\".equals(currentCacheTime)) {Logger.debug(this, \"ISCACHE 'forbidden' overwrites prior caching declaration.\");}",
			"response.setHeader(TemplateConstants.PAGECACHE_HEADER, ", cacheForbidden, ");")
	}
	t.print("}catch(Exception e){",
		"Logger.error(")
	t.printf("this,\"ISCACHE failed. Line: {%d}\",e);", t.line())
	t.print("}}")
	return nil
}

// cacheTime resolves an optional hour or minute attribute, defaulting to 0.
// An expression is stored in variable behind a guard that aborts the page
// when the value leaves the slot's range. The guard is emitted outside the
// try block so the exception is not swallowed by its catch.
func cacheTime(t *tagCtx, slot numberSlot, variable string) (string, error) {
	n, ok, err := t.number(slot)
	if err != nil || !ok {
		return "0", err
	}
	if n.literal {
		return n.code, nil
	}
	t.print(typedRangeGuard("long", variable, n.code, "cache "+slot.name, slot.min, slot.max))
	return variable, nil
}

// cacheMerge keeps the shorter of the computed expiry in time and any expiry
// set earlier, and closes the else block opened for the forbidden check.
func cacheMerge(t *tagCtx) {
	t.print("String extCacheTime = ", cacheServletResponse, ".getHeaderValue(TemplateConstants.EXT_PAGECACHE_HEADER);",
		"Long oldTime=(currentCacheTime!=null)?Long.valueOf(currentCacheTime):(extCacheTime!=null)?Long.valueOf(extCacheTime):null;",
		"if (oldTime!=null && oldTime<time) {",
		"Logger.debug(this, \"ISCACHE declaration is ignored since a prior declaration with a smaller caching period.\");",
		"response.setHeader(TemplateConstants.PAGECACHE_HEADER, String.valueOf(oldTime));",
		"}",
		"else if (oldTime!=null && oldTime>time) {Logger.debug(this, \"ISCACHE declaration reduces a caching period set by a prior declaration.\");}",
		"if (oldTime==null || oldTime>time){",
		"if (time > Integer.MAX_VALUE){  time = Integer.MAX_VALUE;} ",
		"response.setHeader(TemplateConstants.PAGECACHE_HEADER, String.valueOf(time));",
		"}}")
}

func compileCacheKey(t *tagCtx) error {
	keyword, hasKeyword := t.value("keyword")
	object, hasObject := t.raw("object")
	if !hasKeyword && !hasObject {
		e := malformed("Missing %q or %q attribute in %s.", "keyword", "object", t.name())
		e.Hint = "add keyword=\"...\" or object=\"#...#\""
		return e
	}

	t.print("{")
	if hasObject {
		t.print("Object key_obj = ", object, "; ")
	}
	if hasKeyword {
		t.print("NamingMgr.get(PageCacheMgr.class).getKeywords().add(", keyword, ");")
	}
	if hasObject {
		t.print("NamingMgr.get(PageCacheMgr.class).registerObject(key_obj);")
	}
	t.print("}")
	return nil
}

func compileCookie(t *tagCtx) error {
	name, err := t.requireValue("name")
	if err != nil {
		return err
	}
	value, err := t.requireValue("value")
	if err != nil {
		return err
	}
	comment, hasComment := t.value("comment")
	domain, hasDomain := t.value("domain")
	path, hasPath := t.value("path")

	maxAge, hasMaxAge, err := t.number(numberSlot{name: "maxage", min: -2147483648, max: 2147483647})
	if err != nil {
		return err
	}
	version, hasVersion, err := t.number(numberSlot{name: "version", min: 0, max: 1})
	if err != nil {
		return err
	}

	secure := "false"
	if s, ok, err := t.enum("secure", "on", "off"); err != nil {
		return err
	} else if ok && s == "on" {
		secure = "true"
	}

	t.print("{")
	versionCode := "0"
	if hasVersion {
		versionCode = version.code
		if !version.literal {
			t.print(rangeGuard("_cookieVersion", version.code, "cookie version", 0, 1))
			versionCode = "_cookieVersion"
		}
	}
	t.print("try{",
		"Cookie cookie=new Cookie(", name, ",", value, ");")
	if hasComment {
		t.print("cookie.setComment(", comment, ");")
	}
	if hasDomain {
		t.print("cookie.setDomain(", domain, ");")
	}
	if hasPath {
		t.print("cookie.setPath(", path, ");")
	}
	if hasMaxAge {
		t.print("cookie.setMaxAge(", maxAge.code, ");")
	}
	t.print("cookie.setVersion(", versionCode, ");",
		"cookie.setSecure(", secure, ");",
		"response.addCookie(cookie);",
		"}catch(Exception e){",
		"Logger.error(")
	t.printf("this,\"ISCOOKIE could not be set. Line: {%d}\",e);", t.line())
	t.print("}}")
	return nil
}

const binaryResponse = "(com.intershop.beehive.core.capi.request.ServletResponse)response"

func compileBinary(t *tagCtx) error {
	source, err := t.exclusive("file", "stream", "resource", "bytes")
	if err != nil {
		return err
	}

	var call string
	switch source {
	case "file":
		file, _ := t.value("file")
		call = fmt.Sprintf("processBinaryOutputFile(%s,new File(%s));", binaryResponse, file)
	case "stream":
		stream, err := t.requireExpr("stream")
		if err != nil {
			return err
		}
		call = fmt.Sprintf("processBinaryOutputStream(%s,((java.io.InputStream)(%s)));", binaryResponse, stream)
	case "resource":
		resource, _ := t.value("resource")
		call = fmt.Sprintf("processBinaryOutputResource(%s,%s);", binaryResponse, resource)
	case "bytes":
		bytes, err := t.requireExpr("bytes")
		if err != nil {
			return err
		}
		call = fmt.Sprintf("processBinaryOutputBytes(%s,((byte[])(%s)));", binaryResponse, bytes)
	}

	t.print("{")
	if v, ok := t.tag.Attrs.Get("downloadname"); ok {
		filename := htmlAttrText(v.Text)
		if v.Expr {
			filename = `" + context.getFormattedValue(` + v.Text + `,null) + "`
		}
		t.print(`response.setHeader("Content-Disposition", "attachment; filename=\"`, filename, `\"");`)
	}
	t.print(call, "}")
	return nil
}

func compileSet(t *tagCtx) error {
	value, ok := t.raw("value")
	if !ok {
		return t.missing("value")
	}
	name, err := t.requireLiteral("name")
	if err != nil {
		return err
	}
	scope, ok, err := t.enum("scope", "request", "session")
	if err != nil {
		return err
	}
	if !ok {
		return t.missing("scope")
	}

	t.print("{Object temp_obj = (", value, "); ")
	switch scope {
	case "request":
		t.print("getPipelineDictionary().put(", javaString(name), ", temp_obj);")
	case "session":
		t.print("((SessionMgr) NamingMgr.getInstance().lookupManager(SessionMgr.REGISTRY_NAME)).getCurrentSession().putObject(",
			javaString("T_"+name), ", temp_obj);")
	}
	t.print("}")
	return nil
}
