package isml

// Conditionals and loops.

func compileIf(t *tagCtx) error {
	cond, err := t.requireExpr("condition")
	if err != nil {
		return err
	}
	if t.tag.Kind == TagElseIf {
		t.print("} else {")
	}
	t.print("_boolean_result=false;",
		"try {",
		"_boolean_result=((Boolean)(", cond, ")).booleanValue();",
		"} catch (Exception e) {",
		"Logger.debug(this,\"Boolean expression in line {} could not be evaluated. False returned. Consider using the 'isDefined' ISML function.\",")
	t.printf("%d,e);", t.line())
	t.print("}", "if (_boolean_result) {")
	return nil
}

func compileElse(t *tagCtx) error {
	t.print("} else {")
	return nil
}

// compileIfEnd closes the ISIF and one extra brace per ISELSEIF, each of
// which opened a nested block inside the previous else.
func compileIfEnd(t *tagCtx) error {
	for _, f := range t.drained {
		if f.Kind == TagElseIf {
			t.print("}")
		}
	}
	t.print("}")
	return nil
}

func compileLoop(t *tagCtx) error {
	iterator, err := t.requireLiteral("iterator")
	if err != nil {
		return err
	}
	alias, err := optionalLiteral(t, "alias")
	if err != nil {
		return err
	}
	counter, err := optionalLiteral(t, "counter")
	if err != nil {
		return err
	}
	t.print("while (loop(", javaString(iterator), ",", alias, ",", counter, ")) {")
	return nil
}

func compileBlockEnd(t *tagCtx) error {
	t.print("}")
	return nil
}

// The loop tags also check the runtime loop stack: nesting proves a lexical
// ISLOOP, not that one is executing on every path that reaches the tag.

func compileBreak(t *tagCtx) error {
	t.print("if (getLoopStack().isEmpty()) {",
		"Logger.error(this,\"ISBREAK occured outside ISLOOP. Line: {}\",")
	t.printf("%d);", t.line())
	t.print("}else{",
		"getLoopStack().pop();",
		"break;",
		"}")
	return nil
}

func compileNext(t *tagCtx) error {
	t.print("if (getLoopStack().isEmpty()){",
		"Logger.error(this,\"ISNEXT occured outside ISLOOP. Line: {}\",")
	t.printf("%d);", t.line())
	t.print("}else{",
		"LoopStackEntry stackEntry = getLoopStack().peek();",
		"if (stackEntry.getIterator().hasNext()){",
		"stackEntry.setLoopObject(stackEntry.getIterator().next());",
		"}else{",
		"continue;",
		"}}")
	return nil
}

// optionalLiteral returns a quoted literal attribute or "null".
func optionalLiteral(t *tagCtx, attr string) (string, error) {
	s, ok, err := t.literal(attr)
	if err != nil || !ok {
		return "null", err
	}
	return javaString(s), nil
}
