// Package isml compiles escaped ISML template source into a JSP page.
//
// The pipeline runs token by token:
//   - [Lexer]: splits source into literal text and ISML tags
//   - [Validator]: keeps the stack of open blocks and rejects misplaced tags
//   - [Compiler]: dispatches each tag to its handler and writes the scriptlet
//   - [CompactingWriter]: writes the page, optionally compacting template text
//
// Input is expected to come from charset.Escape, so the lexer only ever sees
// 7-bit text; escapes are decoded again in the tokens it returns.
package isml
