// Package main provides the command line compiler for ISML templates.
//
// Usage:
//
//	isml compile <srcdir> <destdir>   Compile a template tree to JSP pages
//	isml compile page.isml [page.jsp] Compile a single template
//	isml check [path...]              Check templates without writing pages
//	isml help                         Show help
//
// Examples:
//
//	isml compile templates/default build/jsp
//	isml check ./...
//	isml check -encoding text/xml=UTF-8 feed.isml
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

const usage = `isml - compiler from ISML templates to JSP pages

Usage:
  isml <command> [options] [path...]

Commands:
  compile     Compile templates to JSP pages
  check       Compile templates without writing pages
  version     Print version information
  help        Show this help message

Options:
  -v                      Verbose output
  -log <file>             Append debug log to file
  -config <file>          Read charset settings from a properties file
  -contentencoding <cs>   Default output charset
  -encoding <mime=cs>     Output charset for a mime type (repeatable)
  -sourceencoding <cs>    Charset of templates that declare none
  -j <n>                  Parallel compilations (compile only)
  -force                  Recompile up to date pages (compile only)

Examples:
  isml compile templates/default build/jsp     Compile every language directory
  isml compile -v -j 4 src/templates out       Verbose, four at a time
  isml compile page.isml                       Writes page.jsp next to the template
  isml check ./...                             Check all templates recursively
  isml check -encoding text/xml=UTF-8 feed.isml
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "compile":
		if err := runCompile(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "check":
		if err := runCheck(args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("isml version %s\n", version)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}
