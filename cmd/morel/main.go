// Command morel is the thin REPL host around internal/session: it owns
// no language logic of its own, only stdin/stdout plumbing, prompt
// printing, and the exit-code mapping spec §6 specifies.
//
// Grounded on the teacher's cmd/funxy/main.go (no flag library; this
// host reads no command-line arguments at all, takes its program only
// from stdin, and is configured through MOREL_CONFIG) and internal/evaluator/
// builtins_term.go's isatty-gated prompt logic, generalised from
// output-buffering to deciding whether to print a prompt at all.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/GavinRay97/morel/internal/catalog"
	"github.com/GavinRay97/morel/internal/catalog/sqlcatalog"
	"github.com/GavinRay97/morel/internal/config"
	"github.com/GavinRay97/morel/internal/eval"
	"github.com/GavinRay97/morel/internal/parser"
	"github.com/GavinRay97/morel/internal/session"
	"github.com/GavinRay97/morel/internal/typeresolve"
	"github.com/GavinRay97/morel/internal/unify"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Default()
	if path := os.Getenv("MOREL_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		cfg = loaded
	}

	var cat catalog.ExternalCatalog
	if cfg.CatalogDSN != "" {
		sc, err := sqlcatalog.Open(cfg.CatalogDSN)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		defer sc.Close()
		cat = sc
	}

	sess, err := session.NewSession(cfg, cat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	prompt := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	return repl(sess, os.Stdin, os.Stdout, os.Stderr, prompt)
}

// repl reads `;`-terminated statements from in, one at a time,
// accumulating lines until a statement boundary, driving each through
// sess.Eval, and writing the REPL wire surface to out. It returns the
// process exit code spec §6 specifies: 0 on a clean run to EOF, 1 on
// the first unhandled evaluator exception, 2 on the first parse or
// type error.
func repl(sess *session.Session, in io.Reader, out, errOut io.Writer, prompt bool) int {
	scanner := bufio.NewScanner(in)
	var buf strings.Builder
	for {
		if prompt {
			if buf.Len() == 0 {
				fmt.Fprint(out, "- ")
			} else {
				fmt.Fprint(out, "= ")
			}
		}
		if !scanner.Scan() {
			break
		}
		buf.WriteString(scanner.Text())
		buf.WriteByte('\n')
		if !strings.Contains(buf.String(), ";") {
			continue
		}
		chunk := buf.String()
		buf.Reset()

		res := sess.Eval("<stdin>", chunk)
		fmt.Fprint(out, res.WireLines())
		for _, w := range res.Warnings {
			fmt.Fprintln(errOut, w)
		}
		if res.State == session.Failed {
			fmt.Fprintln(errOut, res.Err)
			if code := exitCodeFor(res.Err); code != 0 {
				return code
			}
		}
	}
	if strings.TrimSpace(buf.String()) != "" {
		fmt.Fprintln(errOut, "ParseError: unterminated statement at end of input")
		return 2
	}
	return 0
}

// exitCodeFor classifies a Failed Result's error into spec §6's exit
// codes: 2 for anything a parser or type-checker stage raised, 1 for
// anything the evaluator raised at runtime.
func exitCodeFor(err error) int {
	switch err.(type) {
	case *parser.ParseError,
		*unify.TypeMismatch, *unify.OccursCheck, *unify.EqualityRequired,
		*typeresolve.UnboundIdentifier, *typeresolve.ArityMismatch:
		return 2
	case *eval.RuntimeError, *eval.Raised:
		return 1
	default:
		return 1
	}
}
