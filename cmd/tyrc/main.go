// Command tyrc compiles tyr source files to LLVM IR or native object code.
//
// Grounded on the teacher's cmd driver (vslc/src/main.go): read source, lex/parse,
// generate, then either dump the module or emit an object file, printing one fatal
// diagnostic and exiting non-zero on any stage's error. Flag parsing itself is not
// grounded on the teacher (vslc hand-rolls util.ParseArgs); it uses
// github.com/urfave/cli/v2, the one real CLI framework present anywhere in the example
// pack (gaarutyunov-guix/go.mod).
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"tyrc/internal/ast"
	"tyrc/internal/codegen"
	"tyrc/internal/diag"
	"tyrc/internal/parser"
)

func main() {
	app := &cli.App{
		Name:      "tyrc",
		Usage:     "compile a tyr source file to LLVM IR or a native object file",
		UsageText: "tyrc [options] <source-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output file path (defaults to <source>.ll or <source>.o)",
			},
			&cli.IntFlag{
				Name:    "threads",
				Aliases: []string{"t"},
				Value:   1,
				Usage:   "number of goroutines generating function bodies concurrently",
			},
			&cli.BoolFlag{
				Name:  "emit-obj",
				Usage: "emit a native object file instead of textual LLVM IR",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "dump the generated IR to stdout, and log per-stage timing and skipped functions",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tyrc: %s\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one source file, got %d", c.NArg())
	}
	srcPath := c.Args().Get(0)
	verbose := c.Bool("verbose")

	var src []byte
	var root *ast.Node
	var gen *codegen.Generator

	if err := stage(verbose, "read", func() (err error) {
		src, err = os.ReadFile(srcPath)
		return err
	}); err != nil {
		return fmt.Errorf("could not read source file: %w", err)
	}

	if err := stage(verbose, "parse", func() (err error) {
		root, err = parser.Parse(string(src))
		return err
	}); err != nil {
		return reportFatal(err)
	}

	gen = codegen.New(srcPath, codegen.Options{
		Threads: c.Int("threads"),
		Verbose: verbose,
	})
	defer gen.Dispose()

	if err := stage(verbose, "generate", func() error {
		return gen.Generate(root)
	}); err != nil {
		return reportFatal(err)
	}

	if verbose {
		fmt.Println(gen.Module().String())
	}

	out := c.String("out")
	if c.Bool("emit-obj") {
		if out == "" {
			out = trimExt(srcPath) + ".o"
		}
		if err := stage(verbose, "emit", func() error {
			return codegen.EmitObject(gen.Module(), out)
		}); err != nil {
			return fmt.Errorf("could not emit object file: %w", err)
		}
		return nil
	}

	if out == "" {
		out = trimExt(srcPath) + ".ll"
	}
	return stage(verbose, "emit", func() error {
		return os.WriteFile(out, []byte(gen.Module().String()), 0644)
	})
}

// stage runs fn and, when verbose, logs its wall-clock duration to stderr
// (SPEC_FULL.md §6's "log per-stage timing"), in the teacher's "tyrc: note: ..." style.
func stage(verbose bool, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if verbose {
		fmt.Fprintf(os.Stderr, "tyrc: note: stage %q took %s\n", name, time.Since(start))
	}
	return err
}

// reportFatal returns err unchanged: a diag.Fatal already renders in its "kind: line:col:
// message" shape through its Error method, and any other error is passed through as is
// (spec.md §7).
func reportFatal(err error) error {
	if f, ok := err.(*diag.Fatal); ok {
		return f
	}
	return err
}

func trimExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
