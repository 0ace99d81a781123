// ----------------------------------------------------------------------------
// FILE: cmd/frontend/main.go
// ----------------------------------------------------------------------------
// Entry point for the front-end binary: lex, parse, build the symbol table,
// elaborate, then dump the elaborated package and its symbol table as a
// commented tree to the output file.
// ----------------------------------------------------------------------------

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/amoghasbhardwaj/langfront/elabast"
	"github.com/amoghasbhardwaj/langfront/elaborate"
	"github.com/amoghasbhardwaj/langfront/lexer"
	"github.com/amoghasbhardwaj/langfront/parser"
)

func main() {
	app := &cli.App{
		Name:  "frontend",
		Usage: "lex, parse, and elaborate a source file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "source file to compile",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file",
				Value:   "output.o",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	input := c.String("input")
	output := c.String("output")

	src, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrapf(err, "reading %s", input)
	}

	ident := packageIdent(input)
	pkg, err := compile(ident, string(src))
	if err != nil {
		return err
	}

	dump := renderDump(pkg)
	if err := os.WriteFile(output, []byte(dump), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", output)
	}
	return nil
}

// packageIdent derives a package identifier from an input file path, per
// spec §6: the base name with its extension stripped.
func packageIdent(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// compile runs the full lex -> parse -> build -> elaborate pipeline.
func compile(ident, src string) (*elabast.Package, error) {
	lex := lexer.NewFromString(src)
	p, err := parser.New(lex)
	if err != nil {
		return nil, errors.Wrap(err, "parser")
	}
	rawPkg, err := p.ParsePackage(ident)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	table, err := elaborate.NewTableBuilder().Build(rawPkg)
	if err != nil {
		return nil, errors.Wrap(err, "build symbol table")
	}

	elaborated, err := elaborate.NewElaborator().Elaborate(rawPkg, table)
	if err != nil {
		return nil, errors.Wrap(err, "elaborate")
	}
	return elaborated, nil
}
