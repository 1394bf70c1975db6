package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"blockpad/pkg/blocks"
	berrors "blockpad/pkg/errors"
	"blockpad/pkg/parser"
	"blockpad/pkg/session"
	"blockpad/pkg/source"
)

func main() {
	var (
		showOutline = flag.Bool("outline", true, "print the visual block outline")
		showSource  = flag.Bool("print", false, "print the regenerated source text")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file>\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "blockpad: %v\n", err)
		os.Exit(1)
	}
	src := source.FromFile(flag.Arg(0), string(data))

	s := session.New()
	s.SetText(src.Content)
	if errs := s.Errors(); len(errs) > 0 {
		berrors.DisplayErrors(src.Content, errs)
		// Keep going: the partial tree still renders.
	}

	if *showOutline {
		dumpOutline(os.Stdout, s.Render(), 0)
	}
	if *showSource {
		p := parser.NewPrinter()
		fmt.Print(p.Print(s.Program()))
	}
}

func dumpOutline(w *os.File, b *blocks.Block, depth int) {
	if b == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	switch b.Kind {
	case blocks.Label:
		fmt.Fprintf(w, "%slabel %q\n", indent, b.Label)
	case blocks.Field:
		fmt.Fprintf(w, "%sfield %q\n", indent, b.Text)
	case blocks.Toggle:
		fmt.Fprintf(w, "%stoggle %v\n", indent, b.On)
	case blocks.Opaque:
		fmt.Fprintf(w, "%sopaque %q\n", indent, b.Text)
	case blocks.Widget:
		fmt.Fprintf(w, "%swidget %q\n", indent, b.Label)
	case blocks.Spacer:
		fmt.Fprintf(w, "%sspacer\n", indent)
	default:
		fmt.Fprintf(w, "%s%s\n", indent, b.Kind)
	}
	for _, c := range b.Children {
		dumpOutline(w, c, depth+1)
	}
}
