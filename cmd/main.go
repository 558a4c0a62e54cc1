package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"go.kscope.dev/pkg"
)

const (
	prompt      = "ready> "
	historyFile = ".kscope_history"
)

func main() {
	emit := flag.String("emit", "ir", "what to print for each construct: ir or ast")
	output := flag.String("o", "", "write the final LLVM module to this file")
	quiet := flag.Bool("q", false, "suppress info diagnostics")
	flag.Usage = usage
	flag.Parse()

	mode, err := parseEmitMode(*emit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	sink := kscope.NewStdSink()
	sink.Quiet = *quiet

	if flag.NArg() == 0 {
		os.Exit(repl(mode, sink, *output))
	}

	os.Exit(compileFiles(flag.Args(), mode, sink, *output))
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  kscope [flags]              Start the REPL.
  kscope [flags] file.ks ...  Compile the given files into one module.

Flags:
`)
	flag.PrintDefaults()
}

func parseEmitMode(s string) (kscope.EmitMode, error) {
	switch strings.ToLower(s) {
	case "ir":
		return kscope.EmitIR, nil
	case "ast":
		return kscope.EmitAST, nil
	default:
		return 0, errors.Errorf("unknown emit mode %q", s)
	}
}

func compileFiles(files []string, mode kscope.EmitMode, sink *kscope.WriterSink, output string) int {
	var out io.Writer = io.Discard
	if mode == kscope.EmitAST {
		out = os.Stdout
	}

	c := kscope.NewCompiler(
		kscope.WithOutput(out),
		kscope.WithDiagnostics(sink),
		kscope.WithEmitMode(mode),
	)

	for _, file := range files {
		if err := c.Compile(file); err != nil {
			sink.Report(kscope.SeverityFatal, err.Error())
			return 1
		}
	}

	if mode == kscope.EmitAST {
		return 0
	}

	if err := writeModule(c, output, os.Stdout); err != nil {
		sink.Report(kscope.SeverityFatal, err.Error())
		return 1
	}

	return 0
}

func repl(mode kscope.EmitMode, sink *kscope.WriterSink, output string) int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	c := kscope.NewCompiler(
		kscope.WithOutput(os.Stdout),
		kscope.WithDiagnostics(sink),
		kscope.WithEmitMode(mode),
	)

	for {
		line, err := ln.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			// io.EOF on Ctrl+D
			break
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		ln.AppendHistory(line)
		c.Eval(line)
	}

	fmt.Println()
	if output == "" {
		return 0
	}

	if err := writeModule(c, output, nil); err != nil {
		sink.Report(kscope.SeverityFatal, err.Error())
		return 1
	}

	return 0
}

// writeModule writes the module to path, or to fallback when path is empty.
func writeModule(c *kscope.Compiler, path string, fallback io.Writer) error {
	if path == "" {
		if fallback == nil {
			return nil
		}

		_, err := fmt.Fprint(fallback, c.Module().String())
		return err
	}

	if err := os.WriteFile(path, []byte(c.Module().String()), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	return nil
}
