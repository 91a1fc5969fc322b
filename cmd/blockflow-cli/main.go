// Command blockflow-cli is the host for pkg/blockflow: a simulate
// subcommand that runs a JSON-encoded Model and prints its
// SimulationResults, and a gen-c subcommand that renders the same Model
// to a standalone C99 source pair. Grounded on the teacher's
// cmd/server/main.go flag-parsing-and-dispatch shape, with the HTTP
// server and storage layer it wraps dropped entirely (out of scope).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/smilemakc/blockflow/internal/codegen"
	"github.com/smilemakc/blockflow/internal/config"
	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/obslog"
	"github.com/smilemakc/blockflow/pkg/blockflow"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	sub := os.Args[1]
	args := os.Args[2:]

	var err error
	switch sub {
	case "simulate":
		err = runSimulate(args)
	case "gen-c":
		err = runGenC(args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "blockflow-cli:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: blockflow-cli simulate [-model path] | gen-c -model path -name name [-harness] [-out dir]")
}

func runSimulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	modelPath := fs.String("model", "", "path to a JSON-encoded Model (default: stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Load()
	log := obslog.NewConsole(cfg.LogLevel)

	m, err := loadModel(*modelPath)
	if err != nil {
		return err
	}
	m.GlobalSettings = cfg.ApplyDefaults(m.GlobalSettings)

	log.Info("simulating model", "duration", m.GlobalSettings.SimulationDuration, "dt", m.GlobalSettings.SimulationTimeStep)

	results, diags, err := blockflow.Simulate(m, nil)
	logDiagnostics(log, diags)
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(results)
}

func runGenC(args []string) error {
	fs := flag.NewFlagSet("gen-c", flag.ExitOnError)
	modelPath := fs.String("model", "", "path to a JSON-encoded Model (default: stdin)")
	name := fs.String("name", "model", "generated model name, e.g. \"model\" -> model.h/model.c")
	harness := fs.Bool("harness", false, "also emit a main.c driver")
	outDir := fs.String("out", ".", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Load()
	log := obslog.NewConsole(cfg.LogLevel)

	m, err := loadModel(*modelPath)
	if err != nil {
		return err
	}
	m.GlobalSettings = cfg.ApplyDefaults(m.GlobalSettings)

	art, diags, err := blockflow.GenerateC(m, codegen.Options{ModelName: *name, IncludeHarness: *harness})
	logDiagnostics(log, diags)
	if err != nil {
		return err
	}

	if err := writeFile(*outDir, *name+".h", art.Header); err != nil {
		return err
	}
	if err := writeFile(*outDir, *name+".c", art.Source); err != nil {
		return err
	}
	if *harness {
		if err := writeFile(*outDir, "main.c", art.Main); err != nil {
			return err
		}
	}
	log.Info("generated C source", "dir", *outDir, "name", *name, "harness", *harness)
	return nil
}

func loadModel(path string) (domain.Model, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return domain.Model{}, fmt.Errorf("open model: %w", err)
		}
		defer f.Close()
		r = f
	}

	var m domain.Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return domain.Model{}, fmt.Errorf("decode model: %w", err)
	}
	return m, nil
}

func writeFile(dir, name, content string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func logDiagnostics(log *obslog.Logger, diags []domain.Diagnostic) {
	for _, d := range diags {
		if d.Severity == domain.SeverityError {
			log.Error(fmt.Errorf("%s", d.Message), "diagnostic", "category", d.Category, "block", d.BlockID)
		} else {
			log.Warn(d.Message, "severity", d.Severity.String(), "category", d.Category, "block", d.BlockID)
		}
	}
}
