// nlet loads a declaration file and prints resolved values.
//
// Each path argument is a dotted attribute path such as
// "Settings.url".  With no paths, every declared name is printed.
// Overrides given with --set are applied with Let before anything is
// resolved, so declarations that depend on the overridden name see the
// new value.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muir/nlet"
	"github.com/muir/nlet/nload"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, stderr io.Writer) error {
	var file string
	var sets []string
	var asJSON, names, debug bool

	flagSet := pflag.NewFlagSet("nlet", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&file, "file", "f", "", "declaration file (.yaml, .yml, .json, .jsonc)")
	flagSet.StringArrayVar(&sets, "set", nil, "override a declaration: name=value, value is YAML")
	flagSet.BoolVar(&asJSON, "json", false, "print JSON instead of YAML")
	flagSet.BoolVar(&names, "names", false, "list declared names and exit")
	flagSet.BoolVar(&debug, "debug", false, "log at debug level and explain resolution failures")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet, stderr)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet, stderr)
		return nil
	}

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if file == "" {
		return errors.New("--file is required")
	}
	ns, err := nload.File(file)
	if err != nil {
		return err
	}
	logger.Debug("loaded declarations", "file", file, "namespace", ns.String(), "names", len(ns.Names()))

	if len(sets) > 0 {
		overrides, err := parseSets(sets)
		if err != nil {
			return err
		}
		ns, err = ns.Let(overrides)
		if err != nil {
			return err
		}
		logger.Debug("applied overrides", "count", len(overrides))
	}

	if names {
		for _, name := range ns.Names() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	paths := flagSet.Args()
	if len(paths) == 0 {
		paths = ns.Names()
	}
	out := make(map[string]any, len(paths))
	for _, path := range paths {
		v, err := ns.Lookup(strings.Split(path, ".")...)
		if err != nil {
			if debug {
				fmt.Fprintln(stderr, nlet.DetailedError(err))
			}
			return errors.Wrapf(err, "resolving %s", path)
		}
		logger.Debug("resolved", "path", path, "type", fmt.Sprintf("%T", v))
		out[path] = printable(v)
	}
	return write(stdout, out, asJSON)
}

// parseSets reads name=value pairs.  Values are YAML so that numbers
// and booleans keep their type.
func parseSets(sets []string) (nlet.Declarations, error) {
	decls := make(nlet.Declarations, len(sets))
	for _, set := range sets {
		name, value, ok := strings.Cut(set, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("--set %q is not name=value", set)
		}
		var v any
		if err := yaml.Unmarshal([]byte(value), &v); err != nil {
			return nil, errors.Wrapf(err, "--set %s", name)
		}
		decls[name] = v
	}
	return decls, nil
}

// printable replaces namespaces, which have no exported fields, with
// the names they declare.
func printable(v any) any {
	switch x := v.(type) {
	case *nlet.Namespace:
		return map[string]any{"namespace": x.String(), "names": x.Names()}
	case *nlet.Descriptor:
		return x.String()
	}
	return v
}

func write(w io.Writer, out map[string]any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(out), "encoding json")
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(err, "encoding yaml")
	}
	return errors.Wrap(enc.Close(), "encoding yaml")
}

func printHelp(flagSet *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `nlet resolves names from a declaration file.

Usage:
  nlet --file decl.yaml [flags] [path...]

Examples:
  # Print every declared name
  nlet --file app.yaml

  # Print one nested value as JSON
  nlet --file app.jsonc --json Settings.url

  # Override a declaration before resolving
  nlet --file app.yaml --set host=localhost url

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
