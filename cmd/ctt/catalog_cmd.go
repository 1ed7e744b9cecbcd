package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/guard"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/manifest"
)

// runCatalogCmd implements `ctt catalog`: inspect the built-in operator
// catalog or one loaded from a YAML file, optionally filtered by guard
// type, category, or a CEL predicate over descriptor fields.
func runCatalogCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("catalog", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		file       string
		guardName  string
		category   string
		expr       string
		jsonOutput bool
	)
	cmd.StringVar(&file, "file", "", "Operator catalog YAML (default: built-in catalog)")
	cmd.StringVar(&guardName, "guard", "", "Only operators requiring this guard type")
	cmd.StringVar(&category, "category", "", "Only operators in this category")
	cmd.StringVar(&expr, "expr", "", "CEL predicate over descriptor fields, e.g. 'op.bounded && \"BUDGET\" in op.guards'")
	cmd.BoolVar(&jsonOutput, "json", false, "Print descriptors as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	reg, err := loadRegistry(file)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	descriptors := reg.List()
	if guardName != "" {
		descriptors = reg.FilterByGuard(guard.GuardType(strings.ToUpper(guardName)))
	}
	if category != "" {
		descriptors = intersect(descriptors, reg.FilterByCategory(guard.Category(category)))
	}
	if expr != "" {
		filter, err := guard.NewExprFilter()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		matched, err := filter.Filter(reg, expr)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		descriptors = intersect(descriptors, matched)
	}

	if jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(descriptors); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		return 0
	}

	printDescriptors(stdout, descriptors)
	fmt.Fprintf(stdout, "\n%d operator(s)\n", len(descriptors))
	return 0
}

func loadRegistry(file string) (*guard.Registry, error) {
	if file == "" {
		return guard.DefaultRegistry(), nil
	}
	loader, err := manifest.NewLoader()
	if err != nil {
		return nil, err
	}
	catalog, err := loader.LoadCatalog(file)
	if err != nil {
		return nil, err
	}
	reg := guard.NewRegistry()
	if err := catalog.Apply(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// intersect keeps the members of a that also appear in b, preserving a's
// order so stacked filters stay deterministic.
func intersect(a, b []guard.OperatorDescriptor) []guard.OperatorDescriptor {
	ids := make(map[string]struct{}, len(b))
	for _, d := range b {
		ids[d.ID] = struct{}{}
	}
	out := make([]guard.OperatorDescriptor, 0, len(a))
	for _, d := range a {
		if _, ok := ids[d.ID]; ok {
			out = append(out, d)
		}
	}
	return out
}

func printDescriptors(w io.Writer, descriptors []guard.OperatorDescriptor) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tID\tNAME\tCATEGORY\tGUARDS\tPROPS\tMAX LATENCY")
	for _, d := range descriptors {
		guards := make([]string, len(d.Guards))
		for i, g := range d.Guards {
			guards[i] = string(g)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Pattern, d.ID, d.Name, d.Category,
			strings.Join(guards, ","), propFlags(d.Properties), d.MaxLatency)
	}
	_ = tw.Flush()
}

// propFlags renders the four correctness properties as a compact DITB
// flag string, uppercase when the property holds.
func propFlags(p guard.Properties) string {
	flags := []struct {
		on  bool
		set byte
	}{
		{p.Deterministic, 'D'},
		{p.Idempotent, 'I'},
		{p.TypePreserving, 'T'},
		{p.Bounded, 'B'},
	}
	var b strings.Builder
	for _, f := range flags {
		if f.on {
			b.WriteByte(f.set)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}
