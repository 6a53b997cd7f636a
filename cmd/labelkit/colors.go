package main

import (
	"flag"
	"fmt"
	"slices"
	"sort"

	"github.com/example/labelkit/internal/annotation"
	"github.com/example/labelkit/internal/host"
)

type colorsCmd struct {
	*root
	fs     *flag.FlagSet
	params string
}

func (c *colorsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseColorsCmd(args []string, r *root) (*colorsCmd, error) {
	fs := flag.NewFlagSet("colors", flag.ExitOnError)
	c := &colorsCmd{root: r.subcommand("colors"), fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.params, "params", "", "JSON parameter file providing label_list and color_map")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.params == "" && fs.NArg() == 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

// Run prints one "label<TAB>colour" line per label. With -params the colours
// match what the editors use and positional labels select which lines print.
func (c *colorsCmd) Run() error {
	labels := c.fs.Args()
	colors := annotation.GenerateColorMap(labels)
	if c.params != "" {
		p, err := host.LoadParams(c.params)
		if err != nil {
			return err
		}
		colors = p.Colors()
		if len(labels) == 0 {
			labels = append([]string{}, p.LabelList...)
			var extra []string
			for label := range colors {
				if !slices.Contains(labels, label) {
					extra = append(extra, label)
				}
			}
			sort.Strings(extra)
			labels = append(labels, extra...)
		}
	}
	for _, label := range labels {
		fmt.Fprintf(c.stdout, "%s\t%s\n", label, colors.Lookup(label))
	}
	return nil
}
