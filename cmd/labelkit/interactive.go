package main

import (
	"bufio"
	"flag"
	"fmt"
	"strings"
)

type interactiveCmd struct {
	*root
	parent   *root
	fs       *flag.FlagSet
	commands stringList
}

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, "; ") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func (i *interactiveCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	c := &interactiveCmd{root: r.subcommand("interactive"), parent: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.Var(&c.commands, "e", "command to run instead of reading stdin; repeatable")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (i *interactiveCmd) exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return true
	}
	if line == "exit" || line == "quit" {
		return false
	}
	args := strings.Fields(line)
	if args[0] == "interactive" {
		return true
	}
	if err := i.parent.dispatch(args[0], args[1:]); err != nil {
		fmt.Fprintln(i.stderr, err)
	}
	return true
}

func (i *interactiveCmd) Run() error {
	if len(i.commands) > 0 {
		for _, line := range i.commands {
			if !i.exec(line) {
				break
			}
		}
		return nil
	}
	fmt.Fprintln(i.stdout, "Enter commands (type 'exit' to quit)")
	scanner := bufio.NewScanner(i.stdin)
	for {
		fmt.Fprint(i.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		if !i.exec(scanner.Text()) {
			break
		}
	}
	return scanner.Err()
}
