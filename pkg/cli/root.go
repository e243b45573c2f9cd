package cli

import (
	"flag"
	"fmt"
	"io"
	"sort"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// NewRootCommand creates the root command writing its output to out.
// Secrets default to the ENCRYPTION_SECRET and ENCRYPTION_SECRET_DEV
// variables in environ.
func NewRootCommand(out io.Writer, environ map[string]string) *Command {
	root := &Command{
		Name:        "roamjs-token",
		Description: "roamjs-token - provision and check RoamJS user tokens",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("roamjs-token", flag.ContinueOnError),
	}

	root.Subcommands["provision"] = newProvisionCommand(out, environ)
	root.Subcommands["check"] = newCheckCommand(out, environ)

	return root
}

// Execute runs the subcommand named by args[0]
func (c *Command) Execute(out io.Writer, args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		return c.usage(out)
	}

	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage(out io.Writer) error {
	fmt.Fprintf(out, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(out, "Commands:\n")
	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}
