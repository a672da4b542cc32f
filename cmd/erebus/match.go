package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erebus-go/erebus/internal/config"
	"github.com/erebus-go/erebus/internal/errors"
	"github.com/erebus-go/erebus/pkg/routepath"
	"github.com/erebus-go/erebus/pkg/router"
)

func matchCmd() *cobra.Command {
	var isRegexp bool

	cmd := &cobra.Command{
		Use:   "match <pattern> <path>",
		Short: "Test a route pattern against a path",
		Long: `Report whether pattern matches path and print the parameters it binds.

Both arguments are normalized the way the router normalizes location
hashes: one leading "#" and then one leading "/" are removed.

Examples:
  erebus match /users/:id '#/users/42'
  erebus match --regexp '^v(?P<version>\d+)/' v2/intro`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc := config.RouteConfig{Pattern: args[0], Regexp: isRegexp}
			p, err := rc.Compile()
			if err != nil {
				return err
			}
			return printMatch(cmd.OutOrStdout(), p, args[1])
		},
	}

	cmd.Flags().BoolVarP(&isRegexp, "regexp", "r", false, "Treat the pattern as a regular expression")
	return cmd
}

func printMatch(w io.Writer, p router.Pattern, path string) error {
	path = routepath.Normalize(path)
	if !p.Match(path) {
		fmt.Fprintf(w, "no match: %q does not match %q\n", path, p.String())
		return errors.New(errors.CodeNoMatch).WithDetail("pattern " + p.String())
	}

	fmt.Fprintf(w, "match: %q matches %q\n", path, p.String())
	printParams(w, p.Params(path))
	return nil
}

func printParams(w io.Writer, params router.Params) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s = %q\n", name, params[name])
	}
}

func routesCmd() *cobra.Command {
	var (
		dir  string
		path string
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the configured routes",
		Long: `List the routes of the site in match priority order.

With --path, print the route that serves the path instead.

Examples:
  erebus routes
  erebus routes --path '#/docs/intro'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.FindSiteRoot(dir)
			if err != nil {
				return err
			}
			cfg, err := config.Load(root)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cmd.Flags().Changed("path") {
				return resolveRoute(cmd.OutOrStdout(), cfg, path)
			}
			return listRoutes(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Site directory")
	cmd.Flags().StringVar(&path, "path", "", "Resolve this path")
	return cmd
}

func describe(rc config.RouteConfig) string {
	target := rc.Target
	if target == "" {
		target = "(default target)"
	}
	switch {
	case rc.Inline != "":
		return fmt.Sprintf("inline -> %s", target)
	case rc.Fragment != "":
		return fmt.Sprintf("%s -> %s", rc.Fragment, target)
	default:
		return fmt.Sprintf("(no fragment) -> %s", target)
	}
}

func listRoutes(w io.Writer, cfg *config.Config) error {
	for i, rc := range cfg.Routes {
		kind := "path"
		if rc.Regexp {
			kind = "regexp"
		}
		fmt.Fprintf(w, "%2d  %-6s  %-30s  %s\n", i+1, kind, rc.Pattern, describe(rc))
	}
	if cfg.Default != nil {
		fmt.Fprintf(w, "    %-6s  %-30s  %s\n", "", router.Wildcard, describe(*cfg.Default))
	}
	return nil
}

func resolveRoute(w io.Writer, cfg *config.Config, path string) error {
	path = routepath.Normalize(path)
	for _, rc := range cfg.Routes {
		p, err := rc.Compile()
		if err != nil {
			return err
		}
		if p.Match(path) {
			fmt.Fprintf(w, "%s  %s\n", rc.Pattern, describe(rc))
			printParams(w, p.Params(path))
			return nil
		}
	}
	if cfg.Default != nil {
		fmt.Fprintf(w, "%s  %s\n", router.Wildcard, describe(*cfg.Default))
		return nil
	}
	return errors.New(errors.CodeNoMatch).WithDetail("path " + strconv.Quote(path))
}
