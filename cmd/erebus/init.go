package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/erebus-go/erebus/internal/config"
	"github.com/erebus-go/erebus/internal/errors"
	"github.com/erebus-go/erebus/internal/templates"
)

func initCmd() *cobra.Command {
	var (
		template string
		name     string
		target   string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a new site",
		Long: `Create a new site in dir (default: the current directory).

Templates:
  minimal   One route and one fragment
  docs      Parameterized routes, a not found page, a custom shell and styles

Examples:
  erebus init handbook
  erebus init handbook --template=docs --target=#content`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd, dir, template, name, target, force)
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "minimal", "Site template (minimal, docs)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Site name (default: directory name)")
	cmd.Flags().StringVar(&target, "target", "#main", "Default target selector")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing site")
	return cmd
}

func runInit(cmd *cobra.Command, dir, templateName, name, target string, force bool) error {
	tmpl, err := templates.Get(templateName)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if config.Exists(abs) && !force {
		return errors.New(errors.CodeDirExists).
			WithDetail(dir).
			WithSuggestion("Use --force to overwrite it")
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return err
	}

	if err := tmpl.Create(abs, templates.Config{Name: name, Target: target}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	success(out, "Created %s site in %s", tmpl.Name, dir)
	info(out, "cd %s && erebus serve", dir)
	return nil
}
