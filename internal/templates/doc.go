// Package templates provides the site scaffolds written by "erebus init".
//
// # Available Templates
//
//   - minimal: one route and one fragment
//   - docs: parameterized routes, a not found page, a custom shell and styles
//
// # Usage
//
//	tmpl, err := templates.Get("docs")
//	if err != nil {
//	    return err
//	}
//	if err := tmpl.Create(siteDir, templates.Config{Name: "Handbook"}); err != nil {
//	    return err
//	}
//
// # Template Variables
//
//	{{.Name}}      - Site name, used as page title
//	{{.Target}}    - Default target selector
//	{{.TargetID}}  - Id of the default target element
package templates
