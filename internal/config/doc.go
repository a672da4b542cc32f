// Package config provides configuration parsing for erebus sites.
//
// The configuration is stored in erebus.json (or erebus.yaml) at the site
// root. It declares the routes served by the live server and where their
// fragments come from.
//
// # Configuration File Structure
//
//	{
//	  "name": "docs",
//	  "target": "#main",
//	  "routes": [
//	    {"pattern": "/", "fragment": "home.html"},
//	    {"pattern": "/docs/:page", "fragment": "docs/{page}.html"},
//	    {"pattern": "^v(\\d+)/", "regexp": true, "inline": "<p>versioned</p>"}
//	  ],
//	  "default": {"fragment": "404.html"},
//	  "fragments": {"dir": "fragments"},
//	  "dev": {"port": 3000, "hotReload": true},
//	  "router": {"serialize": true},
//	  "metrics": {"enabled": true}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.DevAddress())
package config
