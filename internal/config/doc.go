// Package config provides configuration parsing for the reconcile tools.
//
// Configuration lives next to the project in reconcile.json, reconcile.yaml
// (or .yml) or reconcile.toml. Load looks for them in that order. Every
// field has a default, so an empty file is a valid configuration.
//
// # Configuration File Structure
//
//	{
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "scheduler": {
//	    "recursionLimit": 100
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "reconcile"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "tracerName": "github.com/vango-dev/reconcile"
//	  },
//	  "serve": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "tickInterval": "2s",
//	    "loadDelay": "750ms",
//	    "loadTimeout": "5s"
//	  }
//	}
//
// The same keys are used in YAML and TOML files.
package config
