// Package config loads keyact settings.
//
// Settings are resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Environment (KEYACT_*)  │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. .env file               │
//	├─────────────────────────────┤
//	│  2. Config file             │  ← keyact.toml / keyact.yaml
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Config files are TOML or YAML, selected by extension. Unknown keys are
// rejected with a *ParseError. A missing file is not an error.
//
// # Example
//
//	[logging]
//	level = "debug"
//	format = "json"
//
//	[words]
//	segmenter = "class"
//	connectors = "_"
//
//	[dispatcher]
//	max_repeat_count = 500
//	enable_metrics = true
//	recover_from_panic = true
//	timeout = "250ms"
//
//	[tracing]
//	enabled = true
//	exporter = "stdout"
//
// # Usage
//
//	cfg, err := config.Load("keyact.toml")
//	if err != nil {
//	    return err
//	}
//	d := dispatcher.New(cfg.Dispatcher.Build())
//	inc := number.NewIncrement(number.WithSegmenter(cfg.Words.Build()))
package config
