/*
NAME
  config.go

DESCRIPTION
  config.go defines the extractor's run configuration.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

// Package config defines the extractor's run configuration: a plain
// struct populated from flags, the way revid/config.Config is built up
// by the teacher's CLI entry points rather than through a config file or
// library.
package config

import "github.com/ausocean/utils/logging"

// Config holds everything a single extraction run needs.
type Config struct {
	// InputPath is the source ISO/SI/WDB file or directory to read.
	InputPath string

	// OutputPath is the directory extracted assets are written under.
	OutputPath string

	// AllLODs selects whether scene.Compose emits every LOD of a model
	// (true) or only the finest (false).
	AllLODs bool

	// Workers is the number of balanced chunks schedule.BalancedChunks
	// partitions the work set into. A value of 0 or less is treated as 1.
	Workers int

	// ReportPath, if non-empty, is where schedule.WriteReport's
	// chunk-weight bar chart is written after scheduling.
	ReportPath string

	// Logger receives structured log output for the whole run.
	Logger logging.Logger

	// LogLevel is the logging verbosity. Valid values are the enums from
	// the logging package: logging.Debug, logging.Info, logging.Warning,
	// logging.Error, logging.Fatal.
	LogLevel int8
}
