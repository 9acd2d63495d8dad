// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

package conf

// LoggerConfig configures the batch executor's log sink: where the Driver's
// structured log lines (batch start, exit with an unfinished batch,
// too-big-gas-limit rejections) are written and how the underlying file
// rotates.
//
// Rotation policy:
//   - once a file exceeds MaxSize MB it rolls over to a new one
//   - a rolled-over file is renamed to name-timestamp.ext
//   - files beyond MaxBackups count or older than MaxAge days are pruned
//   - with Compress set, rolled-over files are gzipped to save space
//
// Suggested presets:
//   - one executor per node, long-running: MaxSize=100, MaxBackups=10, MaxAge=30, Compress=true
//   - local batch runs during development: MaxSize=10, MaxBackups=3, MaxAge=7, Compress=false
//   - disk-constrained hosts: MaxSize=50, MaxBackups=5, MaxAge=7, Compress=true, TotalSizeCap=500
type LoggerConfig struct {
	// LogFile is the log file name (empty means console only).
	// A relative path is placed under DataDir/log/.
	LogFile string `json:"name" yaml:"name"`

	// Level is the minimum severity logged: trace, debug, info, warn, error, fatal.
	Level string `json:"level" yaml:"level"`

	// MaxSize is the per-file size cap in MB before rollover.
	// Default: 100 MB.
	MaxSize int `json:"max_size" yaml:"max_size"`

	// MaxBackups is how many rolled-over files are kept.
	// 0 means unlimited count (still subject to MaxAge).
	// Default: 10.
	MaxBackups int `json:"max_count" yaml:"max_count"`

	// MaxAge is how many days a rolled-over file is kept before deletion.
	// 0 means no age-based pruning (still subject to MaxBackups).
	// Default: 30 days.
	MaxAge int `json:"max_day" yaml:"max_day"`

	// Compress gzips rolled-over files, trading CPU for roughly 90% less
	// disk usage.
	// Default: true.
	Compress bool `json:"compress" yaml:"compress"`

	// TotalSizeCap is the combined size limit in MB across all log files;
	// the oldest files are pruned once it is exceeded.
	// 0 means unbounded (MaxBackups/MaxAge still apply).
	// Default: 0 (unbounded).
	TotalSizeCap int `json:"total_size_cap" yaml:"total_size_cap"`

	// LocalTime names rolled-over files using local time instead of UTC.
	// Default: true.
	LocalTime bool `json:"local_time" yaml:"local_time"`

	// Console additionally mirrors output to stdout when LogFile is set
	// (with LogFile empty, output always goes to stdout).
	// Default: true (convenient while developing).
	Console bool `json:"console" yaml:"console"`

	// JSONFormat writes the file sink as JSON lines. When Console mirrors a
	// file sink, the console receives the same format as the file; console
	// output is plain text only when LogFile is empty.
	// Default: true (easier to ship to a log collector).
	JSONFormat bool `json:"json_format" yaml:"json_format"`
}

// DefaultLoggerConfig returns a LoggerConfig suitable for a long-running
// batch executor process.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		LogFile:      "", // console only by default
		Level:        "info",
		MaxSize:      100, // 100 MB
		MaxBackups:   10,
		MaxAge:       30, // 30 days
		Compress:     true,
		TotalSizeCap: 0, // no total-size limit
		LocalTime:    true,
		Console:      true,
		JSONFormat:   true,
	}
}

// Validate fills in defaults for unset or invalid numeric fields.
func (c *LoggerConfig) Validate() error {
	if c.MaxSize <= 0 {
		c.MaxSize = 100
	}
	if c.MaxBackups < 0 {
		c.MaxBackups = 10
	}
	if c.MaxAge < 0 {
		c.MaxAge = 30
	}
	return nil
}
