// Package version exposes the qrbatch build version and the range of
// configuration file versions this build understands.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// version is overridden at build time via -ldflags "-X".
//
//nolint:gochecknoglobals // set by the linker
var version = "0.1.0-dev"

// ConfigSchema is the configuration schema version written by this build.
const ConfigSchema = "1.0.0"

// supportedConfigRange lists the config schema versions this build can read.
const supportedConfigRange = ">= 1.0.0, < 2.0.0"

// GetVersion returns the build version.
func GetVersion() string {
	return version
}

// CheckConfigSchema reports an error when the given schema version string is
// not readable by this build. An empty string is treated as the current schema.
func CheckConfigSchema(v string) error {
	if v == "" {
		return nil
	}
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("invalid config version %q: %w", v, err)
	}
	c, err := semver.NewConstraint(supportedConfigRange)
	if err != nil {
		return err
	}
	if !c.Check(parsed) {
		return fmt.Errorf("config version %s is not supported (want %s)", parsed, supportedConfigRange)
	}
	return nil
}
