package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/stock-tracker/tracker/pkg/errors"
)

// CheckConfigCompatibility reports whether a config file written for configVersion
// can be read by a tracker at appVersion.
//
// Rules:
//   - "main" on either side (development build) skips the check
//   - an empty configVersion is accepted and means "current"
//   - major versions must match
//   - the config may not require a newer minor than the tracker
//
// Examples:
//   - App 1.2.0, config 1.2 -> OK
//   - App 1.3.4, config 1.1.0 -> OK (older config format)
//   - App 1.2.0, config 1.3 -> ERROR (config needs newer tracker)
//   - App 2.0.0, config 1.0 -> ERROR (major differs)
func CheckConfigCompatibility(appVersion, configVersion string) error {
	appVersion = strings.TrimPrefix(appVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if appVersion == "main" || configVersion == "main" || configVersion == "" {
		return nil
	}

	app, err := semver.NewVersion(appVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid tracker version '%s'", appVersion)
	}

	// NewVersion also accepts the short "1.2" form used in config files
	required, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", configVersion)
	}

	if app.Major() != required.Major() {
		return errors.Newf(errors.ErrCodeInvalidVersion, "major version mismatch: tracker is %d.x.x but config is for %d.x.x",
			app.Major(), required.Major())
	}

	if required.Minor() > app.Minor() {
		return errors.Newf(errors.ErrCodeInvalidVersion, "config requires tracker %d.%d or newer, running %s",
			required.Major(), required.Minor(), app.String())
	}

	return nil
}
