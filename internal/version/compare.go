package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckVersionCompatibility checks whether a simulation config written for
// configVersion can run on engineVersion. Returns nil if compatible.
//
// configVersion is either a plain version or a semver constraint:
//   - "main" on either side skips the check (development build)
//   - an empty configVersion accepts any engine
//   - a plain version requires the same major and minor version
//     (e.g. config 0.3.0 runs on engine 0.3.4 but not on 0.4.0)
//   - a constraint such as ">= 0.2, < 1.0" or "^0.3" must be satisfied by the engine
func CheckVersionCompatibility(engineVersion, configVersion string) error {
	engineVersion = strings.TrimPrefix(strings.TrimSpace(engineVersion), "v")
	configVersion = strings.TrimSpace(configVersion)

	if engineVersion == "main" || configVersion == "main" || configVersion == "" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return fmt.Errorf("invalid engine version '%s': %w", engineVersion, err)
	}

	if configSemver, err := semver.NewVersion(configVersion); err == nil {
		return compareMajorMinor(engineSemver, configSemver)
	}

	constraint, err := semver.NewConstraint(configVersion)
	if err != nil {
		return fmt.Errorf("invalid config version '%s': %w", configVersion, err)
	}

	if ok, reasons := constraint.Validate(engineSemver); !ok {
		messages := make([]string, 0, len(reasons))
		for _, reason := range reasons {
			messages = append(messages, reason.Error())
		}

		return fmt.Errorf("engine %s does not satisfy '%s': %s", engineSemver, configVersion, strings.Join(messages, "; "))
	}

	return nil
}

func compareMajorMinor(engine, config *semver.Version) error {
	if engine.Major() != config.Major() {
		return fmt.Errorf("major version mismatch: engine is %d.x.x but config requires %d.x.x",
			engine.Major(), config.Major())
	}

	if engine.Minor() != config.Minor() {
		return fmt.Errorf("minor version mismatch: engine is %d.%d.x but config requires %d.%d.x",
			engine.Major(), engine.Minor(),
			config.Major(), config.Minor())
	}

	return nil
}
