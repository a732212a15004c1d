package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-catalyst/pkg/errors"
)

// CheckVersionCompatibility reports whether a strategy written against
// strategyVersion can run on an engine implementing engineVersion.
// Major and minor must match and patch may differ. "main" on either side
// skips the check.
func CheckVersionCompatibility(engineVersion, strategyVersion string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	strategyVersion = strings.TrimPrefix(strategyVersion, "v")

	if engineVersion == "main" || strategyVersion == "main" {
		return nil
	}

	engine, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version '%s'", engineVersion)
	}

	strategy, err := semver.NewVersion(strategyVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid strategy version '%s'", strategyVersion)
	}

	if engine.Major() != strategy.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"major version mismatch: engine is %d.x.x but strategy requires %d.x.x",
			engine.Major(), strategy.Major())
	}

	if engine.Minor() != strategy.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"minor version mismatch: engine is %d.%d.x but strategy requires %d.%d.x",
			engine.Major(), engine.Minor(), strategy.Major(), strategy.Minor())
	}

	return nil
}
