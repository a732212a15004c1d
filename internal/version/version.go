package version

// Version is the build version of the backtester, set with
// -ldflags "-X github.com/rxtech-lab/argo-catalyst/internal/version.Version=1.2.3".
var Version = "main"

// StrategyAPIVersion is the strategy contract implemented by the engine.
// Strategies report the contract they were written against through Version().
const StrategyAPIVersion = "1.0.0"

func GetVersion() string {
	return Version
}
