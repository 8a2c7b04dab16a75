package checkout

import "github.com/fastprodman/paygate/internal/config"

const appEnvLocal = "local"

// Environment tells the flow whether failed captures may be dumped for
// debugging instead of being recorded.
type Environment interface {
	IsDebug() bool
}

type Production struct{}

func (Production) IsDebug() bool { return false }

type debugEnvironment struct{}

func (debugEnvironment) IsDebug() bool { return true }

// EnvironmentFor enables the debug dump only for a local app running against
// the PayPal sandbox. Live credentials always get Production.
func EnvironmentFor(appEnv string, pp config.PayPalConfig) Environment {
	if appEnv == appEnvLocal && pp.Sandbox() {
		return debugEnvironment{}
	}

	return Production{}
}
