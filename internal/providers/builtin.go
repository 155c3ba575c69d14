package providers

import "github.com/ludo-technologies/crev/domain"

// Builtin returns the factories and templates of the adapters shipped with
// the engine, in registration order.
func Builtin() []struct {
	Template domain.ProviderTemplate
	Factory  domain.ProviderFactory
} {
	return []struct {
		Template domain.ProviderTemplate
		Factory  domain.ProviderFactory
	}{
		{Template: SonarQubeTemplate(), Factory: NewSonarQube},
		{Template: CodeClimateTemplate(), Factory: NewCodeClimate},
	}
}
