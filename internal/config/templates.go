package config

// Strictness represents the review strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// StrictnessPreset holds filter values for different strictness levels
type StrictnessPreset struct {
	MinSeverity string
	ShowDetails bool
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			MinSeverity: "high",
			ShowDetails: false,
		},
		StrictnessStandard: {
			MinSeverity: "medium",
			ShowDetails: false,
		},
		StrictnessStrict: {
			MinSeverity: "info",
			ShowDetails: true,
		},
	}
}

// AIVendors lists the supported completion backends for the init wizard
func AIVendors() []string {
	return []string{"anthropic", "openai", "ollama"}
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(vendor string, strictness Strictness) string {
	preset := GetStrictnessPresets()[strictness]

	showDetails := "false"
	if preset.ShowDetails {
		showDetails = "true"
	}

	return `# crev configuration
# Documentation: https://github.com/ludo-technologies/crev

review:
  # Minimum severity to report: critical, high, medium, low, info
  min_severity: ` + preset.MinSeverity + `

  # Restrict issue categories; empty keeps all
  # categories: [security, bug]
  categories: []

  # Restrict the directory walk to these extensions; empty uses the
  # built-in default set
  include_extensions: []

  # Fan out to configured third-party providers
  enable_third_party: false
  providers: []

ai:
  # Completion backend: anthropic, openai, ollama
  vendor: ` + vendor + `

  # Override the vendor's default model
  # model: claude-sonnet-4-20250514
  timeout_seconds: 120

output:
  # text, json, yaml
  format: text
  show_details: ` + showDetails + `

performance:
  max_goroutines: 4
  timeout_seconds: 300
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# crev configuration (minimal)
# See full options: https://github.com/ludo-technologies/crev

review:
  min_severity: medium

ai:
  vendor: anthropic

output:
  format: text
`
}
