package config

// GitHub deployment environments a Render service may be mirrored to
const (
	// EnvironmentProduction represents the production environment
	EnvironmentProduction = "production"

	// EnvironmentStaging represents the staging environment
	EnvironmentStaging = "staging"

	// EnvironmentDevelopment represents the development environment
	EnvironmentDevelopment = "development"

	// EnvironmentPRPreview represents Render pull request previews
	EnvironmentPRPreview = "pr-preview"
)

// ValidEnvironments returns a list of all valid environment names
func ValidEnvironments() []string {
	return []string{
		EnvironmentProduction,
		EnvironmentStaging,
		EnvironmentDevelopment,
		EnvironmentPRPreview,
	}
}

// IsValidEnvironment checks if the given environment name is valid
func IsValidEnvironment(env string) bool {
	for _, validEnv := range ValidEnvironments() {
		if env == validEnv {
			return true
		}
	}
	return false
}

// IsTransient reports whether deployments to env are short-lived.
func IsTransient(env string) bool {
	return env == EnvironmentPRPreview
}
