package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks the rules the schema cannot express.
func Validate(file *File) []ValidationError {
	var errors []ValidationError

	if file.DefaultProfile != "" {
		if _, ok := file.Profiles[file.DefaultProfile]; !ok {
			errors = append(errors, ValidationError{
				Path:    "defaultProfile",
				Message: fmt.Sprintf("profile %q is not defined", file.DefaultProfile),
			})
		}
	}

	for _, name := range file.ProfileNames() {
		profile := file.Profiles[name]

		if strings.Contains(profile.Host, "://") {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("profiles.%s.host", name),
				Message: "host must not include a scheme, use proto instead",
			})
		}

		if strings.ContainsAny(profile.Prefix, " /") {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("profiles.%s.prefix", name),
				Message: fmt.Sprintf("invalid prefix: %q", profile.Prefix),
			})
		}

		if profile.Proto == "https" && profile.Port == 80 {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("profiles.%s.port", name),
				Message: "https on port 80 is almost certainly a mistake",
			})
		}
	}

	return errors
}
