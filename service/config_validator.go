package service

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/ludo-technologies/crev/domain"
)

// Validation bounds for provider configuration fields
const (
	MinTimeoutMs     = 1000
	MaxTimeoutMs     = 300000
	MinRetries       = 0
	MaxRetries       = 10
	MinAPIKeyLength  = 8
)

// FieldValidator checks one field value and returns an error message, or ""
// when the value is acceptable. Validators are pure functions so that adding
// a provider's rules stays additive and independently testable.
type FieldValidator func(value string) string

// defaultFieldValidators apply to every provider unless overridden
var defaultFieldValidators = map[string]FieldValidator{
	"api_key":  validateAPIKey,
	"endpoint": validateEndpoint,
	"timeout":  validateTimeout,
	"retry_attempts": validateRetries,
}

func validateAPIKey(value string) string {
	if value == "" {
		return "credential must not be empty"
	}
	if len(value) < MinAPIKeyLength {
		return fmt.Sprintf("credential is implausibly short (minimum %d characters)", MinAPIKeyLength)
	}
	return ""
}

func validateEndpoint(value string) string {
	if value == "" {
		return "endpoint must not be empty"
	}
	u, err := url.ParseRequestURI(value)
	if err != nil || u.Host == "" {
		return "must be a valid URL"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "URL scheme must be http or https"
	}
	return ""
}

func validateTimeout(value string) string {
	n, err := strconv.Atoi(value)
	if err != nil {
		return "must be a number of milliseconds"
	}
	// Zero selects the provider default
	if n == 0 {
		return ""
	}
	if n < MinTimeoutMs || n > MaxTimeoutMs {
		return fmt.Sprintf("must be between %d and %d milliseconds", MinTimeoutMs, MaxTimeoutMs)
	}
	return ""
}

func validateRetries(value string) string {
	n, err := strconv.Atoi(value)
	if err != nil {
		return "must be a number"
	}
	// -1 is the CLI's unset sentinel; the provider default applies
	if n == -1 {
		return ""
	}
	if n < MinRetries || n > MaxRetries {
		return fmt.Sprintf("must be between %d and %d", MinRetries, MaxRetries)
	}
	return ""
}

// ConfigValidator runs field-level validation rules against a provider
// configuration. Rules are keyed by provider id; per-provider overrides
// take precedence over the defaults.
type ConfigValidator struct {
	perProvider map[string]map[string]FieldValidator
}

// NewConfigValidator creates a validator with the default field rules
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{perProvider: make(map[string]map[string]FieldValidator)}
}

// RegisterFieldValidator installs a provider-specific rule for one field
func (v *ConfigValidator) RegisterFieldValidator(providerID, field string, fn FieldValidator) {
	if v.perProvider[providerID] == nil {
		v.perProvider[providerID] = make(map[string]FieldValidator)
	}
	v.perProvider[providerID][field] = fn
}

// Validate checks every required and populated optional field of cfg
// against the rules for the template's provider. It returns all failures,
// not just the first.
func (v *ConfigValidator) Validate(template domain.ProviderTemplate, cfg domain.ProviderConfig) []domain.FieldError {
	var errs []domain.FieldError

	values := map[string]string{
		"api_key":        cfg.APIKey,
		"endpoint":       cfg.Endpoint,
		"timeout":        strconv.Itoa(cfg.Timeout),
		"retry_attempts": strconv.Itoa(cfg.RetryAttempts),
	}

	for _, field := range template.RequiredFields {
		if msg := v.check(template.ID, field, values[field]); msg != "" {
			errs = append(errs, domain.FieldError{Field: field, Message: msg})
		}
	}

	// Numeric optionals are always range-checked; a zero value means unset
	// and passes through the validator's own zero handling.
	for _, field := range []string{"timeout", "retry_attempts"} {
		if contains(template.RequiredFields, field) {
			continue
		}
		if msg := v.check(template.ID, field, values[field]); msg != "" {
			errs = append(errs, domain.FieldError{Field: field, Message: msg})
		}
	}

	return errs
}

func (v *ConfigValidator) check(providerID, field, value string) string {
	if overrides, ok := v.perProvider[providerID]; ok {
		if fn, ok := overrides[field]; ok {
			return fn(value)
		}
	}
	if fn, ok := defaultFieldValidators[field]; ok {
		return fn(value)
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
