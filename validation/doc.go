// Package validation checks configuration structs against their
// `validate` tags and reports failures as a single VALIDATION AppError.
//
//	type RemoteConfig struct {
//	    BaseURL string  `mapstructure:"base_url" validate:"required,url"`
//	    Speed   float64 `mapstructure:"speed" validate:"gte=0.25,lte=4"`
//	}
//	if err := validation.Validate(cfg); err != nil { ... }
//
// Field names in messages follow mapstructure, then yaml, then json tags.
package validation
