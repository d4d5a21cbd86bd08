package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/speechkit/errors"
)

type remoteSettings struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key"`
}

type settings struct {
	Kind        string         `mapstructure:"kind" validate:"required,oneof=remote local"`
	Temperature float64        `mapstructure:"temperature" validate:"gte=0,lte=1"`
	Speed       float64        `yaml:"speed" validate:"gte=0.25,lte=4"`
	Threads     int            `json:"threads" validate:"min=1"`
	Remote      remoteSettings `mapstructure:"remote"`
}

func validSettings() settings {
	return settings{
		Kind:        "remote",
		Temperature: 0.9,
		Speed:       1,
		Threads:     4,
		Remote:      remoteSettings{BaseURL: "https://api.openai.com/v1/"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*settings)
		contains []string
	}{
		{"valid", func(*settings) {}, nil},
		{"missing kind", func(s *settings) { s.Kind = "" }, []string{"kind: is required"}},
		{"bad kind", func(s *settings) { s.Kind = "cloud" }, []string{"kind: must be one of: remote local"}},
		{"temperature too high", func(s *settings) { s.Temperature = 1.5 }, []string{"temperature: must be less than or equal to 1"}},
		{"speed too low", func(s *settings) { s.Speed = 0.1 }, []string{"speed: must be greater than or equal to 0.25"}},
		{"threads zero", func(s *settings) { s.Threads = 0 }, []string{"threads: must be at least 1"}},
		{"nested url", func(s *settings) { s.Remote.BaseURL = "not a url" }, []string{"remote.base_url: must be a valid URL"}},
		{"multiple", func(s *settings) {
			s.Kind = ""
			s.Threads = 0
		}, []string{"kind: is required", "threads: must be at least 1", "; "}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validSettings()
			tc.mutate(&s)
			err := Validate(s)
			if tc.contains == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT code, got %v", errors.CodeOf(err))
			}
			for _, want := range tc.contains {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("expected error to contain %q, got %q", want, err.Error())
				}
			}
		})
	}
}

func TestValidateDetails(t *testing.T) {
	s := validSettings()
	s.Kind = ""
	err := Validate(s)
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 1 {
		t.Fatalf("expected one field error in details, got %#v", appErr.Details["fields"])
	}
	if fields[0].Field != "kind" || fields[0].Message != "is required" {
		t.Errorf("unexpected field error %+v", fields[0])
	}
}

func TestValidateNonStruct(t *testing.T) {
	if err := Validate("plain string"); err == nil {
		t.Error("expected error for non-struct input")
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"BaseURL":     "base_u_r_l",
		"Temperature": "temperature",
		"TempDir":     "temp_dir",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
