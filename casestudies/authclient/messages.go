package authclient

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Default is the language used when none is requested.
var Default = language.English

//go:embed locales/*.yaml
var localesFS embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

var messageKeys = map[error]string{
	ErrInvalidUserPassword:      "auth.invalid_user_password",
	ErrInvalidTwoFactor:         "auth.invalid_two_factor",
	ErrInvalidIntermediateToken: "auth.invalid_intermediate_token",
}

func init() {
	if err := registerCatalogs(localesFS); err != nil {
		panic(err)
	}
}

func registerCatalogs(catalogFS fs.FS) error {
	paths, err := fs.Glob(catalogFS, "locales/*.yaml")
	if err != nil {
		return fmt.Errorf("glob locale catalogs: %w", err)
	}
	sort.Strings(paths)
	for _, path := range paths {
		data, err := fs.ReadFile(catalogFS, path)
		if err != nil {
			return fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("parse catalog %s: %w", path, err)
		}
		tag, err := language.Parse(file.Locale)
		if err != nil {
			return fmt.Errorf("catalog %s: parse locale tag %q: %w", path, file.Locale, err)
		}
		for key, value := range file.Messages {
			if err := message.SetString(tag, key, value); err != nil {
				return fmt.Errorf("catalog %s: register %q: %w", path, key, err)
			}
		}
	}
	return nil
}

// Describe returns the user-facing description of err in lang.
func Describe(err error, lang language.Tag) string {
	p := message.NewPrinter(lang)
	for known, key := range messageKeys {
		if errors.Is(err, known) {
			return p.Sprintf(key)
		}
	}
	return p.Sprintf("auth.unknown", err)
}

// Alert is the dismissible message screens show for failed requests.
type Alert struct {
	Title string
}

// AlertFor describes err as an alert in lang.
func AlertFor(err error, lang language.Tag) *Alert {
	return &Alert{Title: Describe(err, lang)}
}
