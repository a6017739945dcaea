package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"askbot/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Message keys every locale file must define
const (
	KeyWelcome         = "welcome"
	KeyShareContact    = "share_contact"
	KeyContactButton   = "contact_btn"
	KeyRegistered      = "registered"
	KeySearching       = "searching"
	KeyNoResults       = "no_results"
	KeyAdminOnly       = "admin_only"
	KeyBroadcastStart  = "broadcast_start"
	KeyBroadcastDone   = "broadcast_done"
	KeyInvalidLanguage = "invalid_language"
	KeyNotRegistered   = "not_registered"
)

var requiredKeys = []string{
	KeyWelcome, KeyShareContact, KeyContactButton, KeyRegistered, KeySearching,
	KeyNoResults, KeyAdminOnly, KeyBroadcastStart, KeyBroadcastDone,
	KeyInvalidLanguage, KeyNotRegistered,
}

// Catalog holds translations for all supported languages. It is immutable after Load.
type Catalog struct {
	translations map[domain.Language]map[string]string
}

// Load reads locales/<code>.yaml for every supported language from fsys
func Load(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{translations: make(map[domain.Language]map[string]string)}

	for _, lang := range domain.Languages() {
		filePath := path.Join("locales", string(lang)+".yaml")
		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return nil, fmt.Errorf("read translation file %s: %w", filePath, err)
		}

		var strs map[string]string
		if err := yaml.Unmarshal(data, &strs); err != nil {
			return nil, fmt.Errorf("parse translation file %s: %w", filePath, err)
		}

		for _, key := range requiredKeys {
			if strs[key] == "" {
				return nil, fmt.Errorf("translation file %s: missing key %q", filePath, key)
			}
		}
		c.translations[lang] = strs
	}

	return c, nil
}

// MustLoadEmbedded loads the locales compiled into the binary
func MustLoadEmbedded() *Catalog {
	c, err := Load(LocalesFS)
	if err != nil {
		panic(err)
	}
	return c
}

// T translates key into lang, falling back to the default language and then to the key itself
func (c *Catalog) T(lang domain.Language, key string, args ...interface{}) string {
	format, ok := c.translations[lang][key]
	if !ok {
		format, ok = c.translations[domain.DefaultLanguage][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}
