package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"sync"
)

// DefaultLanguage is loaded when the requested locale cannot be read
const DefaultLanguage = "en"

//go:embed locales/*.json
var embedded embed.FS

// ErrUnsupportedLanguage is returned for language codes with no locale file entry
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language describes one selectable UI language
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportedLanguages lists the languages with bundled locale files
var SupportedLanguages = []Language{
	{Code: "en", Name: "English"},
	{Code: "si", Name: "සිංහල"},
	{Code: "ta", Name: "தமிழ்"},
}

// IsSupported reports whether code is one of SupportedLanguages
func IsSupported(code string) bool {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// Translator resolves dotted keys against the active locale table.
// Lookups never fail: a missing or empty entry yields the key itself.
type Translator struct {
	mu           sync.RWMutex
	files        fs.FS
	language     string
	translations map[string]string
}

// New creates a translator backed by the embedded locale files, or by dir
// when it is non-empty. The returned translator has an empty table until
// Load is called.
func New(dir string) *Translator {
	var files fs.FS
	if dir != "" {
		files = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(embedded, "locales")
		if err != nil {
			// Only fails on an invalid path literal
			panic(err)
		}
		files = sub
	}
	return NewFromFS(files)
}

// NewFromFS creates a translator reading {lang}.json from files
func NewFromFS(files fs.FS) *Translator {
	return &Translator{
		files:        files,
		language:     DefaultLanguage,
		translations: map[string]string{},
	}
}

// Load switches the active table to lang. If that locale cannot be read the
// default language is tried, and if that fails too the table is emptied so
// every lookup returns its key. The returned error reports the first failure;
// the translator remains usable either way.
func (t *Translator) Load(lang string) error {
	table, err := t.read(lang)
	if err == nil {
		t.swap(lang, table)
		log.Printf("🌐 Locale: Loaded %s (%d keys)", lang, len(table))
		return nil
	}

	log.Printf("⚠️  Locale: Failed to load %s: %v", lang, err)
	if lang != DefaultLanguage {
		fallback, ferr := t.read(DefaultLanguage)
		if ferr == nil {
			t.swap(DefaultLanguage, fallback)
			log.Printf("🌐 Locale: Falling back to %s", DefaultLanguage)
			return err
		}
		log.Printf("⚠️  Locale: Failed to load fallback %s: %v", DefaultLanguage, ferr)
	}

	t.swap(lang, map[string]string{})
	return err
}

func (t *Translator) read(lang string) (map[string]string, error) {
	name := lang + ".json"
	if lang == "" || !fs.ValidPath(name) || strings.Contains(lang, "/") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	data, err := fs.ReadFile(t.files, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale %s: %w", lang, err)
	}

	var table map[string]string
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse locale %s: %w", lang, err)
	}
	if table == nil {
		table = map[string]string{}
	}
	return table, nil
}

func (t *Translator) swap(lang string, table map[string]string) {
	t.mu.Lock()
	t.language = lang
	t.translations = table
	t.mu.Unlock()
}

// Language returns the code of the locale actually in effect
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.language
}

// T looks up key and substitutes every {{name}} with replacements[name].
// Placeholders without a replacement are left untouched.
func (t *Translator) T(key string, replacements map[string]interface{}) string {
	t.mu.RLock()
	text := t.translations[key]
	t.mu.RUnlock()

	if text == "" {
		text = key
	}
	for name, value := range replacements {
		text = strings.ReplaceAll(text, "{{"+name+"}}", fmt.Sprint(value))
	}
	return text
}
