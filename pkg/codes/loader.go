package codes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// KeyedBy declares which side of a source file holds the code
type KeyedBy int

const (
	// KeyedByCode files map code to description
	KeyedByCode KeyedBy = iota
	// KeyedByDescription files map description to code and are inverted on load
	KeyedByDescription
)

func (k KeyedBy) String() string {
	if k == KeyedByDescription {
		return "description"
	}
	return "code"
}

// ParseKeyedBy parses "code" or "description"
func ParseKeyedBy(s string) (KeyedBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "code":
		return KeyedByCode, nil
	case "description":
		return KeyedByDescription, nil
	}
	return KeyedByCode, fmt.Errorf("unknown dictionary orientation %q", s)
}

// TableSpec locates one dictionary file
type TableSpec struct {
	Name    string
	File    string
	KeyedBy KeyedBy
}

// DefaultTables returns the standard table layout
func DefaultTables() []TableSpec {
	return []TableSpec{
		{Name: TableTopography, File: "topography_codes.json", KeyedBy: KeyedByCode},
		{Name: TableMorphology, File: "morphology_codes.json", KeyedBy: KeyedByDescription},
		{Name: TableSex, File: "sex.json", KeyedBy: KeyedByCode},
		{Name: TableBehavior, File: "behavior_codes.json", KeyedBy: KeyedByCode},
		{Name: TableGrade, File: "grade_codes.json", KeyedBy: KeyedByCode},
	}
}

const previewEntries = 4

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type cachedTable struct {
	modTime time.Time
	size    int64
	dict    *Dictionary
}

// Loader reads dictionary files from a directory. Parsed tables are cached
// by path and reparsed when the file's modification time or size changes.
type Loader struct {
	dir    string
	cache  *lru.Cache[string, cachedTable]
	logger *logrus.Logger
}

// NewLoader creates a loader rooted at dir
func NewLoader(dir string, cacheSize int, logger *logrus.Logger) (*Loader, error) {
	if cacheSize <= 0 {
		cacheSize = len(TableNames)
	}
	cache, err := lru.New[string, cachedTable](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create dictionary cache: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Loader{dir: dir, cache: cache, logger: logger}, nil
}

// Dir returns the directory the loader reads from
func (l *Loader) Dir() string { return l.dir }

// Load reads and parses one table
func (l *Loader) Load(ctx context.Context, spec TableSpec) (*Dictionary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := spec.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dir, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s dictionary: %w", spec.Name, err)
	}

	key := spec.KeyedBy.String() + ":" + path
	if cached, ok := l.cache.Get(key); ok && cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		return cached.dict, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s dictionary: %w", spec.Name, err)
	}

	entries, err := parseFlatObject(bytes.TrimPrefix(data, utf8BOM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s dictionary %s: %w", spec.Name, path, err)
	}
	if spec.KeyedBy == KeyedByDescription {
		for i := range entries {
			entries[i].Code, entries[i].Description = entries[i].Description, entries[i].Code
		}
	}

	dict := NewDictionary(spec.Name, entries)
	l.cache.Add(key, cachedTable{modTime: info.ModTime(), size: info.Size(), dict: dict})
	l.logPreview(dict, path)

	return dict, nil
}

func (l *Loader) logPreview(dict *Dictionary, path string) {
	if !l.logger.IsLevelEnabled(logrus.DebugLevel) {
		l.logger.WithFields(logrus.Fields{
			"table":   dict.Name(),
			"entries": dict.Len(),
		}).Info("Loaded code dictionary")
		return
	}

	preview := make(map[string]string, previewEntries)
	for i, e := range dict.entries {
		if i == previewEntries {
			break
		}
		preview[e.Code] = e.Description
	}
	l.logger.WithFields(logrus.Fields{
		"table":   dict.Name(),
		"path":    path,
		"entries": dict.Len(),
		"preview": preview,
	}).Debug("Loaded code dictionary")
}

// parseFlatObject decodes a JSON object of scalar values, keeping key order.
// Numbers and booleans are kept in their textual form.
func parseFlatObject(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}

	var entries []Entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		var value string
		switch v := raw.(type) {
		case string:
			value = v
		case json.Number:
			value = v.String()
		case bool:
			value = fmt.Sprint(v)
		case nil:
			continue
		default:
			return nil, fmt.Errorf("value for %q must be a scalar", key)
		}
		entries = append(entries, Entry{Code: key, Description: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}
