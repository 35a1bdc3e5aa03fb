// Package codes loads the static coding-standard dictionaries (topography,
// morphology, sex, behavior, grade) and exposes them as read-only lookups.
package codes

import (
	"hash/fnv"
	"sort"
	"strconv"
)

// Table names
const (
	TableTopography = "topography"
	TableMorphology = "morphology"
	TableSex        = "sex"
	TableBehavior   = "behavior"
	TableGrade      = "grade"
)

// TableNames lists every table in load order
var TableNames = []string{TableTopography, TableMorphology, TableSex, TableBehavior, TableGrade}

// Entry is one code/description pair
type Entry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Dictionary is an immutable code to description mapping.
// Entries keep the order in which they appeared in the source file.
type Dictionary struct {
	name    string
	entries []Entry
	byCode  map[string]int
	byDesc  map[string]string
	digest  string
}

// NewDictionary builds a dictionary from ordered entries. A repeated code
// keeps its first position and takes the last description.
func NewDictionary(name string, entries []Entry) *Dictionary {
	d := &Dictionary{
		name:   name,
		byCode: make(map[string]int, len(entries)),
		byDesc: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		if i, ok := d.byCode[e.Code]; ok {
			d.entries[i].Description = e.Description
			continue
		}
		d.byCode[e.Code] = len(d.entries)
		d.entries = append(d.entries, e)
	}
	h := fnv.New64a()
	for _, e := range d.entries {
		if _, ok := d.byDesc[e.Description]; !ok {
			d.byDesc[e.Description] = e.Code
		}
		h.Write([]byte(e.Code))
		h.Write([]byte{0})
		h.Write([]byte(e.Description))
		h.Write([]byte{0})
	}
	d.digest = strconv.FormatUint(h.Sum64(), 16)
	return d
}

// FromMap builds a dictionary from an unordered map, sorting codes for determinism
func FromMap(name string, m map[string]string) *Dictionary {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Code: k, Description: m[k]})
	}
	return NewDictionary(name, entries)
}

// Empty returns a dictionary with no entries. Every membership check against it fails.
func Empty(name string) *Dictionary {
	return NewDictionary(name, nil)
}

// Name returns the table name
func (d *Dictionary) Name() string { return d.name }

// Digest identifies the dictionary content; equal content gives equal digests
func (d *Dictionary) Digest() string { return d.digest }

// Len returns the number of distinct codes
func (d *Dictionary) Len() int { return len(d.entries) }

// Lookup returns the description for a code
func (d *Dictionary) Lookup(code string) (string, bool) {
	i, ok := d.byCode[code]
	if !ok {
		return "", false
	}
	return d.entries[i].Description, true
}

// HasCode reports whether code is a key of the dictionary
func (d *Dictionary) HasCode(code string) bool {
	_, ok := d.byCode[code]
	return ok
}

// HasDescription reports whether description is a value of the dictionary
func (d *Dictionary) HasDescription(description string) bool {
	_, ok := d.byDesc[description]
	return ok
}

// CodeFor returns the first code whose description equals description
func (d *Dictionary) CodeFor(description string) (string, bool) {
	code, ok := d.byDesc[description]
	return code, ok
}

// Codes returns all codes in source order
func (d *Dictionary) Codes() []string {
	out := make([]string, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.Code
	}
	return out
}

// Descriptions returns all descriptions in source order, duplicates included
func (d *Dictionary) Descriptions() []string {
	out := make([]string, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.Description
	}
	return out
}

// Entries returns a copy of the entries in source order
func (d *Dictionary) Entries() []Entry {
	return append([]Entry(nil), d.entries...)
}
