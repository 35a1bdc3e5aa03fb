package codes

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Registry holds the five dictionaries used by one pipeline invocation.
// It is never mutated after construction and is shared without locks.
type Registry struct {
	Topography *Dictionary
	Morphology *Dictionary
	Sex        *Dictionary
	Behavior   *Dictionary
	Grade      *Dictionary
}

// NewRegistry assembles a registry, substituting empty dictionaries for nil ones
func NewRegistry(topography, morphology, sex, behavior, grade *Dictionary) *Registry {
	orEmpty := func(d *Dictionary, name string) *Dictionary {
		if d == nil {
			return Empty(name)
		}
		return d
	}
	return &Registry{
		Topography: orEmpty(topography, TableTopography),
		Morphology: orEmpty(morphology, TableMorphology),
		Sex:        orEmpty(sex, TableSex),
		Behavior:   orEmpty(behavior, TableBehavior),
		Grade:      orEmpty(grade, TableGrade),
	}
}

// FromMaps builds a registry from in-memory maps, all oriented code to description
func FromMaps(topography, morphology, sex, behavior, grade map[string]string) *Registry {
	return NewRegistry(
		FromMap(TableTopography, topography),
		FromMap(TableMorphology, morphology),
		FromMap(TableSex, sex),
		FromMap(TableBehavior, behavior),
		FromMap(TableGrade, grade),
	)
}

// LoadRegistry loads every table. A table that cannot be read or parsed is
// logged and replaced by an empty dictionary, so checks against it fail.
func LoadRegistry(ctx context.Context, loader *Loader, specs []TableSpec) *Registry {
	tables := make(map[string]*Dictionary, len(specs))
	for _, spec := range specs {
		dict, err := loader.Load(ctx, spec)
		if err != nil {
			loader.logger.WithError(err).WithFields(logrus.Fields{
				"table": spec.Name,
				"file":  spec.File,
			}).Error("Failed to load code dictionary, continuing with an empty table")
			dict = Empty(spec.Name)
		}
		tables[spec.Name] = dict
	}
	return NewRegistry(
		tables[TableTopography],
		tables[TableMorphology],
		tables[TableSex],
		tables[TableBehavior],
		tables[TableGrade],
	)
}

// Table returns a dictionary by name
func (r *Registry) Table(name string) (*Dictionary, bool) {
	switch name {
	case TableTopography:
		return r.Topography, true
	case TableMorphology:
		return r.Morphology, true
	case TableSex:
		return r.Sex, true
	case TableBehavior:
		return r.Behavior, true
	case TableGrade:
		return r.Grade, true
	}
	return nil, false
}
