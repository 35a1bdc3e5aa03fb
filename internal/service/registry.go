package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/pkg/codes"
)

// TablesFromConfig maps the configured file names onto table specs
func TablesFromConfig(cfg domain.CodesConfig) ([]codes.TableSpec, error) {
	morphologyKey, err := codes.ParseKeyedBy(cfg.MorphologyKeyedBy)
	if err != nil {
		return nil, fmt.Errorf("codes.morphology_keyed_by: %w", err)
	}

	specs := codes.DefaultTables()
	files := map[string]string{
		codes.TableTopography: cfg.TopographyFile,
		codes.TableMorphology: cfg.MorphologyFile,
		codes.TableSex:        cfg.SexFile,
		codes.TableBehavior:   cfg.BehaviorFile,
		codes.TableGrade:      cfg.GradeFile,
	}
	for i := range specs {
		if file := files[specs[i].Name]; file != "" {
			specs[i].File = file
		}
		if specs[i].Name == codes.TableMorphology {
			specs[i].KeyedBy = morphologyKey
		}
	}
	return specs, nil
}

// LoadRegistry builds the shared code registry from configuration
func LoadRegistry(ctx context.Context, cfg domain.CodesConfig, logger *logrus.Logger) (*codes.Registry, error) {
	specs, err := TablesFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	loader, err := codes.NewLoader(cfg.Dir, cfg.CacheSize, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create code loader: %w", err)
	}
	return codes.LoadRegistry(ctx, loader, specs), nil
}
