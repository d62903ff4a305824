// Package catalogfile reads review catalogs and answer sets from YAML files.
package catalogfile

import (
	"context"
	"errors"
	"fmt"
	"ftareview/internal/engine"
	"ftareview/internal/model"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the on-disk catalog layout
type File struct {
	Questions   []model.Question   `yaml:"questions"`
	Sections    []model.Section    `yaml:"sections"`
	SubAreas    []model.SubArea    `yaml:"sub_areas"`
	Rules       []model.Rule       `yaml:"rules"`
	LegacyRules []model.LegacyRule `yaml:"legacy_rules"`
}

// Data returns the catalog contents with legacy rules migrated and appended.
// Legacy rules on unknown question numbers are left out, see
// UnresolvedLegacyRules.
func (f *File) Data() engine.CatalogData {
	migrated, _ := engine.MigrateLegacyRules(f.Questions, f.LegacyRules)
	rules := append([]model.Rule(nil), f.Rules...)
	rules = append(rules, migrated...)
	return engine.CatalogData{
		Questions: f.Questions,
		Sections:  f.Sections,
		SubAreas:  f.SubAreas,
		Rules:     rules,
	}
}

// UnresolvedLegacyRules lists legacy rules whose question number matches no question
func (f *File) UnresolvedLegacyRules() []model.LegacyRule {
	_, unresolved := engine.MigrateLegacyRules(f.Questions, f.LegacyRules)
	return unresolved
}

// Decode reads a catalog document. Unknown fields are rejected.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &f, nil
}

// Read loads a catalog file from disk
func Read(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer fh.Close()

	f, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Source serves catalog data from a YAML file. The file is re-read on every
// Load so a reload picks up edits. Logger may be nil.
type Source struct {
	Path   string
	Logger *zap.Logger
}

// Load reads the file and returns its catalog data
func (s Source) Load(ctx context.Context) (engine.CatalogData, error) {
	if err := ctx.Err(); err != nil {
		return engine.CatalogData{}, err
	}
	f, err := Read(s.Path)
	if err != nil {
		return engine.CatalogData{}, err
	}
	if s.Logger != nil {
		for _, lr := range f.UnresolvedLegacyRules() {
			s.Logger.Warn("dropping legacy rule on unknown question",
				zap.String("sub_area", lr.SubAreaID),
				zap.Int("question_number", lr.QuestionNumber),
			)
		}
	}
	return f.Data(), nil
}

// ReadAnswers loads an answer set. Values may be strings, numbers, booleans
// or lists; lists are joined with commas the way multi-select answers are
// submitted. JSON documents are accepted as YAML.
func ReadAnswers(path string) (model.AnswerSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}
	return DecodeAnswers(data)
}

// DecodeAnswers parses an answer document, see ReadAnswers
func DecodeAnswers(data []byte) (model.AnswerSet, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}

	answers := make(model.AnswerSet, len(raw))
	for key, node := range raw {
		switch node.Kind {
		case yaml.ScalarNode:
			if node.Tag == "!!null" {
				continue
			}
			answers[key] = node.Value
		case yaml.SequenceNode:
			var joined string
			for i, item := range node.Content {
				if item.Kind != yaml.ScalarNode {
					return nil, fmt.Errorf("answer %q: list items must be scalars", key)
				}
				if i > 0 {
					joined += ","
				}
				joined += item.Value
			}
			answers[key] = joined
		default:
			return nil, fmt.Errorf("answer %q: unsupported value", key)
		}
	}
	return answers, nil
}
