package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/minwon/pkg/minwon/internalerr"
)

// Keywords represents the keyword configuration
type Keywords struct {
	Location  []string `yaml:"location"`
	Complaint []string `yaml:"complaint"`
}

// LoadKeywords loads the location and complaint keyword lists from a YAML file.
// List order is significant and preserved.
func LoadKeywords(path string) (*Keywords, error) {
	var kw Keywords
	if err := readYAML(path, &kw); err != nil {
		return nil, err
	}
	return &kw, nil
}

// Lexicon represents extra analyzer vocabulary
type Lexicon struct {
	Nouns       []string `yaml:"nouns"`
	ProperNouns []string `yaml:"proper_nouns"`
	NonNouns    []string `yaml:"non_nouns"`
}

// LoadLexicon loads analyzer vocabulary from a YAML file
func LoadLexicon(path string) (*Lexicon, error) {
	var lex Lexicon
	if err := readYAML(path, &lex); err != nil {
		return nil, err
	}
	return &lex, nil
}

// Case is a sample complaint used for batch verification
type Case struct {
	ID       string `yaml:"id"`
	Text     string `yaml:"text"`
	Address  string `yaml:"address"`
	Category string `yaml:"category"`
}

// Cases represents a batch verification file
type Cases struct {
	Cases []Case `yaml:"cases"`
}

// LoadCases loads batch verification cases from a YAML file.
// Cases without text are rejected; missing IDs are numbered from 1.
func LoadCases(path string) ([]Case, error) {
	var cs Cases
	if err := readYAML(path, &cs); err != nil {
		return nil, err
	}

	for i := range cs.Cases {
		if strings.TrimSpace(cs.Cases[i].Text) == "" {
			return nil, fmt.Errorf("%w: case %d has no text", internalerr.ErrInvalidInput, i+1)
		}
		if cs.Cases[i].ID == "" {
			cs.Cases[i].ID = fmt.Sprintf("CASE-%03d", i+1)
		}
	}
	return cs.Cases, nil
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}
