package command

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// VocabularyFile is the on-disk vocabulary format.
//
//	wake_words: [sensa]
//	commands:
//	  - key: scan
//	    synonyms: [scan, look]
type VocabularyFile struct {
	WakeWords []string `yaml:"wake_words"`
	Commands  []Entry  `yaml:"commands"`
}

// ErrEmptyVocabulary is returned for a file with no commands.
var ErrEmptyVocabulary = errors.New("command: vocabulary has no commands")

// ParseVocabulary decodes a YAML vocabulary.
func ParseVocabulary(data []byte) (VocabularyFile, error) {
	var v VocabularyFile
	if err := yaml.Unmarshal(data, &v); err != nil {
		return VocabularyFile{}, fmt.Errorf("command: parse vocabulary: %w", err)
	}
	if len(v.Commands) == 0 {
		return VocabularyFile{}, ErrEmptyVocabulary
	}
	for i, c := range v.Commands {
		if c.Key == "" {
			return VocabularyFile{}, fmt.Errorf("command: entry %d has no key", i)
		}
	}
	return v, nil
}

// Load builds a normalizer from a YAML file. An empty path yields the
// default vocabulary with wakeWord. Wake words in the file replace wakeWord.
func Load(path, wakeWord string) (*Normalizer, error) {
	if path == "" {
		return NewNormalizer(DefaultVocabulary(), wakeWord), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("command: read vocabulary: %w", err)
	}
	v, err := ParseVocabulary(data)
	if err != nil {
		return nil, err
	}
	wake := v.WakeWords
	if len(wake) == 0 {
		wake = []string{wakeWord}
	}
	return NewNormalizer(v.Commands, wake...), nil
}
