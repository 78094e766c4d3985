// Package command maps recognized speech onto a small fixed vocabulary of
// action keys.
package command

import (
	"strings"
)

// Action keys of the default vocabulary.
const (
	KeyScan    = "scan"
	KeyHelp    = "help"
	KeySafe    = "safe"
	KeyTrapped = "trapped"
)

// DefaultWakeWord is stripped from every utterance.
const DefaultWakeWord = "sensa"

// Entry maps one action key to the words that trigger it.
type Entry struct {
	Key      string   `yaml:"key" json:"key"`
	Synonyms []string `yaml:"synonyms" json:"synonyms"`
}

// DefaultVocabulary returns the built-in table. Earlier entries win.
func DefaultVocabulary() []Entry {
	return []Entry{
		{Key: KeyScan, Synonyms: []string{"scan", "look", "check", "surroundings", "area", "see"}},
		{Key: KeyHelp, Synonyms: []string{"help", "sos", "emergency", "danger", "alert"}},
		{Key: KeySafe, Synonyms: []string{"safe", "fine", "ok", "good"}},
		{Key: KeyTrapped, Synonyms: []string{"trapped", "stuck", "blocked"}},
	}
}

// Command is the normalized form of one utterance.
type Command struct {
	Raw        string `json:"raw"`
	Key        string `json:"key"`
	Recognized bool   `json:"recognized"`
}

// Normalizer matches utterances against an ordered vocabulary.
// It is immutable and safe for concurrent use.
type Normalizer struct {
	entries   []Entry
	wakeWords []string
}

// NewNormalizer creates a normalizer. Synonyms and wake words are matched
// case-insensitively; empty ones are dropped.
func NewNormalizer(entries []Entry, wakeWords ...string) *Normalizer {
	n := &Normalizer{}
	for _, e := range entries {
		key := strings.TrimSpace(e.Key)
		if key == "" {
			continue
		}
		clean := Entry{Key: key}
		for _, s := range e.Synonyms {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				clean.Synonyms = append(clean.Synonyms, s)
			}
		}
		n.entries = append(n.entries, clean)
	}
	for _, w := range wakeWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			n.wakeWords = append(n.wakeWords, w)
		}
	}
	return n
}

// Default returns a normalizer with the built-in vocabulary and wake word.
func Default() *Normalizer {
	return NewNormalizer(DefaultVocabulary(), DefaultWakeWord)
}

// Keys returns the action keys in match order.
func (n *Normalizer) Keys() []string {
	keys := make([]string, len(n.entries))
	for i, e := range n.entries {
		keys[i] = e.Key
	}
	return keys
}

// Normalize returns the first key whose synonym occurs in the cleaned text,
// or the cleaned text itself.
func (n *Normalizer) Normalize(raw string) string {
	return n.Recognize(raw).Key
}

// Recognize is Normalize with the match reported.
func (n *Normalizer) Recognize(raw string) Command {
	clean := n.Clean(raw)
	for _, e := range n.entries {
		for _, s := range e.Synonyms {
			if strings.Contains(clean, s) {
				return Command{Raw: raw, Key: e.Key, Recognized: true}
			}
		}
	}
	return Command{Raw: raw, Key: clean}
}

// Clean lower-cases raw, removes every wake word occurrence and collapses
// whitespace.
func (n *Normalizer) Clean(raw string) string {
	s := strings.ToLower(raw)
	for _, w := range n.wakeWords {
		s = strings.ReplaceAll(s, w, " ")
	}
	return strings.Join(strings.Fields(s), " ")
}
