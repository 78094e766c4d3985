package command

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	n := Default()
	tests := []struct {
		in   string
		want string
	}{
		{"sensa scan the area", KeyScan},
		{"I need help now", KeyHelp},
		{"banana", "banana"},
		{"SENSA  I'm   FINE", KeySafe},
		{"we are stuck here", KeyTrapped},
		{"what do you see", KeyScan},
		{"help, look around", KeyScan},
		{"  Sensa  ", ""},
		{"Sensa Banana Split", "banana split"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestRecognize(t *testing.T) {
	n := Default()

	c := n.Recognize("Sensa, SOS!")
	assert.Equal(t, Command{Raw: "Sensa, SOS!", Key: KeyHelp, Recognized: true}, c)

	c = n.Recognize("open the fridge")
	assert.False(t, c.Recognized)
	assert.Equal(t, "open the fridge", c.Key)
}

func TestOrderDecidesTies(t *testing.T) {
	n := NewNormalizer([]Entry{
		{Key: "first", Synonyms: []string{"go"}},
		{Key: "second", Synonyms: []string{"go"}},
	})
	assert.Equal(t, "first", n.Normalize("go now"))
	assert.Equal(t, []string{"first", "second"}, n.Keys())
}

func TestNewNormalizerDropsBlanks(t *testing.T) {
	n := NewNormalizer([]Entry{
		{Key: " ", Synonyms: []string{"x"}},
		{Key: "exit", Synonyms: []string{"", " Door "}},
	}, "", "Hey")
	assert.Equal(t, []string{"exit"}, n.Keys())
	assert.Equal(t, "exit", n.Normalize("hey where is the DOOR"))
	assert.Equal(t, "nothing", n.Normalize("hey nothing"))
}

func TestNormalizerConcurrentUse(t *testing.T) {
	n := Default()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, KeyScan, n.Normalize("sensa scan"))
		}()
	}
	wg.Wait()
}

func TestLoad(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		n, err := Load("", "sensa")
		require.NoError(t, err)
		assert.Equal(t, []string{KeyScan, KeyHelp, KeySafe, KeyTrapped}, n.Keys())
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vocab.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
wake_words: [hola sensa, sensa]
commands:
  - key: help
    synonyms: [ayuda, socorro]
  - key: scan
    synonyms: [buscar, mira]
`), 0o600))

		n, err := Load(path, "ignored")
		require.NoError(t, err)
		assert.Equal(t, "help", n.Normalize("Hola Sensa, ayuda"))
		assert.Equal(t, "scan", n.Normalize("mira"))
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "sensa")
		assert.Error(t, err)
	})
}

func TestParseVocabulary(t *testing.T) {
	_, err := ParseVocabulary([]byte("commands: []"))
	assert.ErrorIs(t, err, ErrEmptyVocabulary)

	_, err = ParseVocabulary([]byte("commands:\n  - synonyms: [x]\n"))
	assert.Error(t, err)

	_, err = ParseVocabulary([]byte("commands: {"))
	assert.Error(t, err)
}
