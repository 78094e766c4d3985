package audioio

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesToSamples(t *testing.T) {
	data := make([]byte, 6)
	binary.LittleEndian.PutUint16(data[0:], uint16(1000))
	binary.LittleEndian.PutUint16(data[2:], uint16(0xFFFF)) // -1
	binary.LittleEndian.PutUint16(data[4:], uint16(0x8000)) // -32768

	assert.Equal(t, []int16{1000, -1, -32768}, BytesToSamples(data))
	assert.Equal(t, data, SamplesToBytes([]int16{1000, -1, -32768}))
	assert.Len(t, BytesToSamples([]byte{1, 2, 3}), 1)
}

func TestRMS(t *testing.T) {
	assert.Equal(t, 0.0, RMS(nil))
	assert.Equal(t, 0.0, RMS([]int16{0, 0, 0}))
	assert.InDelta(t, 500.0, RMS([]int16{500, -500, 500, -500}), 1e-9)

	c := AudioChunk{Samples: []int16{300, -300}}
	assert.InDelta(t, 300.0, c.RMS(), 1e-9)
}

func TestDownmix(t *testing.T) {
	assert.Equal(t, []int16{150, -50}, Downmix([]int16{100, 200, -100, 0}, 2))
	mono := []int16{1, 2, 3}
	assert.Equal(t, mono, Downmix(mono, 1))
}

func TestResample(t *testing.T) {
	t.Run("same_rate", func(t *testing.T) {
		s := []int16{100, 200, 300}
		assert.Equal(t, s, Resample(s, 16000, 16000))
	})
	t.Run("downsample", func(t *testing.T) {
		s := make([]int16, 960)
		for i := range s {
			s[i] = int16(i)
		}
		out := Resample(s, 48000, 16000)
		require.Len(t, out, 320)
		assert.Equal(t, int16(3), out[1])
	})
	t.Run("upsample_interpolates", func(t *testing.T) {
		out := Resample([]int16{0, 100}, 8000, 16000)
		require.Len(t, out, 4)
		assert.Equal(t, []int16{0, 50, 100, 100}, out)
	})
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Resample(nil, 8000, 16000))
	})
}

func TestToSpeechFormat(t *testing.T) {
	pcm := SamplesToBytes(make([]int16, 4800*2)) // 100ms stereo at 48kHz
	out := ToSpeechFormat(pcm, 48000, 2)
	assert.Len(t, out, 1600*2)

	same := SamplesToBytes([]int16{1, 2})
	assert.Equal(t, same, ToSpeechFormat(same, 16000, 1))
}

func TestAudioChunk(t *testing.T) {
	var c AudioChunk
	c.FromBytes(SamplesToBytes(make([]int16, 3200)), 16000, 2)
	assert.Equal(t, 100*time.Millisecond, c.Duration())
	assert.Len(t, c.Bytes(), 6400)

	assert.Equal(t, time.Duration(0), (&AudioChunk{}).Duration())
}

func TestEncodeWAV(t *testing.T) {
	pcm := []byte{1, 0, 2, 0}
	wav := EncodeWAV(pcm, 16000, 1)

	require.Len(t, wav, 48)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, uint32(40), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(32000), binary.LittleEndian.Uint32(wav[28:32]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, pcm, wav[44:])
}

func TestDecodeWAV(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	got, rate, ch, err := DecodeWAV(EncodeWAV(pcm, 44100, 2))
	require.NoError(t, err)
	assert.Equal(t, pcm, got)
	assert.Equal(t, 44100, rate)
	assert.Equal(t, 2, ch)

	t.Run("skips extra chunks", func(t *testing.T) {
		wav := EncodeWAV(pcm, 16000, 1)
		list := []byte("LIST\x03\x00\x00\x00abc\x00")
		withList := append(append(append([]byte{}, wav[:36]...), list...), wav[36:]...)
		got, rate, _, err := DecodeWAV(withList)
		require.NoError(t, err)
		assert.Equal(t, pcm, got)
		assert.Equal(t, 16000, rate)
	})

	t.Run("rejects raw pcm", func(t *testing.T) {
		_, _, _, err := DecodeWAV(pcm)
		assert.ErrorIs(t, err, ErrNotWAV)
		assert.False(t, IsWAV(pcm))
	})
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1600, cfg.BufferSize())
	assert.Equal(t, 3200, cfg.BufferBytes())

	bad := cfg
	bad.SampleRate = 0
	assert.Error(t, bad.Validate())
	bad = cfg
	bad.BufferDuration = 0
	assert.Error(t, bad.Validate())
}
