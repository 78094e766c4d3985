package web

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/teslashibe/go-sensesafe/pkg/audioio"
)

// endOfAudio is the text frame a client sends once it has no more audio.
const endOfAudio = "end"

// handleVoiceWS captures one utterance from binary PCM16 frames, replies
// with a JSON assistant.Reply and closes.
func (s *Server) handleVoiceWS(c *websocket.Conn) {
	rate := queryInt(c, "sample_rate", audioio.DefaultSampleRate)
	channels := queryInt(c, "channels", 1)
	lang := c.Query("lang")

	cfg := audioio.DefaultConfig()
	cfg.Backend = audioio.BackendPush
	src := audioio.NewPushSource(cfg, 256)
	rec := audioio.NewRecorder(audioio.StaticOpener(src),
		audioio.WithVAD(s.vad),
		audioio.WithRecorderLogger(s.logger),
	)

	ctx, cancel := s.voiceContext()
	defer cancel()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer src.CloseInput()
		for {
			mt, data, err := c.ReadMessage()
			if err != nil {
				return
			}
			switch mt {
			case websocket.BinaryMessage:
				if err := src.Push(audioio.ToSpeechFormat(data, rate, channels)); err != nil {
					return
				}
			case websocket.TextMessage:
				if string(data) == endOfAudio {
					return
				}
			}
		}
	}()

	reply := s.assistant.Listen(ctx, rec, lang)
	s.publishReply(reply)

	c.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.WriteJSON(reply); err != nil {
		s.logger.Warn("voice reply not delivered", "error", err)
	}
	c.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	// Unblock the reader before the connection is released.
	c.SetReadDeadline(time.Now())
	<-readDone
}

// handleEventsWS subscribes the connection to scan and command events.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	client := s.hub.Subscribe(ctx, c)
	cancel()
	if client == nil {
		s.logger.Warn("event hub not running")
		return
	}
	client.Serve()
}

func queryInt(c *websocket.Conn, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
