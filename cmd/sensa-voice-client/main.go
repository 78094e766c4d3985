// sensa-voice-client streams a PCM16 or WAV file to /ws/voice and prints
// the server's reply.
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-sensesafe/pkg/audioio"
)

func main() {
	server := flag.String("url", "ws://localhost:8080/ws/voice", "Voice websocket URL")
	lang := flag.String("lang", "", "Recognition language")
	rate := flag.Int("rate", audioio.DefaultSampleRate, "Sample rate of raw PCM input")
	channels := flag.Int("channels", 1, "Channel count of raw PCM input")
	chunk := flag.Duration("chunk", 100*time.Millisecond, "Audio per frame")
	realtime := flag.Bool("realtime", true, "Pace frames at playback speed")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] audio.(wav|pcm)\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fatal("read audio: %v", err)
	}
	pcm := data
	if audioio.IsWAV(data) {
		pcm, *rate, *channels, err = audioio.DecodeWAV(data)
		if err != nil {
			fatal("decode wav: %v", err)
		}
	}

	u, err := url.Parse(*server)
	if err != nil {
		fatal("invalid url: %v", err)
	}
	q := u.Query()
	q.Set("sample_rate", strconv.Itoa(*rate))
	q.Set("channels", strconv.Itoa(*channels))
	if *lang != "" {
		q.Set("lang", *lang)
	}
	u.RawQuery = q.Encode()

	ws, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fatal("connect: %v", err)
	}
	defer ws.Close()

	// A reply may arrive before the file is fully sent when the server
	// detects the end of the utterance early.
	replies := make(chan []byte, 1)
	go func() {
		defer close(replies)
		for {
			mt, msg, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if mt == websocket.TextMessage {
				replies <- msg
				return
			}
		}
	}()

	frame := int(chunk.Seconds()*float64(*rate)) * *channels * 2
	if frame <= 0 {
		frame = 3200
	}
	sent := 0
send:
	for off := 0; off < len(pcm); off += frame {
		end := min(off+frame, len(pcm))
		if err := ws.WriteMessage(websocket.BinaryMessage, pcm[off:end]); err != nil {
			break
		}
		sent += end - off
		if *realtime {
			select {
			case msg, ok := <-replies:
				if ok {
					fmt.Println(string(msg))
					return
				}
				break send
			case <-time.After(*chunk):
			}
		}
	}
	ws.WriteMessage(websocket.TextMessage, []byte("end"))
	fmt.Fprintf(os.Stderr, "sent %d bytes\n", sent)

	select {
	case msg, ok := <-replies:
		if !ok {
			fatal("connection closed without a reply")
		}
		fmt.Println(string(msg))
	case <-time.After(60 * time.Second):
		fatal("timed out waiting for reply")
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
