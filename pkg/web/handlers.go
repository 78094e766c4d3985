package web

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-sensesafe/pkg/assistant"
	"github.com/teslashibe/go-sensesafe/pkg/audioio"
	"github.com/teslashibe/go-sensesafe/pkg/detection"
	"github.com/teslashibe/go-sensesafe/pkg/hub"
	"github.com/teslashibe/go-sensesafe/pkg/imaging"
)

// TranscriptionStatus describes the speech chain.
type TranscriptionStatus struct {
	Providers  []string `json:"providers"`
	Configured bool     `json:"configured"`
}

// StatusResponse is returned by GET /api/status.
type StatusResponse struct {
	Online        bool                `json:"online"`
	Detection     detection.Status    `json:"detection"`
	Transcription TranscriptionStatus `json:"transcription"`
	Subscribers   int                 `json:"subscribers"`
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{
		Online:    s.gate.Reachable(),
		Detection: s.detector.Status(),
		Transcription: TranscriptionStatus{
			Providers:  s.chain.Providers(),
			Configured: s.chain.Configured(),
		},
		Subscribers: s.hub.ClientCount(),
	})
}

// ScanResponse is a detection result plus per-exit-type counts.
type ScanResponse struct {
	detection.Result
	Groups detection.Groups `json:"groups"`
	Count  int              `json:"count"`
}

// handleScan accepts an image as multipart field "image" or as the raw body.
// NV21 camera frames need ?format=nv21&width=W&height=H.
func (s *Server) handleScan(c *fiber.Ctx) error {
	data, err := imageBody(c)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "empty image")
	}

	var res detection.Result
	ctx := c.UserContext()
	if strings.EqualFold(c.Query("format"), "nv21") {
		img, err := imaging.FromNV21(data, c.QueryInt("width"), c.QueryInt("height"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		res = s.detector.Detect(ctx, img)
	} else {
		img, _, err := imaging.Decode(data)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, detection.SummaryInvalidImage)
		}
		res = s.detector.Detect(ctx, img)
	}

	if lang := c.Query("lang"); lang != "" {
		res.Summary = s.translator.Translate(ctx, res.Summary, lang)
	}

	resp := ScanResponse{Result: res, Groups: res.Groups(), Count: res.TotalCount()}
	s.hub.Publish(hub.NewEvent(hub.EventScan, res.ID, resp))
	return c.JSON(resp)
}

func imageBody(c *fiber.Ctx) ([]byte, error) {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return c.Body(), nil
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "multipart field \"image\" is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// handleTranscribe accepts PCM16 (?sample_rate=&channels=) or a WAV file
// and runs one voice turn on it.
func (s *Server) handleTranscribe(c *fiber.Ctx) error {
	body := c.Body()
	rate := c.QueryInt("sample_rate", audioio.DefaultSampleRate)
	channels := c.QueryInt("channels", 1)
	if audioio.IsWAV(body) {
		pcm, r, ch, err := audioio.DecodeWAV(body)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		body, rate, channels = pcm, r, ch
	}
	if rate <= 0 || channels <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "sample_rate and channels must be positive")
	}

	seg := speechSegment(bytes.Clone(body), rate, channels)
	reply := s.assistant.Handle(c.UserContext(), seg, c.Query("lang"))
	s.publishReply(reply)
	return c.JSON(reply)
}

func speechSegment(pcm []byte, rate, channels int) *audioio.Segment {
	pcm = audioio.ToSpeechFormat(pcm, rate, channels)
	samples := len(pcm) / 2
	return &audioio.Segment{
		PCM:        pcm,
		SampleRate: audioio.DefaultSampleRate,
		Channels:   1,
		Duration:   time.Duration(samples) * time.Second / audioio.DefaultSampleRate,
		StopReason: audioio.StopEndOfInput,
	}
}

type commandRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCommand(c *fiber.Ctx) error {
	var req commandRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "text is required")
	}
	cmd := s.assistant.Normalize(req.Text)
	s.hub.Publish(hub.NewEvent(hub.EventCommand, "", cmd))
	return c.JSON(cmd)
}

func (s *Server) publishReply(r assistant.Reply) {
	s.hub.Publish(hub.NewEvent(hub.EventTranscript, "", r))
	if r.Command.Recognized {
		s.hub.Publish(hub.NewEvent(hub.EventCommand, "", r.Command))
	}
}

func (s *Server) voiceContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.voiceTimeout)
}
