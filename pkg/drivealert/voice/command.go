package voice

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"

	daerrors "github.com/randalmurphal/drivealert/pkg/drivealert/errors"
)

// CommandPlayer plays audio files through an external player binary.
type CommandPlayer struct {
	Binary string
	Args   []string
}

// NewCommandPlayer returns a player for the host OS: afplay on macOS, aplay
// elsewhere.
func NewCommandPlayer() *CommandPlayer {
	if runtime.GOOS == "darwin" {
		return &CommandPlayer{Binary: "afplay"}
	}
	return &CommandPlayer{Binary: "aplay", Args: []string{"-q"}}
}

// Play starts the player and returns a channel closed when it exits.
func (p *CommandPlayer) Play(ctx context.Context, path string) (<-chan struct{}, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, daerrors.Missing(err, "audio asset "+path)
	}

	args := append(append([]string{}, p.Args...), path)
	cmd := exec.CommandContext(ctx, p.Binary, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", p.Binary, err)
	}

	done := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	return done, nil
}

// CommandSpeaker speaks through a command line TTS engine such as espeak.
// The engine rate flag receives BaseRate scaled by VoiceParams.Rate.
type CommandSpeaker struct {
	Binary    string
	RateFlag  string
	VoiceFlag string
	BaseRate  int
}

// NewCommandSpeaker returns an espeak speaker, or say on macOS.
func NewCommandSpeaker() *CommandSpeaker {
	if runtime.GOOS == "darwin" {
		return &CommandSpeaker{Binary: "say", RateFlag: "-r", BaseRate: 200}
	}
	return &CommandSpeaker{Binary: "espeak", RateFlag: "-s", VoiceFlag: "-v", BaseRate: 175}
}

// Speak runs the engine and waits for it to finish.
func (s *CommandSpeaker) Speak(ctx context.Context, utterance string, params VoiceParams) error {
	var args []string
	if s.RateFlag != "" && s.BaseRate > 0 {
		rate := s.BaseRate
		if params.Rate > 0 {
			rate = int(float64(s.BaseRate) * params.Rate)
		}
		args = append(args, s.RateFlag, strconv.Itoa(rate))
	}
	if s.VoiceFlag != "" && params.Language != "" {
		args = append(args, s.VoiceFlag, params.Language)
	}
	args = append(args, utterance)

	if err := exec.CommandContext(ctx, s.Binary, args...).Run(); err != nil {
		return fmt.Errorf("%s: %w", s.Binary, err)
	}
	return nil
}
