package gemini

import (
	"context"
	"encoding/base64"
	"math"
	"slices"
	"strconv"
	"strings"

	"reelsmith/internal/services"
)

// PCM format returned by the TTS models.
const (
	SampleRate     = 24000
	Channels       = 1
	BytesPerSample = 2
)

// DefaultVoice is used when no voice is configured.
const DefaultVoice = "Puck"

// Voices lists the prebuilt single-speaker voices.
var Voices = []string{
	"Puck", "Charon", "Kore", "Fenrir", "Aoede",
	"Zephyr", "Leda", "Orus", "Callirrhoe", "Autonoe",
	"Enceladus", "Iapetus", "Umbriel", "Algieba", "Despina",
	"Erinome", "Algenib", "Rasalgethi", "Laomedeia", "Achernar",
	"Alnilam", "Schedar", "Gacrux", "Pulcherrima", "Achird",
	"Zubenelgenubi", "Vindemiatrix", "Sadachbia", "Sadaltager", "Sulafat",
}

// ValidVoice reports whether name is a prebuilt voice.
func ValidVoice(name string) bool {
	return slices.Contains(Voices, name)
}

// Synthesize converts text to raw PCM speech. speed and styleHint are passed
// to the model as spoken directions; speed 1 and an empty hint send the text
// as-is.
func (c *Client) Synthesize(ctx context.Context, text, voice string, speed float64, styleHint string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, services.Wrap(services.ErrValidation, "gemini", "synthesize", "text required", nil)
	}
	if voice == "" {
		voice = DefaultVoice
	}
	if !ValidVoice(voice) {
		return nil, services.Wrap(services.ErrValidation, "gemini", "synthesize", "unknown voice "+strconv.Quote(voice), nil)
	}

	payload := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: SpeechPrompt(text, speed, styleHint)}},
		}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voice}},
			},
		},
	}
	resp, err := c.generate(ctx, c.cfg.TTSModel, payload, "synthesize")
	if err != nil {
		return nil, err
	}
	p, ok := resp.firstPart(func(p part) bool { return p.InlineData != nil && p.InlineData.Data != "" })
	if !ok {
		return nil, services.Wrap(services.ErrExternalService, "gemini", "synthesize", "no audio in response ("+resp.emptyReason()+")", nil)
	}
	pcm, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "gemini", "synthesize", "decode audio", err)
	}
	if len(pcm)%BytesPerSample != 0 {
		pcm = pcm[:len(pcm)-len(pcm)%BytesPerSample]
	}
	return pcm, nil
}

// SpeechPrompt prefixes text with delivery directions.
func SpeechPrompt(text string, speed float64, styleHint string) string {
	var directions []string
	if hint := strings.TrimSpace(styleHint); hint != "" {
		directions = append(directions, hint)
	}
	if speed > 0 && math.Abs(speed-1) > 0.01 {
		directions = append(directions, "at "+strconv.FormatFloat(speed, 'f', -1, 64)+"x normal speed")
	}
	if len(directions) == 0 {
		return text
	}
	return "Say " + strings.Join(directions, ", ") + ": " + text
}

// PCMSeconds returns the playback length of 24 kHz mono s16le PCM.
func PCMSeconds(pcm []byte) float64 {
	return float64(len(pcm)) / float64(SampleRate*Channels*BytesPerSample)
}
