package gemini

import (
	"context"
	"fmt"
	"strings"

	langpkg "reelsmith/internal/language"
	"reelsmith/internal/services"
)

const translatePrompt = "Translate the following text to %s. Only return the translated text, nothing else.\n\nText: %s"

// Translate returns text rendered in targetLanguage. Blank text is returned
// unchanged without a request.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	target := langpkg.DisplayName(targetLanguage)
	payload := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: fmt.Sprintf(translatePrompt, target, text)}},
		}},
	}
	resp, err := c.generate(ctx, c.cfg.TranslateModel, payload, "translate")
	if err != nil {
		return "", err
	}
	p, ok := resp.firstPart(func(p part) bool { return strings.TrimSpace(p.Text) != "" })
	if !ok {
		return "", services.Wrap(services.ErrExternalService, "gemini", "translate", "empty translation ("+resp.emptyReason()+")", nil)
	}
	return strings.TrimSpace(p.Text), nil
}

// HealthCheck issues a minimal translate request to verify the API key and
// model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	payload := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: "Respond with OK."}},
		}},
	}
	resp, err := c.generate(ctx, c.cfg.TranslateModel, payload, "health")
	if err != nil {
		return err
	}
	if _, ok := resp.firstPart(func(p part) bool { return strings.TrimSpace(p.Text) != "" }); !ok {
		return services.Wrap(services.ErrExternalService, "gemini", "health", "empty response ("+resp.emptyReason()+")", nil)
	}
	return nil
}
