package engine

import (
	"bytes"
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/trufflesecurity/trufflehog/v3/pkg/detectors"
	"github.com/trufflesecurity/trufflehog/v3/pkg/engine/defaults"
)

// TruffleHog runs TruffleHog's default detectors without verification.
// Secrets are only redacted, never sent anywhere.
type TruffleHog struct {
	detectors []detectors.Detector
}

var _ Detector = (*TruffleHog)(nil)

func NewTruffleHog() *TruffleHog {
	loaded := defaults.DefaultDetectors()
	log.Debug().Int("count", len(loaded)).Msg("Loaded TruffleHog detectors")
	return &TruffleHog{detectors: loaded}
}

func (t *TruffleHog) Name() string {
	return "trufflehog"
}

func (t *TruffleHog) Detect(ctx context.Context, text []byte) ([]Secret, error) {
	lowered := bytes.ToLower(text)
	secrets := []Secret{}

	for _, detector := range t.detectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !containsKeyword(lowered, detector.Keywords()) {
			continue
		}

		results, err := detector.FromData(ctx, false, text)
		if err != nil {
			log.Trace().Err(err).Str("detector", detector.Type().String()).Msg("TruffleHog detector failed")
			continue
		}

		for _, result := range results {
			value := result.Raw
			if !bytes.Contains(text, value) && len(result.RawV2) > 0 && bytes.Contains(text, result.RawV2) {
				value = result.RawV2
			}
			if len(value) == 0 || !bytes.Contains(text, value) {
				log.Trace().Str("detector", result.DetectorType.String()).Msg("TruffleHog secret not found verbatim, skipping")
				continue
			}
			secrets = append(secrets, Secret{Family: result.DetectorType.String(), Value: value})
		}
	}

	return secrets, nil
}

func containsKeyword(lowered []byte, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	for _, keyword := range keywords {
		if bytes.Contains(lowered, []byte(strings.ToLower(keyword))) {
			return true
		}
	}
	return false
}
