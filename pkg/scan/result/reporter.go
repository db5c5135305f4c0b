package result

import (
	"sync"

	"github.com/alexai-ops/secretscrub/pkg/format"
	"github.com/alexai-ops/secretscrub/pkg/logging"
	"github.com/alexai-ops/secretscrub/pkg/scanner/types"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/zerolog/log"
	"github.com/rxwycdh/rxhash"
)

// previewChars is the number of leading secret characters shown in hit events
const previewChars = 4

type reportKey struct {
	File   string
	Family string
	Secret string
}

// Reporter writes one hit event per distinct (file, family, secret).
type Reporter struct {
	action logging.Action
	seen   mapset.Set[string]
	mu     sync.Mutex
}

func NewReporter(dryRun bool) *Reporter {
	action := logging.ActionRedacted
	if dryRun {
		action = logging.ActionWouldRedact
	}
	return &Reporter{action: action, seen: mapset.NewThreadUnsafeSet[string]()}
}

func (r *Reporter) ReportFindings(path string, findings []types.Finding, generic string) {
	for _, finding := range findings {
		r.ReportFinding(path, finding, generic)
	}
}

func (r *Reporter) ReportFinding(path string, finding types.Finding, generic string) {
	hash, err := rxhash.HashStruct(reportKey{File: path, Family: finding.Pattern.Name, Secret: finding.Text})
	if err != nil {
		log.Debug().Err(err).Msg("Failed hashing finding")
	} else {
		r.mu.Lock()
		duplicate := !r.seen.Add(hash)
		r.mu.Unlock()
		if duplicate {
			return
		}
	}

	placeholder := finding.Pattern.Placeholder
	if placeholder == "" {
		placeholder = generic
	}

	logging.Hit().
		Action(r.action).
		Str("file", path).
		Int("line", finding.Line).
		Str("family", finding.Pattern.Name).
		Str("confidence", finding.Pattern.Confidence).
		Str("placeholder", placeholder).
		Str("preview", format.MaskSecret(finding.Text, previewChars)).
		Msg("SECRET")
}
