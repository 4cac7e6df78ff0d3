package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/history"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/offer"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/source"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/logger"
	pkgerrors "github.com/faziolifabrizio-jpg/risparmioevoluto/pkg/errors"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/services/notifier"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/services/publisher"
)

// State is a pipeline run state
type State string

const (
	StateIdle        State = "idle"
	StateCollecting  State = "collecting"
	StateNormalizing State = "normalizing"
	StateSelecting   State = "selecting"
	StatePublishing  State = "publishing"
	StateDone        State = "done"
	StateAborted     State = "aborted"
)

// Config is the immutable per-pipeline configuration
type Config struct {
	SearchURLs    []string
	MinDiscount   int
	MaxOffersSend int
	AffiliateTag  string
}

// Report describes the outcome of a single run
type Report struct {
	State          State
	Collected      int
	Normalized     int
	Selected       int
	Delivered      int
	SourceErrors   []error
	DeliveryErrors []error
}

// Pipeline orchestrates a single publication run: collect raw listings,
// normalize, select against history, publish, persist history. Transitions
// are strictly sequential and single-pass; there is no retry loop inside
// the pipeline itself.
type Pipeline struct {
	cfg    Config
	source source.ListingSource
	hist   *history.Store
	notif  notifier.Notifier
	mirror publisher.Publisher // optional stream mirror, may be nil
	log    *logger.Logger
}

// New creates a pipeline. mirror may be nil when no stream mirroring is
// configured.
func New(cfg Config, src source.ListingSource, hist *history.Store, notif notifier.Notifier, mirror publisher.Publisher) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		source: src,
		hist:   hist,
		notif:  notif,
		mirror: mirror,
		log:    logger.ForPipeline(),
	}
}

// Run executes one pipeline pass. It never panics on collaborator
// failures: every external call site converts errors into the report.
func (p *Pipeline) Run(now time.Time) Report {
	report := Report{State: StateIdle}

	p.notifyText("🔍 Cerco le migliori offerte Amazon…")

	// Collecting
	report.State = StateCollecting
	var raws []offer.RawListing
	for _, pageURL := range p.cfg.SearchURLs {
		listings, err := p.source.FetchListings(pageURL)
		if err != nil {
			report.SourceErrors = append(report.SourceErrors, err)
			p.log.Warn().
				Err(err).
				Str("url", pageURL).
				Str("kind", string(pkgerrors.TypeOf(err))).
				Msg("Listing source failed, trying next")
			continue
		}
		p.log.Debug().Str("url", pageURL).Int("listings", len(listings)).Msg("Collected listings")
		raws = append(raws, listings...)
	}
	report.Collected = len(raws)

	if len(raws) == 0 {
		report.State = StateAborted
		p.log.Error().Int("sources", len(p.cfg.SearchURLs)).Msg("All listing sources failed or returned nothing")
		p.notifyText("❌ Nessuna nuova offerta trovata.")
		return report
	}

	// Normalizing
	report.State = StateNormalizing
	candidates := p.normalize(raws)
	report.Normalized = len(candidates)

	// Selecting
	report.State = StateSelecting
	selected := Select(candidates, p.hist, p.cfg.MinDiscount, p.cfg.MaxOffersSend, now)
	report.Selected = len(selected)

	// Persist before delivery: a failed send must not re-select the same
	// offers on the next run
	if err := p.hist.Save(); err != nil {
		p.log.Error().Err(err).Msg("Failed to persist history, duplicates possible on next run")
	}

	if len(selected) == 0 {
		report.State = StateDone
		p.notifyText("❌ Nessuna nuova offerta trovata.")
		return report
	}

	// Publishing
	report.State = StatePublishing
	for _, o := range selected {
		if err := p.notif.PublishOffer(o); err != nil {
			report.DeliveryErrors = append(report.DeliveryErrors, err)
			p.log.Error().Err(err).Str("asin", o.ASIN).Msg("Failed to deliver offer")
			continue
		}
		report.Delivered++
		p.mirrorOffer(o)
	}
	p.trimMirror()

	p.notifyText(fmt.Sprintf("✅ Pubblicate %d offerte migliori (per sconto).", report.Delivered))

	report.State = StateDone
	return report
}

// normalize runs the two-phase normalization over the raw listings:
// phase 1 uses the summary fields alone, phase 2 fetches the detail page
// only for listings with a missing or untrusted field. Listings that
// still lack a valid price pair are dropped silently.
func (p *Pipeline) normalize(raws []offer.RawListing) []offer.Offer {
	var candidates []offer.Offer
	for _, raw := range raws {
		merged := raw
		if offer.NeedsDetail(raw) {
			detail, err := p.source.FetchDetail(raw.ASIN)
			if err != nil {
				p.log.Debug().Err(err).Str("asin", raw.ASIN).Str("url", raw.DetailURL).Msg("Detail fetch failed, keeping summary fields")
			} else {
				merged = offer.Merge(raw, detail)
			}
		}

		o, ok := offer.Normalize(merged, p.cfg.AffiliateTag)
		if !ok {
			p.log.Debug().Str("asin", raw.ASIN).Msg("Listing dropped, no valid discount")
			continue
		}
		candidates = append(candidates, o)
	}
	return candidates
}

// mirrorOffer appends a delivered offer to the stream mirror, when one is
// configured. Mirror failures are reported as delivery errors but never
// block the run.
func (p *Pipeline) mirrorOffer(o offer.Offer) {
	if p.mirror == nil {
		return
	}

	data, err := json.Marshal(o)
	if err != nil {
		p.log.Error().Err(err).Str("asin", o.ASIN).Msg("Failed to encode offer for mirror")
		return
	}
	if err := p.mirror.Publish(data); err != nil {
		p.log.Error().Err(err).Str("asin", o.ASIN).Msg("Failed to mirror offer")
	}
}

// trimMirror caps the mirror stream at its configured maximum length
// after a publish batch
func (p *Pipeline) trimMirror() {
	if p.mirror == nil {
		return
	}

	if err := p.mirror.TrimStream(); err != nil {
		p.log.Warn().Err(err).Msg("Failed to trim mirror stream")
	}
}

// notifyText sends a status message, logging failures only. Status
// messages never affect the run outcome.
func (p *Pipeline) notifyText(text string) {
	if err := p.notif.PublishText(text); err != nil {
		p.log.Warn().Err(err).Msg("Failed to send status message")
	}
}
