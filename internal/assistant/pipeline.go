package assistant

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mom-assistant/internal/apperrors"
	"mom-assistant/internal/logger"
)

// InputGuard rejects oversized user input.
type InputGuard interface {
	Check(field, text string) error
}

// Result is the outcome of one pipeline run. Reply is nil when no mom input
// was given or when drafting the reply failed; in the latter case ReplyErr
// holds the cause and MandarinTranslation is still valid.
type Result struct {
	MandarinTranslation string
	Reply               *ReplyOutcome
	RawReply            string
	ReplyErr            error
}

// Pipeline runs translation and, when the mom supplied input, reply drafting.
type Pipeline struct {
	translator *Translator
	drafter    *ReplyDrafter
	guard      InputGuard
	concurrent bool
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithInputGuard checks both inputs before any provider call.
func WithInputGuard(g InputGuard) Option {
	return func(p *Pipeline) { p.guard = g }
}

// WithConcurrency runs the two steps in parallel when enabled.
func WithConcurrency(enabled bool) Option {
	return func(p *Pipeline) { p.concurrent = enabled }
}

func NewPipeline(translator *Translator, drafter *ReplyDrafter, opts ...Option) *Pipeline {
	p := &Pipeline{translator: translator, drafter: drafter}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run translates englishText and, if momInput is not blank, drafts and parses
// a reply. A blank englishText is a validation error whatever momInput is.
// Translation failure fails the run; reply failure is reported on the result.
func (p *Pipeline) Run(ctx context.Context, englishText, momInput string) (Result, error) {
	if strings.TrimSpace(englishText) == "" {
		return Result{}, apperrors.Validation("englishText", "No English text provided")
	}
	wantReply := strings.TrimSpace(momInput) != ""

	if p.guard != nil {
		if err := p.guard.Check("englishText", englishText); err != nil {
			return Result{}, err
		}
		if wantReply {
			if err := p.guard.Check("momInput", momInput); err != nil {
				return Result{}, err
			}
		}
	}

	log := logger.FromContext(ctx)
	start := time.Now()

	var res Result
	translate := func(ctx context.Context) error {
		text, err := p.translator.Translate(ctx, englishText)
		if err != nil {
			return err
		}
		res.MandarinTranslation = text
		return nil
	}
	reply := func(ctx context.Context) {
		blob, err := p.drafter.DraftReply(ctx, englishText, momInput)
		if err != nil {
			res.ReplyErr = err
			return
		}
		parsed := ParseReply(blob)
		res.RawReply = blob
		res.Reply = &parsed
	}

	if p.concurrent && wantReply {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return translate(gctx) })
		g.Go(func() error {
			reply(gctx)
			return nil
		})
		if err := g.Wait(); err != nil {
			return Result{}, err
		}
	} else {
		if err := translate(ctx); err != nil {
			return Result{}, err
		}
		if wantReply {
			reply(ctx)
		}
	}

	if res.ReplyErr != nil {
		log.Error("reply drafting failed, returning translation only", "err", res.ReplyErr)
	} else if res.Reply != nil && !res.Reply.Complete() {
		log.Warn("reply blob did not contain five sections", "raw_length", len(res.RawReply))
	}
	log.Info("pipeline finished",
		"with_reply", wantReply,
		"reply_ok", res.Reply != nil,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
