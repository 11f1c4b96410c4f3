// Package run sequences one monitor pass: fetch, parse, filter, diff,
// notify, archive, persist. Strictly sequential; a run is a fresh process
// and the external scheduler guarantees runs never overlap.
package run

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"jobwatch/internal/diff"
	"jobwatch/internal/domain"
	"jobwatch/internal/filter"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

type Parser interface {
	Parse(raw []byte) ([]domain.JobRecord, []string, error)
}

type SeenStore interface {
	Load() (domain.SeenSet, []string)
	Save(domain.SeenSet) error
}

type Notifier interface {
	Notify(ctx context.Context, newJobs []domain.JobRecord) error
}

// Archiver records announced jobs; nil disables archiving.
type Archiver interface {
	Insert(ctx context.Context, rec domain.JobRecord, foundAt time.Time) (bool, error)
}

type Runner struct {
	Fetcher  Fetcher
	Parser   Parser
	Seen     SeenStore
	Notifier Notifier
	Archive  Archiver

	TargetURL string
	Headers   map[string]string
	Keywords  []string

	// DryRun stops before any side effect: no mail, no archive insert, no
	// state write.
	DryRun bool

	now func() time.Time
}

// Run executes one full pass and reports the terminal state.
//
// Seen-set policy (notify-then-record): new ids join the set only after a
// successful notification. On a send failure the file is still rewritten
// with the prior contents, the run exits with the notify kind, and the same
// jobs surface again next run. Re-notifying beats silently never announcing
// a job.
func (r *Runner) Run(ctx context.Context) domain.RunResult {
	res := domain.RunResult{Stage: domain.StageIdle}
	if r.now == nil {
		r.now = time.Now
	}

	seenSet, warns := r.Seen.Load()
	res.Warnings = append(res.Warnings, warns...)
	for _, w := range warns {
		log.Printf("[warn] %s", w)
	}
	log.Printf("[seen] loaded %d known job id(s)", seenSet.Len())

	// ---- Fetching ----
	res.Stage = domain.StageFetching
	raw, err := r.Fetcher.Fetch(ctx, r.TargetURL, r.Headers)
	if err != nil {
		return fail(res, domain.KindNetwork, err)
	}
	log.Printf("[fetch] got %d bytes from %s", len(raw), r.TargetURL)

	// ---- Parsing ----
	res.Stage = domain.StageParsing
	records, parseWarns, err := r.Parser.Parse(raw)
	if err != nil {
		return fail(res, domain.KindParse, err)
	}
	res.Warnings = append(res.Warnings, parseWarns...)
	for _, w := range parseWarns {
		log.Printf("[warn] %s", w)
	}
	log.Printf("[parse] found %d total job(s)", len(records))

	// ---- Filtering ----
	res.Stage = domain.StageFiltering
	if len(r.Keywords) > 0 {
		before := len(records)
		records = filter.ByKeywords(records, r.Keywords)
		log.Printf("[filter] %d of %d job(s) match keywords", len(records), before)
	}

	// ---- Diffing ----
	res.Stage = domain.StageDiffing
	res.NewJobs = diff.New(records, seenSet)
	log.Printf("[diff] %d new job(s)", len(res.NewJobs))
	for _, j := range res.NewJobs {
		if pay := j.Extra["pay"]; pay != "" {
			log.Printf("  - %s (%s)", j.Title, pay)
		} else {
			log.Printf("  - %s", j.Title)
		}
	}

	if r.DryRun {
		log.Printf("[dry-run] skipping notify and state write")
		res.Stage = domain.StageDone
		return res
	}

	// ---- Notifying ----
	res.Stage = domain.StageNotifying
	var notifyErr error
	if len(res.NewJobs) > 0 {
		notifyErr = r.Notifier.Notify(ctx, res.NewJobs)
		if notifyErr != nil {
			log.Printf("[notify] send failed: %v", notifyErr)
		} else {
			log.Printf("[notify] sent notification for %d job(s)", len(res.NewJobs))
		}
	}

	// ---- Archiving ----
	if notifyErr == nil && r.Archive != nil {
		res.Stage = domain.StageArchiving
		foundAt := r.now().UTC()
		for _, j := range res.NewJobs {
			if _, err := r.Archive.Insert(ctx, j, foundAt); err != nil {
				w := fmt.Sprintf("archive insert failed for %s: %v", j.ID, err)
				res.Warnings = append(res.Warnings, w)
				log.Printf("[warn] %s", w)
			}
		}
	}

	// ---- Persisting ----
	// Save is attempted even after a notify failure so a missing or
	// repaired state file still materializes; the unnotified ids are just
	// left out of the union.
	res.Stage = domain.StagePersisting
	updated := seenSet
	if notifyErr == nil {
		updated = seenSet.Clone()
		for _, j := range res.NewJobs {
			updated.Add(j.ID)
		}
	}
	if err := r.Seen.Save(updated); err != nil {
		if notifyErr != nil {
			err = errors.Join(notifyErr, err)
		}
		return fail(res, domain.KindIO, err)
	}
	log.Printf("[seen] saved %d job id(s)", updated.Len())

	if notifyErr != nil {
		res.Stage = domain.StageNotifying
		res.Kind = domain.KindNotify
		res.Err = notifyErr
		return res
	}

	res.Stage = domain.StageDone
	return res
}

func fail(res domain.RunResult, kind domain.ErrorKind, err error) domain.RunResult {
	res.Kind = kind
	res.Err = err
	log.Printf("[run] failed at %s: %v", res.Stage, err)
	return res
}
