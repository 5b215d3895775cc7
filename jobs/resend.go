// Package jobs holds the background schedules of the service.
package jobs

import (
	"context"
	"sort"
	"time"

	"sportsledger/config"
	"sportsledger/logger"
	"sportsledger/models"

	"github.com/robfig/cron/v3"
)

const runTimeout = time.Minute

type StaleLister interface {
	ListStaleRunning(ctx context.Context, provider string, cutoff time.Time, limit int) ([]models.WagerRecord, error)
}

type OrderResender interface {
	ResendOrders(ctx context.Context, cred config.Credentials, txnIDs []string) error
}

// ResendJob asks sbo to resend the settlement of wagers that stayed running
// longer than expected.
type ResendJob struct {
	wagers   StaleLister
	client   OrderResender
	provider config.ProviderConfig
	cfg      config.SboConfig
	now      func() time.Time
}

func NewResendJob(wagers StaleLister, client OrderResender, provider config.ProviderConfig, cfg config.SboConfig) *ResendJob {
	return &ResendJob{
		wagers:   wagers,
		client:   client,
		provider: provider,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run sends one resend request per currency for the stale running wagers.
// It reports how many transfer codes were sent.
func (j *ResendJob) Run(ctx context.Context) (int, error) {
	cutoff := j.now().Add(-j.cfg.ResendAfter)
	recs, err := j.wagers.ListStaleRunning(ctx, j.provider.Name, cutoff, j.cfg.ResendBatch)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}

	byCurrency := map[string][]string{}
	seen := map[string]bool{}
	for _, rec := range recs {
		if seen[rec.TransactionID] {
			continue
		}
		seen[rec.TransactionID] = true
		byCurrency[rec.Currency] = append(byCurrency[rec.Currency], rec.TransactionID)
	}

	currencies := make([]string, 0, len(byCurrency))
	for ccy := range byCurrency {
		currencies = append(currencies, ccy)
	}
	sort.Strings(currencies)

	sent := 0
	var firstErr error
	for _, ccy := range currencies {
		ids := byCurrency[ccy]
		cred, err := j.provider.CredentialsByCurrency(ccy)
		if err != nil {
			logger.Warn(ctx).Err(err).Str("currency", ccy).Int("count", len(ids)).Msg("resend skipped")
			continue
		}
		if err := j.client.ResendOrders(ctx, cred, ids); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sent += len(ids)
	}
	return sent, firstErr
}

// Start schedules job on spec and starts the scheduler. Stop the returned
// cron to end it.
func Start(job *ResendJob, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		sent, err := job.Run(ctx)
		if err != nil {
			logger.ErrorGlobal().Err(err).Int("sent", sent).Msg("sbo resend failed")
			return
		}
		if sent > 0 {
			logger.InfoGlobal().Int("sent", sent).Msg("sbo resend requested")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
