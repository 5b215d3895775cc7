package services

import (
	"context"

	"sportsledger/config"
	"sportsledger/ledger"
	"sportsledger/logger"
	"sportsledger/models"
	"sportsledger/providers"

	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type RunningLister interface {
	ListRunningByBranch(ctx context.Context, branchCode, currency string, offset, limit int) ([]models.WagerRecord, int64, error)
}

// DetailSource is where the report fetches live detail for one provider.
type DetailSource struct {
	Config   config.ProviderConfig
	Detailer providers.BetDetailer
}

// Report builds the outstanding wagers report of a branch across providers.
type Report struct {
	wagers  RunningLister
	sources map[string]DetailSource
	fanout  int
}

func NewReport(wagers RunningLister, sources map[string]DetailSource, fanout int) *Report {
	if fanout < 1 {
		fanout = 1
	}
	return &Report{wagers: wagers, sources: sources, fanout: fanout}
}

// Outstanding lists a page of the branch's waiting and running wagers with
// live provider detail. A record whose detail cannot be fetched keeps
// placeholder fields; it never fails the page.
func (r *Report) Outstanding(ctx context.Context, branchCode, currency string, page, size int) (ledger.OutstandingPage, error) {
	if branchCode == "" {
		return ledger.OutstandingPage{}, ledger.ErrFieldMissing
	}
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	recs, total, err := r.wagers.ListRunningByBranch(ctx, branchCode, currency, (page-1)*size, size)
	if err != nil {
		return ledger.OutstandingPage{}, err
	}

	items := make([]ledger.OutstandingEntry, len(recs))
	var g errgroup.Group
	g.SetLimit(r.fanout)
	for i := range recs {
		i := i
		g.Go(func() error {
			items[i] = ledger.NewOutstandingEntry(recs[i], r.detail(ctx, recs[i]))
			return nil
		})
	}
	_ = g.Wait()

	return ledger.OutstandingPage{Items: items, Total: total, Page: page, Size: size}, nil
}

func (r *Report) detail(ctx context.Context, rec models.WagerRecord) *ledger.Projection {
	src, ok := r.sources[rec.Provider]
	if !ok || src.Detailer == nil {
		return nil
	}
	cred, err := src.Config.CredentialsByCurrency(rec.Currency)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("bet_id", rec.BetID).Msg("no credentials for outstanding detail")
		return nil
	}
	p, err := src.Detailer.GetBetDetail(ctx, cred, rec)
	if err != nil {
		logger.Warn(ctx).Err(err).
			Str("provider", rec.Provider).
			Str("transaction_id", rec.TransactionID).
			Msg("outstanding detail unavailable")
		return nil
	}
	return p
}
