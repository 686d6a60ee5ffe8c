package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/rdce-vr/Local-Track/internal/model"
	"github.com/rdce-vr/Local-Track/internal/store"
)

// Source fetches current prices from one upstream.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (model.Prices, error)
}

// Publisher receives the current prices after each successful run.
type Publisher interface {
	PublishFuel(ctx context.Context, obs []model.PriceObservation) error
	PublishGold(ctx context.Context, obs model.GoldObservation) error
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClock sets the function used to stamp observations.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

// WithPublisher sets a publisher notified after every successful run.
func WithPublisher(p Publisher) Option {
	return func(f *Fetcher) {
		f.publisher = p
	}
}

// Fetcher runs fuel and gold jobs against a store.
type Fetcher struct {
	fuel      []Source
	gold      Source
	store     store.Writer
	publisher Publisher
	now       func() time.Time
	logger    *slog.Logger
}

// New creates a Fetcher. fuel is tried in order; gold may be nil when gold
// tracking is disabled.
func New(fuel []Source, gold Source, w store.Writer, logger *slog.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fetcher{
		fuel:   fuel,
		gold:   gold,
		store:  w,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RunFuel fetches fuel prices, falling back through the sources in order,
// and stores every commodity whose price changed.
func (f *Fetcher) RunFuel(ctx context.Context) (*Report, error) {
	report := &Report{Domain: model.DomainFuel}

	prices, err := f.fetchFirst(ctx, report)
	if err != nil {
		return report, err
	}
	report.ObservedAt = f.now().UTC()

	names := prices.Names()
	sort.Strings(names)

	published := make([]model.PriceObservation, 0, len(names))
	for _, name := range names {
		obs := model.PriceObservation{
			Commodity:  name,
			Price:      prices[name],
			Source:     report.Source,
			ObservedAt: report.ObservedAt,
		}
		changed, err := f.store.InsertFuelIfChanged(ctx, obs)
		item := f.record(obs.Commodity, obs.Price, changed, err)
		report.Items = append(report.Items, item)
		if item.Outcome != OutcomeError {
			published = append(published, obs)
		}
	}

	f.logger.Info("fuel prices processed",
		"source", report.Source,
		"changed", report.Count(OutcomeChanged),
		"unchanged", report.Count(OutcomeUnchanged),
		"errors", report.Count(OutcomeError),
	)

	if f.publisher != nil && len(published) > 0 {
		if err := f.publisher.PublishFuel(ctx, published); err != nil {
			f.logger.Warn("publish fuel prices failed", "error", err)
		}
	}
	return report, nil
}

// RunGold fetches the gold quote and stores it unless the same
// (mid, buy, sell) triple was stored before.
func (f *Fetcher) RunGold(ctx context.Context) (*Report, error) {
	report := &Report{Domain: model.DomainGold}
	if f.gold == nil {
		return report, &FetchError{Domain: model.DomainGold, Err: errNoSources}
	}
	report.Source = f.gold.Name()

	prices, err := f.gold.Fetch(ctx)
	if err != nil {
		return report, &FetchError{Domain: model.DomainGold, Source: report.Source, Err: err}
	}
	report.ObservedAt = f.now().UTC()

	obs, ok := model.GoldFromPrices(prices, report.ObservedAt)
	if !ok {
		return report, &FetchError{Domain: model.DomainGold, Source: report.Source, Err: errIncompleteGold}
	}

	changed, err := f.store.InsertGoldIfNew(ctx, obs)
	report.Items = append(report.Items, f.record("gold", obs.MidPrice, changed, err))
	if err != nil {
		return report, nil
	}

	if f.publisher != nil {
		if err := f.publisher.PublishGold(ctx, obs); err != nil {
			f.logger.Warn("publish gold price failed", "error", err)
		}
	}
	return report, nil
}

// RunAll runs the fuel then the gold job. Both are attempted; errors are
// joined.
func (f *Fetcher) RunAll(ctx context.Context) ([]*Report, error) {
	fuel, fuelErr := f.RunFuel(ctx)
	gold, goldErr := f.RunGold(ctx)
	return []*Report{fuel, gold}, errors.Join(fuelErr, goldErr)
}

// fetchFirst returns the prices of the first source that succeeds.
func (f *Fetcher) fetchFirst(ctx context.Context, report *Report) (model.Prices, error) {
	if len(f.fuel) == 0 {
		return nil, &FetchError{Domain: model.DomainFuel, Err: errNoSources}
	}

	for i, src := range f.fuel {
		prices, err := src.Fetch(ctx)
		if err == nil {
			report.Source = src.Name()
			return prices, nil
		}

		report.Failed = append(report.Failed, Attempt{Source: src.Name(), Err: err})
		if i == len(f.fuel)-1 {
			return nil, &FetchError{Domain: model.DomainFuel, Source: src.Name(), Err: err}
		}
		f.logger.Warn("source failed, falling back",
			"source", src.Name(),
			"next", f.fuel[i+1].Name(),
			"error", err,
		)
	}
	return nil, nil
}

func (f *Fetcher) record(commodity string, price int64, changed bool, err error) Item {
	item := Item{Commodity: commodity, Price: price}
	switch {
	case err != nil:
		item.Outcome = OutcomeError
		item.Err = err
		f.logger.Error("store price failed", "commodity", commodity, "price", price, "error", err)
	case changed:
		item.Outcome = OutcomeChanged
		f.logger.Info("price stored", "commodity", commodity, "price", price, "changed", true)
	default:
		item.Outcome = OutcomeUnchanged
		f.logger.Info("price unchanged", "commodity", commodity, "price", price, "changed", false)
	}
	return item
}
