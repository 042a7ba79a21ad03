package fdic

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"PeerBench/internal/domain/models"
	"PeerBench/internal/domain/repository"
	"PeerBench/pkg/config"
	xhttp "PeerBench/pkg/http"
	applogger "PeerBench/pkg/logger"
)

const (
	endpointFinancials   = "financials"
	endpointInstitutions = "institutions"
)

// Client talks to the FDIC BankFind API.
type Client struct {
	baseURL   string
	pageLimit int
	http      *xhttp.Client
	catalog   *Catalog
	log       *applogger.Logger
	metrics   repository.Metrics
}

// NewClient builds a client from the fdic config section.
func NewClient(cfg *config.Config, catalog *Catalog, l *applogger.Logger, m repository.Metrics, opts ...xhttp.ClientOption) *Client {
	timeout := cfg.FDIC.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clientOpts := append([]xhttp.ClientOption{
		xhttp.WithTimeout(timeout),
		xhttp.WithUserAgent(cfg.FDIC.UserAgent),
	}, opts...)
	return &Client{
		baseURL:   strings.TrimRight(cfg.FDIC.BaseURL, "/"),
		pageLimit: cfg.FDIC.PageLimit,
		http:      xhttp.NewClient(clientOpts...),
		catalog:   catalog,
		log:       l,
		metrics:   m,
	}
}

// FetchSeries returns one series per metric for the institution over
// [start, end]. Every failure wraps models.ErrDataUnavailable.
func (c *Client) FetchSeries(ctx context.Context, institutionID string, start, end models.Quarter, metrics []string) ([]models.MetricSeries, error) {
	fields, lookback, err := c.catalog.plan(metrics)
	if err != nil {
		return nil, err
	}
	from := models.QuarterFromIndex(start.Index() - lookback)

	params := map[string][]string{
		"filters":    {financialsFilter(institutionID, from, end)},
		"fields":     {joinFields(fields)},
		"sort_by":    {"REPDTE"},
		"sort_order": {"ASC"},
		"limit":      {strconv.Itoa(c.pageLimit)},
	}

	var env envelope
	if err := c.get(ctx, endpointFinancials, params, &env); err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: no financials for cert %s in %s..%s", models.ErrDataUnavailable, institutionID, start, end)
	}
	if env.Totals.Count > len(env.Data) {
		c.log.Warn("fdic result truncated",
			applogger.String("cert", institutionID),
			applogger.Int("returned", len(env.Data)),
			applogger.Int("total", env.Totals.Count),
		)
	}

	series, err := c.catalog.normalize(institutionID, toRecords(&env), metrics, start, end)
	if err != nil {
		return nil, err
	}
	// rows that carry only nulls for the requested fields count as empty
	if (models.InstitutionData{Series: series}).Empty() {
		return nil, fmt.Errorf("%w: no reported values for cert %s in %s..%s", models.ErrDataUnavailable, institutionID, start, end)
	}
	c.log.Debug("fdic series fetched",
		applogger.String("cert", institutionID),
		applogger.Int("rows", len(env.Data)),
		applogger.Strings("metrics", metrics),
	)
	return series, nil
}

// LookupInstitution reads the registered name of a certificate.
func (c *Client) LookupInstitution(ctx context.Context, institutionID string) (models.Institution, error) {
	params := map[string][]string{
		"filters": {"CERT:" + institutionID},
		"fields":  {"NAME,CERT"},
		"limit":   {"1"},
	}
	var env envelope
	if err := c.get(ctx, endpointInstitutions, params, &env); err != nil {
		return models.Institution{}, err
	}
	if len(env.Data) == 0 {
		return models.Institution{}, fmt.Errorf("%w: unknown cert %s", models.ErrDataUnavailable, institutionID)
	}
	name, _ := env.Data[0].Data["NAME"].(string)
	return models.Institution{ID: institutionID, Name: name}, nil
}

// get performs the call with at most one immediate retry on transient errors.
func (c *Client) get(ctx context.Context, endpoint string, params map[string][]string, dest *envelope) error {
	opts := &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/" + endpoint,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: params,
	}

	var err error
	for attempt := 1; attempt <= 2; attempt++ {
		*dest = envelope{}
		start := time.Now()
		err = c.http.SendAndParse(ctx, opts, dest)
		if c.metrics != nil {
			c.metrics.RecordFetch(endpoint, time.Since(start), err)
		}
		if err == nil {
			return nil
		}
		if attempt == 1 && ctx.Err() == nil && transient(err) {
			c.log.Warn("fdic request failed, retrying",
				applogger.String("endpoint", endpoint),
				applogger.Error(err),
			)
			continue
		}
		break
	}
	c.log.Error("fdic request failed",
		applogger.String("endpoint", endpoint),
		applogger.Error(err),
	)
	return fmt.Errorf("%w: %s: %v", models.ErrDataUnavailable, endpoint, err)
}

// transient matches transport failures and 5xx/429 answers.
func transient(err error) bool {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

var (
	_ repository.SeriesFetcher     = (*Client)(nil)
	_ repository.InstitutionLookup = (*Client)(nil)
)
