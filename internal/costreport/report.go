// Package costreport fetches per-category cost totals for a published cost
// category.
package costreport

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/shu85t/PutOuCostCategory/internal/costcat"
)

const costMetric = "UnblendedCost"

// Client is the slice of the Cost Explorer API the reporter needs.
type Client interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

// Line is one month of cost for one category value.
type Line struct {
	Month    string // "YYYY-MM"
	Category string
	Amount   decimal.Decimal
	Unit     string // currency, e.g. "USD"
}

// Report is the full result of one query.
type Report struct {
	Lines []Line
	Total decimal.Decimal
}

// Reporter queries monthly unblended cost grouped by a cost category.
type Reporter struct {
	client Client
	log    logrus.FieldLogger
}

// New builds a Reporter against the real Cost Explorer API.
func New(ctx context.Context, region string, log logrus.FieldLogger) (*Reporter, error) {
	if region == "" {
		region = costcat.DefaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewWithClient(costexplorer.NewFromConfig(cfg), log), nil
}

// NewWithClient builds a Reporter over an explicit client.
func NewWithClient(client Client, log logrus.FieldLogger) *Reporter {
	return &Reporter{client: client, log: log.WithField("component", "cost-report")}
}

// CategoryCosts returns monthly costs grouped by the named cost category
// from the first day of `from` up to but not including the first day of
// `until`. Lines are ordered by month then category; amounts are exact
// decimals as returned by the API.
func (r *Reporter) CategoryCosts(ctx context.Context, name string, from, until time.Time) (*Report, error) {
	input := &costexplorer.GetCostAndUsageInput{
		Granularity: types.GranularityMonthly,
		Metrics:     []string{costMetric},
		TimePeriod: &types.DateInterval{
			Start: aws.String(from.UTC().Format("2006-01-02")),
			End:   aws.String(until.UTC().Format("2006-01-02")),
		},
		GroupBy: []types.GroupDefinition{{
			Type: types.GroupDefinitionTypeCostCategory,
			Key:  aws.String(name),
		}},
	}

	report := &Report{Total: decimal.Zero}
	for {
		out, err := r.client.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("querying cost and usage: %w", err)
		}
		for _, result := range out.ResultsByTime {
			month := ""
			if result.TimePeriod != nil && result.TimePeriod.Start != nil {
				if t, err := time.Parse("2006-01-02", *result.TimePeriod.Start); err == nil {
					month = t.Format("2006-01")
				}
			}
			for _, group := range result.Groups {
				metric, ok := group.Metrics[costMetric]
				if !ok || metric.Amount == nil {
					continue
				}
				amount, err := decimal.NewFromString(*metric.Amount)
				if err != nil {
					return nil, fmt.Errorf("parsing amount %q: %w", *metric.Amount, err)
				}
				line := Line{
					Month:    month,
					Category: groupValue(group.Keys, name),
					Amount:   amount,
				}
				if metric.Unit != nil {
					line.Unit = *metric.Unit
				}
				report.Lines = append(report.Lines, line)
				report.Total = report.Total.Add(amount)
			}
		}
		if out.NextPageToken == nil {
			break
		}
		input.NextPageToken = out.NextPageToken
	}

	sort.Slice(report.Lines, func(i, j int) bool {
		if report.Lines[i].Month != report.Lines[j].Month {
			return report.Lines[i].Month < report.Lines[j].Month
		}
		return report.Lines[i].Category < report.Lines[j].Category
	})
	r.log.WithFields(logrus.Fields{"lines": len(report.Lines), "total": report.Total.StringFixed(2)}).Debug("built cost report")
	return report, nil
}

// groupValue extracts the category value from a group key. The API returns
// keys as "<category name>$<value>"; a key without the prefix is returned
// as is.
func groupValue(keys []string, name string) string {
	if len(keys) == 0 {
		return ""
	}
	key := keys[0]
	if rest, ok := strings.CutPrefix(key, name+"$"); ok {
		return rest
	}
	return key
}
