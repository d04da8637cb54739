// Package costcat implements the category store on top of the AWS Cost
// Explorer cost category API.
package costcat

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/sirupsen/logrus"

	"github.com/shu85t/PutOuCostCategory/internal/category"
)

// DefaultRegion is where the Cost Explorer API is served from.
const DefaultRegion = "us-east-1"

// Store-imposed limits, checked before calling so a doomed request never
// leaves the process.
const (
	maxRules           = 500
	maxAccountsPerRule = 1000
)

// PublishError wraps a store rejection (malformed expression, quota, auth)
// with the operation and category name it happened on. There is no local
// retry; the whole pipeline is safe to re-invoke.
type PublishError struct {
	Op   string
	Name string
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publishing cost category %q (%s): %v", e.Name, e.Op, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Client is the slice of the Cost Explorer API the store needs.
// *costexplorer.Client satisfies it; tests substitute a mock.
type Client interface {
	ListCostCategoryDefinitions(ctx context.Context, params *costexplorer.ListCostCategoryDefinitionsInput, optFns ...func(*costexplorer.Options)) (*costexplorer.ListCostCategoryDefinitionsOutput, error)
	CreateCostCategoryDefinition(ctx context.Context, params *costexplorer.CreateCostCategoryDefinitionInput, optFns ...func(*costexplorer.Options)) (*costexplorer.CreateCostCategoryDefinitionOutput, error)
	UpdateCostCategoryDefinition(ctx context.Context, params *costexplorer.UpdateCostCategoryDefinitionInput, optFns ...func(*costexplorer.Options)) (*costexplorer.UpdateCostCategoryDefinitionOutput, error)
}

// Store publishes cost category definitions.
type Store struct {
	client Client
	log    logrus.FieldLogger
}

// New builds a Store against the real Cost Explorer API. An empty region
// falls back to DefaultRegion.
func New(ctx context.Context, region string, log logrus.FieldLogger) (*Store, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewWithClient(costexplorer.NewFromConfig(cfg), log), nil
}

// NewWithClient builds a Store over an explicit client.
func NewWithClient(client Client, log logrus.FieldLogger) *Store {
	return &Store{client: client, log: log.WithField("component", "cost-category-store")}
}

// Put creates the named cost category if it does not exist, otherwise
// replaces its rules, default value, and effective start wholesale. The
// full-overwrite makes Put idempotent: re-running with identical input
// leaves the remote definition unchanged.
func (s *Store) Put(ctx context.Context, def category.Definition) (category.PutResult, error) {
	if err := s.checkLimits(def); err != nil {
		return category.PutResult{}, &PublishError{Op: "limit check", Name: def.Name, Err: err}
	}

	arn, err := s.findARN(ctx, def.Name)
	if err != nil {
		return category.PutResult{}, &PublishError{Op: "lookup", Name: def.Name, Err: err}
	}

	rules := expressionRules(def.Rules)
	start := def.EffectiveStartString()

	if arn == "" {
		s.log.WithField("name", def.Name).Info("creating cost category")
		out, err := s.client.CreateCostCategoryDefinition(ctx, &costexplorer.CreateCostCategoryDefinitionInput{
			Name:           aws.String(def.Name),
			RuleVersion:    types.CostCategoryRuleVersionCostCategoryExpressionV1,
			Rules:          rules,
			DefaultValue:   aws.String(def.DefaultValue),
			EffectiveStart: aws.String(start),
		})
		if err != nil {
			return category.PutResult{}, &PublishError{Op: "create", Name: def.Name, Err: err}
		}
		return category.PutResult{Action: category.ActionCreated, ARN: aws.ToString(out.CostCategoryArn)}, nil
	}

	s.log.WithFields(logrus.Fields{"name": def.Name, "arn": arn}).Info("updating cost category")
	out, err := s.client.UpdateCostCategoryDefinition(ctx, &costexplorer.UpdateCostCategoryDefinitionInput{
		CostCategoryArn: aws.String(arn),
		RuleVersion:     types.CostCategoryRuleVersionCostCategoryExpressionV1,
		Rules:           rules,
		DefaultValue:    aws.String(def.DefaultValue),
		EffectiveStart:  aws.String(start),
	})
	if err != nil {
		return category.PutResult{}, &PublishError{Op: "update", Name: def.Name, Err: err}
	}
	return category.PutResult{Action: category.ActionUpdated, ARN: aws.ToString(out.CostCategoryArn)}, nil
}

// findARN pages through existing definitions looking for one with the
// given name. Empty result means not found.
func (s *Store) findARN(ctx context.Context, name string) (string, error) {
	var token *string
	for {
		out, err := s.client.ListCostCategoryDefinitions(ctx, &costexplorer.ListCostCategoryDefinitionsInput{NextToken: token})
		if err != nil {
			return "", fmt.Errorf("listing cost category definitions: %w", err)
		}
		for _, ref := range out.CostCategoryReferences {
			if aws.ToString(ref.Name) == name && ref.CostCategoryArn != nil {
				return *ref.CostCategoryArn, nil
			}
		}
		if out.NextToken == nil {
			return "", nil
		}
		token = out.NextToken
	}
}

func (s *Store) checkLimits(def category.Definition) error {
	if len(def.Rules) > maxRules {
		return fmt.Errorf("%d rules exceeds the %d rule limit", len(def.Rules), maxRules)
	}
	for _, r := range def.Rules {
		if len(r.AccountIDs) > maxAccountsPerRule {
			return fmt.Errorf("rule %q covers %d accounts, exceeding the %d account limit", r.Label, len(r.AccountIDs), maxAccountsPerRule)
		}
		if len(r.AccountIDs) == 0 {
			s.log.WithField("rule", r.Label).Warn("rule has no accounts")
		}
	}
	return nil
}

// expressionRules converts generated rules into the store's expression
// form: an EQUALS match on the linked-account dimension over the rule's
// account IDs.
func expressionRules(rules []category.Rule) []types.CostCategoryRule {
	out := make([]types.CostCategoryRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, types.CostCategoryRule{
			Value: aws.String(r.Label),
			Rule: &types.Expression{
				Dimensions: &types.DimensionValues{
					Key:          types.DimensionLinkedAccount,
					Values:       r.AccountIDs,
					MatchOptions: []types.MatchOption{types.MatchOptionEquals},
				},
			},
		})
	}
	return out
}
