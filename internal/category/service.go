package category

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shu85t/PutOuCostCategory/internal/model"
	"github.com/shu85t/PutOuCostCategory/internal/orgtree"
)

// ErrInvalidDepth is returned when the requested depth limit is below 1.
var ErrInvalidDepth = errors.New("depth must be an integer >= 1")

// Directory is the read-only view of the organization the sync needs: a
// complete, consistent snapshot of units, accounts, and the root ID.
type Directory interface {
	RootID(ctx context.Context) (string, error)
	ListUnits(ctx context.Context) ([]model.Unit, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
}

// PutAction says whether a publish created a fresh definition or replaced
// an existing one.
type PutAction string

const (
	ActionCreated PutAction = "created"
	ActionUpdated PutAction = "updated"
)

// PutResult is the outcome of one publish.
type PutResult struct {
	Action PutAction
	ARN    string
}

// Publisher performs the idempotent create-or-replace of a definition.
type Publisher interface {
	Put(ctx context.Context, def Definition) (PutResult, error)
}

// Service runs the sync pipeline: snapshot the directory, build the tree,
// label it, generate rules, and publish. Everything before Put is pure and
// side-effect free, so a failed run leaves the remote definition untouched
// and the whole pipeline is safe to re-invoke.
type Service struct {
	dir Directory
	pub Publisher
	log logrus.FieldLogger
}

// NewService creates a sync Service.
func NewService(dir Directory, pub Publisher, log logrus.FieldLogger) *Service {
	return &Service{dir: dir, pub: pub, log: log.WithField("component", "category-sync")}
}

// SyncParams are the invocation parameters for one run.
type SyncParams struct {
	Name         string
	Month        time.Time // first of month, UTC
	Depth        int
	DefaultValue string // empty means DefaultValue
	DryRun       bool   // generate rules but skip the publish
}

// SyncResult reports what a run produced.
type SyncResult struct {
	Rules    []Rule
	Accounts int
	Publish  PutResult // zero value on dry runs
}

// Run executes the pipeline once. All errors propagate to the caller; a
// partially applied category is worse than a clean abort, so nothing is
// retried or recovered locally.
func (s *Service) Run(ctx context.Context, p SyncParams) (*SyncResult, error) {
	if p.Depth < 1 {
		return nil, ErrInvalidDepth
	}
	now := time.Now().UTC()
	if thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC); p.Month.After(thisMonth) {
		s.log.WithField("month", p.Month.Format("2006-01")).Warn("effective month is in the future")
	}

	rootID, err := s.dir.RootID(ctx)
	if err != nil {
		return nil, err
	}
	units, err := s.dir.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := s.dir.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"root":     rootID,
		"units":    len(units),
		"accounts": len(accounts),
	}).Info("fetched organization snapshot")
	if len(accounts) == 0 {
		s.log.Warn("no accounts found in the organization")
	}

	tree, err := orgtree.Build(units, accounts, rootID)
	if err != nil {
		return nil, err
	}

	labels := orgtree.LabelUnits(tree, p.Depth)
	rules, err := GenerateRules(tree, labels)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"rules": len(rules), "depth": p.Depth}).Info("generated category rules")

	result := &SyncResult{Rules: rules, Accounts: len(accounts)}
	if p.DryRun {
		s.log.Info("dry run, skipping publish")
		return result, nil
	}

	defaultValue := p.DefaultValue
	if defaultValue == "" {
		defaultValue = DefaultValue
	}
	def := Definition{
		Name:           p.Name,
		EffectiveStart: p.Month,
		DefaultValue:   defaultValue,
		Rules:          rules,
	}
	put, err := s.pub.Put(ctx, def)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"action": put.Action, "arn": put.ARN}).Info("published cost category")
	result.Publish = put
	return result, nil
}
