// Package awsorg implements the organization directory on top of the AWS
// Organizations API.
package awsorg

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/sirupsen/logrus"

	"github.com/shu85t/PutOuCostCategory/internal/model"
)

// Client is the slice of the Organizations API the directory needs.
// *organizations.Client satisfies it; tests substitute a mock.
type Client interface {
	ListRoots(ctx context.Context, params *organizations.ListRootsInput, optFns ...func(*organizations.Options)) (*organizations.ListRootsOutput, error)
	ListOrganizationalUnitsForParent(ctx context.Context, params *organizations.ListOrganizationalUnitsForParentInput, optFns ...func(*organizations.Options)) (*organizations.ListOrganizationalUnitsForParentOutput, error)
	ListAccountsForParent(ctx context.Context, params *organizations.ListAccountsForParentInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsForParentOutput, error)
}

// Directory reads a snapshot of the organization's unit tree and accounts.
// It caches what it fetches, so the accounts listing reuses the unit walk;
// one Directory serves one run and is not safe for concurrent use.
type Directory struct {
	client Client
	log    logrus.FieldLogger

	rootID string
	units  []model.Unit
}

// New builds a Directory against the real Organizations API using the
// default credential chain. Region is optional; the Organizations endpoint
// is global.
func New(ctx context.Context, region string, log logrus.FieldLogger) (*Directory, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewWithClient(organizations.NewFromConfig(cfg), log), nil
}

// NewWithClient builds a Directory over an explicit client.
func NewWithClient(client Client, log logrus.FieldLogger) *Directory {
	return &Directory{client: client, log: log.WithField("component", "org-directory")}
}

// RootID returns the organization root's ID.
func (d *Directory) RootID(ctx context.Context) (string, error) {
	if d.rootID != "" {
		return d.rootID, nil
	}
	out, err := d.client.ListRoots(ctx, &organizations.ListRootsInput{})
	if err != nil {
		return "", fmt.Errorf("listing organization roots: %w", err)
	}
	if len(out.Roots) == 0 || out.Roots[0].Id == nil {
		return "", fmt.Errorf("organization has no root")
	}
	d.rootID = *out.Roots[0].Id
	return d.rootID, nil
}

// ListUnits walks the unit tree breadth-first from the root and returns
// every organizational unit with its parent edge.
func (d *Directory) ListUnits(ctx context.Context) ([]model.Unit, error) {
	if d.units != nil {
		return d.units, nil
	}
	rootID, err := d.RootID(ctx)
	if err != nil {
		return nil, err
	}

	var units []model.Unit
	queue := []string{rootID}
	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]

		var token *string
		for {
			out, err := d.client.ListOrganizationalUnitsForParent(ctx, &organizations.ListOrganizationalUnitsForParentInput{
				ParentId:  &parentID,
				NextToken: token,
			})
			if err != nil {
				return nil, fmt.Errorf("listing units under %s: %w", parentID, err)
			}
			for _, ou := range out.OrganizationalUnits {
				if ou.Id == nil {
					continue
				}
				u := model.Unit{ID: *ou.Id, ParentID: parentID}
				if ou.Name != nil {
					u.Name = *ou.Name
				}
				units = append(units, u)
				queue = append(queue, u.ID)
			}
			if out.NextToken == nil {
				break
			}
			token = out.NextToken
		}
	}
	d.log.WithField("units", len(units)).Debug("walked organizational units")
	d.units = units
	return units, nil
}

// ListAccounts returns every account with its owning unit (or the root).
func (d *Directory) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rootID, err := d.RootID(ctx)
	if err != nil {
		return nil, err
	}
	units, err := d.ListUnits(ctx)
	if err != nil {
		return nil, err
	}

	parents := make([]string, 0, len(units)+1)
	parents = append(parents, rootID)
	for _, u := range units {
		parents = append(parents, u.ID)
	}

	var accounts []model.Account
	for _, parentID := range parents {
		var token *string
		for {
			out, err := d.client.ListAccountsForParent(ctx, &organizations.ListAccountsForParentInput{
				ParentId:  &parentID,
				NextToken: token,
			})
			if err != nil {
				return nil, fmt.Errorf("listing accounts under %s: %w", parentID, err)
			}
			for _, a := range out.Accounts {
				if a.Id == nil {
					continue
				}
				acct := model.Account{ID: *a.Id, ParentID: parentID}
				if a.Name != nil {
					acct.Name = *a.Name
				}
				accounts = append(accounts, acct)
			}
			if out.NextToken == nil {
				break
			}
			token = out.NextToken
		}
	}
	d.log.WithField("accounts", len(accounts)).Debug("listed member accounts")
	return accounts, nil
}
