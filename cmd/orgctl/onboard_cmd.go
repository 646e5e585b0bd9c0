package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/neomorfeo/orgconsole/internal/adapter/fsm"
	"github.com/neomorfeo/orgconsole/internal/adapter/remote"
	"github.com/neomorfeo/orgconsole/internal/app"
	"github.com/neomorfeo/orgconsole/internal/domain"
)

type levelOutput struct {
	Name     string  `json:"name"`
	Parent   *string `json:"parent"`
	Quantity int     `json:"quantity"`
}

type onboardOutput struct {
	Command           string        `json:"command"`
	DryRun            bool          `json:"dry_run"`
	CompanyID         string        `json:"company_id,omitempty"`
	Roles             []string      `json:"roles"`
	Levels            []levelOutput `json:"levels"`
	TotalQuantity     int           `json:"total_quantity"`
	RemainingCapacity int           `json:"remaining_capacity"`
}

// logPublisher reports wizard stage events on the default logger.
type logPublisher struct{}

func (logPublisher) Publish(_ context.Context, event domain.Event, s domain.WizardSnapshot) error {
	slog.Info("wizard event",
		"event", string(event),
		"company_id", s.CompanyID,
		"stage", string(s.Stage),
	)
	return nil
}

func newOnboardCmd(conn *connection) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "onboard <plan.yaml>",
		Short: "Create a company, its roles and its hierarchy from a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			company, err := plan.CompanyIdentity()
			if err != nil {
				return err
			}
			tree, err := plan.Tree()
			if err != nil {
				return err
			}

			out := onboardOutput{
				Command:           "onboard",
				DryRun:            dryRun,
				Roles:             nonBlank(plan.Roles),
				Levels:            toLevelOutputs(tree.Levels()),
				TotalQuantity:     tree.TotalQuantity(),
				RemainingCapacity: domain.RemainingCapacity(tree),
			}
			if len(out.Roles) == 0 {
				return errors.New("plan lists no roles")
			}
			if len(out.Levels) == 0 {
				return errors.New("plan lists no hierarchy levels")
			}
			if dryRun {
				return writeJSON(cmd.OutOrStdout(), out)
			}

			if conn.APIURL == "" {
				return errors.New("--api-url is required")
			}
			client, err := remote.New(conn.APIURL, conn.Timeout)
			if err != nil {
				return err
			}

			actor := domain.Identity{
				SessionID: "orgctl-" + uuid.NewString(),
				Token:     conn.Token,
				Role:      domain.RoleAdmin,
				Active:    true,
			}
			wizards := app.NewWizardService(client, logPublisher{}, fsm.New())

			companyID, err := runWizard(cmd.Context(), wizards, actor, company, out.Roles, tree)
			if err != nil {
				return err
			}
			out.CompanyID = companyID
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the plan and print the payloads without calling the API")
	return cmd
}

// runWizard drives the three stages in order and returns the company id.
func runWizard(ctx context.Context, wizards *app.WizardService, actor domain.Identity, company domain.CompanyIdentity, roles []string, tree *domain.HierarchyTree) (string, error) {
	view, err := wizards.Start(ctx, actor)
	if err != nil {
		return "", err
	}
	id := view.ID

	view, err = wizards.SubmitIdentity(ctx, actor, id, company)
	if err != nil {
		return "", stageError(domain.StageIdentity, err)
	}
	companyID := view.CompanyID

	for i, name := range roles {
		roleID := view.Roles[0].ID
		if i > 0 {
			if view, err = wizards.AddRole(ctx, actor, id); err != nil {
				return companyID, err
			}
			roleID = view.Roles[len(view.Roles)-1].ID
		}
		if view, err = wizards.RenameRole(ctx, actor, id, roleID, name); err != nil {
			return companyID, err
		}
	}
	if _, err := wizards.SubmitRoles(ctx, actor, id); err != nil {
		return companyID, stageError(domain.StageRoles, err)
	}

	// Plan ids and wizard ids are assigned independently.
	ids := make(map[domain.NodeID]domain.NodeID, tree.Len())
	for _, n := range tree.Nodes() {
		var parent *domain.NodeID
		if n.ParentID != nil {
			p := ids[*n.ParentID]
			parent = &p
		}
		_, nodeID, err := wizards.AddNode(ctx, actor, id, n.Name, parent, n.Quantity)
		if err != nil {
			return companyID, err
		}
		ids[n.ID] = nodeID
	}
	if _, err := wizards.SubmitHierarchy(ctx, actor, id); err != nil {
		return companyID, stageError(domain.StageHierarchy, err)
	}

	return companyID, nil
}

func stageError(stage domain.Stage, err error) error {
	return fmt.Errorf("stage %d (%s): %s: %w", stage.Number(), stage, domain.UserMessage(err), err)
}

func nonBlank(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func toLevelOutputs(levels []domain.HierarchyLevel) []levelOutput {
	out := make([]levelOutput, len(levels))
	for i, l := range levels {
		out[i] = levelOutput(l)
	}
	return out
}
