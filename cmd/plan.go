package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/idea2sns-backend/internal/app"
	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/services"
)

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect or change a user's plan",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <user-id> <free|pro>",
		Short: "Assign a plan to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := types.ParsePlan(args[1])
			if err != nil {
				return err
			}
			return withLimits(cmd, args[0], func(limits services.LimitsService, userID uuid.UUID) (*types.Entitlements, error) {
				return limits.SetPlan(cmd.Context(), userID, plan)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <user-id>",
		Short: "Print a user's effective plan limits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLimits(cmd, args[0], func(limits services.LimitsService, userID uuid.UUID) (*types.Entitlements, error) {
				return limits.Resolve(cmd.Context(), userID)
			})
		},
	})
	return cmd
}

func withLimits(cmd *cobra.Command, rawUserID string, fn func(services.LimitsService, uuid.UUID) (*types.Entitlements, error)) error {
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", rawUserID, err)
	}
	cfg, err := app.LoadBaseConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	svc, err := app.OpenDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	limits, closeCache := app.NewPlanAdmin(cfg, log, svc.DB())
	defer closeCache()

	ent, err := fn(limits, userID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(ent)
}
