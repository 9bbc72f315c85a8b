package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/projecthub/internal/core/events"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect identity events: publish a sample event through the audit subscriber`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a sample identity event",
	Long:      `Publish a sample identity event to an in-process bus with the audit subscriber attached`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{events.UserRegisteredEvent, events.RoleAssignedEvent, events.PermissionGrantedEvent},
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(cmd.Context(), args[0])
	},
}

var (
	eventUserID int64
	eventRoleID int64
	eventPermID int64
	eventEmail  string
)

func publishSampleEvent(ctx context.Context, eventType string) error {
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)
	events.SubscribeAudit(eventBus, lg)

	var event events.Event
	switch eventType {
	case events.UserRegisteredEvent:
		event = events.NewUserRegistered(eventUserID, eventEmail)
	case events.RoleAssignedEvent:
		event = events.NewRoleAssigned(eventUserID, eventRoleID)
	case events.PermissionGrantedEvent:
		event = events.NewPermissionGranted(eventRoleID, eventPermID)
	default:
		return fmt.Errorf("unknown event type %q", eventType)
	}

	lg.Info("publishing sample event", "event_type", eventType, "event_id", event.EventID())
	return eventBus.PublishSync(ctx, event)
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventUserID, "user-id", 1, "user id carried by the event")
	publishEventCmd.Flags().Int64Var(&eventRoleID, "role-id", 1, "role id carried by the event")
	publishEventCmd.Flags().Int64Var(&eventPermID, "permission-id", 1, "permission id carried by the event")
	publishEventCmd.Flags().StringVar(&eventEmail, "email", "someone@example.com", "email carried by the event")

	eventCmd.AddCommand(publishEventCmd)
}
