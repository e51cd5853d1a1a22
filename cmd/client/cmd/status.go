package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"storysync/internal/app/client"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Состояние синхронизации устройства",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		st, err := app.Status(ctx)
		if errors.Is(err, client.ErrNotPaired) {
			warnColor.Println("Устройство не сопряжено.")
			fmt.Printf("device_id: %s\n", app.State().DeviceID)
			return nil
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(st)
		}
		fmt.Printf("Устройство:   %s (%s)\n", st.DeviceName, st.DeviceID)
		if st.LastSyncAt != nil {
			fmt.Printf("Синхронизация: %s\n", st.LastSyncAt.Format("2006-01-02 15:04:05 MST"))
		} else {
			fmt.Println("Синхронизация: никогда")
		}
		if st.PendingChangesCount > 0 {
			warnColor.Printf("Ожидают pull: %d\n", st.PendingChangesCount)
		} else {
			okColor.Println("Ожидают pull: 0")
		}
		return nil
	},
}
