package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Список сопряженных устройств (только с машины сервера)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		devices, err := app.Devices(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(devices)
		}
		if len(devices) == 0 {
			dimColor.Println("Нет сопряженных устройств")
			return nil
		}
		for _, d := range devices {
			last := "никогда"
			if d.LastSyncAt != nil {
				last = d.LastSyncAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%-36s  %-20s  %s\n", d.DeviceID, d.DeviceName, last)
		}
		return nil
	},
}

var removeDeviceCmd = &cobra.Command{
	Use:   "remove <device_id>",
	Short: "Отключить устройство",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		if err := app.RemoveDevice(ctx, args[0]); err != nil {
			return err
		}
		okColor.Printf("✓ Устройство %s отключено\n", args[0])
		if args[0] == app.State().DeviceID {
			return app.Forget()
		}
		return nil
	},
}

func init() {
	devicesCmd.AddCommand(removeDeviceCmd)
}
