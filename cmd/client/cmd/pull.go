package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	pullFull  bool
	pullTypes []string
	pullOut   string
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Получить изменения с сервера",
	Long: `Забирает изменения, сделанные после последней синхронизации.
--full запрашивает все сущности заново. Изменения пишутся в --out или на stdout.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		resp, err := app.Pull(ctx, pullFull, pullTypes)
		if err != nil {
			return err
		}

		if pullOut != "" {
			f, err := os.Create(pullOut)
			if err != nil {
				return fmt.Errorf("ошибка создания файла: %w", err)
			}
			defer f.Close()
			if err := writeJSON(f, resp); err != nil {
				return fmt.Errorf("ошибка записи файла: %w", err)
			}
		} else if jsonOutput {
			return printJSON(resp)
		}

		counts := map[string]int{}
		for _, c := range resp.Changes {
			counts[string(c.Operation)]++
		}
		okColor.Printf("✓ Получено изменений: %d\n", len(resp.Changes))
		fmt.Printf("  create: %d, update: %d, delete: %d\n", counts["create"], counts["update"], counts["delete"])
		dimColor.Printf("  sync_timestamp: %s\n", resp.SyncTimestamp.Format("2006-01-02T15:04:05Z07:00"))
		if pullOut != "" {
			dimColor.Printf("  записано в %s\n", pullOut)
		}
		return nil
	},
}

func init() {
	pullCmd.Flags().BoolVar(&pullFull, "full", false, "полная синхронизация")
	pullCmd.Flags().StringSliceVar(&pullTypes, "types", nil, "типы сущностей (actor,location,...)")
	pullCmd.Flags().StringVarP(&pullOut, "out", "o", "", "файл для изменений")
}
