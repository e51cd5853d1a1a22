package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"storysync/internal/domain/sync"
)

var pushIn string

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Отправить изменения на сервер",
	Long: `Читает JSON с изменениями ({"changes": [...]} или просто массив)
из --in или stdin и отправляет их одним пакетом.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var r io.Reader = os.Stdin
		if pushIn != "" && pushIn != "-" {
			f, err := os.Open(pushIn)
			if err != nil {
				return fmt.Errorf("ошибка открытия файла: %w", err)
			}
			defer f.Close()
			r = f
		}

		changes, err := readChanges(r)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		resp, err := app.Push(ctx, changes)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(resp)
		}
		okColor.Printf("✓ %s\n", resp.Message)
		fmt.Printf("  принято: %d, отклонено: %d, конфликтов: %d\n", resp.Accepted, resp.Rejected, len(resp.Conflicts))
		for _, c := range resp.Conflicts {
			warnColor.Printf("  ! %s#%d: версия устройства %d, версия сервера %d (%s)\n",
				c.EntityType, c.EntityID, c.MobileVersion, c.DesktopVersion, c.Resolution)
		}
		return nil
	},
}

func readChanges(r io.Reader) ([]sync.EntityChange, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения изменений: %w", err)
	}

	var wrapped sync.PushRequest
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Changes != nil {
		return wrapped.Changes, nil
	}

	var list []sync.EntityChange
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("ожидался JSON с изменениями: %w", err)
	}
	return list, nil
}

func init() {
	pushCmd.Flags().StringVarP(&pushIn, "in", "i", "", "файл с изменениями (по умолчанию stdin)")
}
