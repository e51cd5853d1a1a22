package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	pairToken string
	pairName  string
	pairAuto  bool
)

var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Сопрячь устройство с сервером",
	Long: `Обменивает одноразовый токен сопряжения (из QR-кода настольного приложения)
на постоянный токен устройства.

С флагом --auto токен запрашивается у сервера напрямую; это удобно, когда
syncctl запущен на той же машине, что и сервер.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		token := pairToken
		if pairAuto {
			qr, err := app.IssuePairingToken(ctx)
			if err != nil {
				return fmt.Errorf("не удалось получить токен сопряжения: %w", err)
			}
			token = qr.Token
		}
		if token == "" {
			var err error
			if token, err = promptSecret("Токен сопряжения: "); err != nil {
				return err
			}
		}

		name := pairName
		if name == "" && app.State().DeviceName == "" {
			host, _ := os.Hostname()
			name = "syncctl@" + host
		}

		resp, err := app.Pair(ctx, token, name)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(resp)
		}
		okColor.Printf("✓ %s\n", resp.Message)
		fmt.Printf("Устройство: %s (%s)\n", resp.DeviceName, resp.DeviceID)
		return nil
	},
}

// promptSecret читает токен без эха, если stdin терминал
func promptSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Print(prompt)
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("ошибка чтения токена: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("ошибка чтения токена: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	pairCmd.Flags().StringVar(&pairToken, "token", "", "токен сопряжения")
	pairCmd.Flags().StringVar(&pairName, "name", "", "имя устройства")
	pairCmd.Flags().BoolVar(&pairAuto, "auto", false, "запросить токен у сервера")
}
