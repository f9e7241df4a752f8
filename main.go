package main

import (
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"asllpay-bot/internal/config"
	"asllpay-bot/internal/logging"
	"asllpay-bot/internal/menu"
	"asllpay-bot/internal/notify"
	"asllpay-bot/internal/order"
	"asllpay-bot/internal/pricing"
	"asllpay-bot/internal/rates"
)

func main() {
	var envFile string

	root := &cobra.Command{
		Use:          "asllpay-bot",
		Short:        "Telegram order intake bot for the Asll Pay concierge payment service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(envFile)
		},
	}
	root.Flags().StringVar(&envFile, "env-file", "", "optional .env file to load before reading the environment")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	logger, err := logging.New("asllpay-bot")
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("authorize bot: %w", err)
	}
	logger.Info("authorized", zap.String("account", bot.Self.UserName))

	if cfg.AdminChatID != 0 {
		logger.Info("operator notifications enabled", zap.Int64("admin_chat_id", cfg.AdminChatID))
	} else {
		logger.Warn("ADMIN_CHAT_ID not set, operator notifications disabled")
	}

	worker := notify.NewWorker(bot, cfg.AdminChatID, logger)
	defer worker.Close()

	orders := order.NewLog()
	notifier := order.Fanout{orders, worker}

	host := menu.NewHost(bot, cfg, pricing.DefaultTable(), notifier, orders, rates.NewClient(cfg.RatesURL), logger)
	host.Run()
	return nil
}
