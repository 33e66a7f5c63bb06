package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/taskgpt/internal/profile"
	"github.com/hrygo/taskgpt/internal/version"
	"github.com/hrygo/taskgpt/server"
)

var (
	rootCmd = &cobra.Command{
		Use:   "taskgpt",
		Short: `A conversational to-do list. Manage your tasks by chatting in plain language.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Systemd units pass configuration through the environment.
			if !isRunningAsSystemdService() {
				_ = godotenv.Load()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			instanceProfile, err := loadProfile()
			if err != nil {
				return err
			}
			setupLogger(instanceProfile)

			ctx, stop := signal.NotifyContext(cmd.Context(), terminationSignals...)
			defer stop()

			app, err := newApp(ctx, instanceProfile)
			if err != nil {
				return err
			}
			defer app.Close()

			// Connect to Telegram before anything starts serving.
			hub, err := newTelegramHub(instanceProfile, app.runner)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			s := server.NewServer(gctx, instanceProfile, app.store, app.runner, app.index, app.metrics)
			g.Go(func() error {
				return s.Start(gctx)
			})
			if hub != nil {
				g.Go(func() error {
					return hub.Run(gctx)
				})
			}

			printGreetings(instanceProfile)
			return g.Wait()
		},
	}

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Chat with TaskGPT in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			instanceProfile, err := loadProfile()
			if err != nil {
				return err
			}
			setupLogger(instanceProfile)

			ctx, stop := signal.NotifyContext(cmd.Context(), terminationSignals...)
			defer stop()

			app, err := newApp(ctx, instanceProfile)
			if err != nil {
				return err
			}
			defer app.Close()

			return runConsole(ctx, app.runner, os.Stdin, os.Stdout)
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "TaskGPT", version.StringFull())
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8000)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8000, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")

	for _, key := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("taskgpt")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(chatCmd, versionCmd)
}

func loadProfile() (*profile.Profile, error) {
	instanceProfile := &profile.Profile{
		Mode:    viper.GetString("mode"),
		Addr:    viper.GetString("addr"),
		Port:    viper.GetInt("port"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Version: version.GetCurrentVersion(viper.GetString("mode")),
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, err
	}
	return instanceProfile, nil
}

// setupLogger installs the root logger: text for dev, JSON for prod.
func setupLogger(p *profile.Profile) {
	var handler slog.Handler
	if p.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("TaskGPT %s started successfully!\n", profile.Version)
	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Data directory: %s\n", profile.Data)
	fmt.Printf("Database driver: %s\n", profile.Driver)
	fmt.Printf("Mode: %s\n", profile.Mode)
	if !profile.IsAIEnabled() {
		fmt.Println("No LLM API key set: only menu numbers and exact option names are understood.")
	}

	host := profile.Addr
	if host == "" {
		host = "localhost"
	}
	fmt.Printf("HTTP API: http://%s:%d/api/v1\n", host, profile.Port)
	fmt.Printf("Chat: ws://%s:%d/ws\n", host, profile.Port)
	if profile.TelegramToken != "" {
		fmt.Println("Telegram bot: enabled")
	}
}

// isRunningAsSystemdService detects if the process is running under systemd
func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
