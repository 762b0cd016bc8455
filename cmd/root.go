package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"loadcompose/internal/ab"
	"loadcompose/internal/banner"
	"loadcompose/internal/compose"
	"loadcompose/internal/config"
	"loadcompose/internal/dummy"
	"loadcompose/internal/remote"
	"loadcompose/internal/storage"
	"loadcompose/internal/tui/history"
)

var (
	cfgFile  string
	settings *config.Settings

	// compose flags
	writeTo        string
	overwrite      bool
	uploadAndRunAs string
	liveView       bool
	probeTarget    bool
)

var rootCmd = &cobra.Command{
	Use:   "loadcompose",
	Short: "loadcompose - turn legacy benchmark commands into load test projects",
	Long: `
loadcompose translates a legacy benchmark invocation (ab) into an as-code
load test project, writes it as one file or a directory of includes, and can
upload and run it on an execution service, printing the familiar report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings()
	},
}

func loadSettings() error {
	var err error
	settings, err = config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	setupLogging(settings.LogLevel)
	return nil
}

var composeCmd = &cobra.Command{
	Use:   "compose <model> [options...]",
	Short: "Create a project from a known load test model",
	Long: `Create a YAML project from a known model. The only model is "ab";
everything after it is the Apache Benchmark option string, e.g.

  loadcompose compose ab -n 100 -c 10 https://example.com/
  loadcompose compose ab -t 30 -c 5 https://example.com/ --write-to ./proj
  loadcompose compose ab -n 10 https://example.com/ --upload-and-run-as my-test`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		own, model, meta, err := splitComposeArgs(args)
		if err != nil {
			return err
		}
		// Flag parsing is off for compose, so root's persistent flags are
		// merged and parsed here, then config is resolved again.
		cmd.InheritedFlags()
		if err := cmd.Flags().Parse(own); err != nil {
			return err
		}
		if help, _ := cmd.Flags().GetBool("help"); help {
			return cmd.Help()
		}
		initConfig()
		if err := loadSettings(); err != nil {
			return err
		}

		ctx, stop := context.WithCancel(context.Background())
		defer stop()

		interrupts := make(chan os.Signal, 1)
		if !liveView {
			signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(interrupts)
		}

		store, err := storage.NewStore(settings.HistoryFile)
		if err != nil {
			log.Warn().Err(err).Str("path", settings.HistoryFile).Msg("history disabled")
			store = nil
		}

		return compose.Run(ctx, compose.Request{
			Model:          model,
			Meta:           meta,
			WriteTo:        writeTo,
			Overwrite:      overwrite,
			UploadAndRunAs: uploadAndRunAs,
			Live:           liveView,
			Probe:          probeTarget,
		}, compose.Deps{
			Service:      remote.NewClient(settings.APIURL, settings.Token, settings.Workspace),
			Out:          os.Stdout,
			History:      store,
			PollInterval: settings.PollInterval,
			MinWebVUs:    settings.MinWebVUs,
			Interrupts:   interrupts,
		})
	},
}

var dummyCmd = &cobra.Command{
	Use:   "dummy",
	Short: "Run the local execution service and sample endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		server, svc := dummy.Start(dummy.ServerConfig{Port: port})

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		svc.Close()
		return server.Shutdown(context.Background())
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.NewStore(settings.HistoryFile)
		if err != nil {
			return err
		}
		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
			return history.Browse(store.List())
		}
		fmt.Println(history.Render(store.List()))
		return nil
	},
}

var abHelpCmd = &cobra.Command{
	Use:   "ab-help",
	Short: "Show the Apache Benchmark options the ab model understands",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(ab.Usage)
	},
}

func Execute() {
	// Custom Help with Banner
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(composeCmd, dummyCmd, historyCmd, abHelpCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.loadcompose.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "execution service base URL")
	rootCmd.PersistentFlags().String("token", "", "execution service account token")
	rootCmd.PersistentFlags().String("workspace", "", "execution service workspace")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	for key, flag := range map[string]string{
		"api_url":   "api-url",
		"token":     "token",
		"workspace": "workspace",
		"log_level": "log-level",
	} {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}

	composeCmd.Flags().StringVar(&writeTo, "write-to", "", "write the project to a directory (or a .yaml file)")
	composeCmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite contents if they already exist; must be explicit")
	composeCmd.Flags().StringVar(&uploadAndRunAs, "upload-and-run-as", "", "upload the project to this test and run it immediately")
	composeCmd.Flags().BoolVar(&liveView, "live", false, "watch the run in the terminal UI")
	composeCmd.Flags().BoolVar(&probeTarget, "probe", false, "send one request to the target to fill server, TLS and length in the report")

	dummyCmd.Flags().IntP("port", "p", 8080, "Port to run dummy server on")
	historyCmd.Flags().BoolP("interactive", "i", false, "browse the history table")
}

func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".loadcompose")
		}
	}
	config.Bind(viper.GetViper())
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: could not read config: %v\n", err)
		}
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// composeFlags are the compose flags that may appear anywhere after the
// model; value reports whether the flag takes a separate argument.
var composeFlags = map[string]bool{
	"--config":            true,
	"--api-url":           true,
	"--token":             true,
	"--workspace":         true,
	"--log-level":         true,
	"--write-to":          true,
	"--upload-and-run-as": true,
	"--overwrite":         false,
	"--live":              false,
	"--probe":             false,
	"--help":              false,
}

// splitComposeArgs separates compose's own long flags from the model name
// and the ab option string. ab only uses single-dash flags, so any
// recognised "--" flag belongs to compose.
func splitComposeArgs(args []string) (own []string, model, meta string, err error) {
	var rest []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		name, _, hasValue := strings.Cut(a, "=")
		takesValue, known := composeFlags[name]
		switch {
		case known && takesValue && !hasValue:
			if i+1 >= len(args) {
				return nil, "", "", fmt.Errorf("flag needs an argument: %s", a)
			}
			own = append(own, a, args[i+1])
			i++
		case known:
			own = append(own, a)
		default:
			rest = append(rest, a)
		}
	}
	if len(rest) > 0 {
		model = rest[0]
		meta = joinMeta(rest[1:])
	}
	return own, model, meta, nil
}

// joinMeta rebuilds the option string, quoting arguments the shell split
// off with embedded whitespace so the ab tokenizer sees them whole.
func joinMeta(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \t") && !strings.ContainsAny(a, `"'`) {
			a = `"` + a + `"`
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}
