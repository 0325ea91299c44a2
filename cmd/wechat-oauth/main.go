package main

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/wxkit/wechat-oauth/internal/config"
	"github.com/wxkit/wechat-oauth/internal/logger"
	"github.com/wxkit/wechat-oauth/internal/server"
	"github.com/wxkit/wechat-oauth/wechat"
	"go.uber.org/fx"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wechat-oauth",
	Short: "A web server demonstrating the WeChat OAuth session",
	Long: `wechat-oauth runs a small web server around a wechat.Session:
/auth/login redirects the browser to the provider's consent page,
/auth/callback exchanges the returned code for a token and responds with
the user's profile, and /auth/profile serves profiles for previously
authorized openids from the session's token cache.`,
	Run: runServer,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags()
	rootCmd.Flags().AddFlagSet(pflag.CommandLine)
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
}

func runServer(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		pterm.Error.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitLogger(&cfg.Logging); err != nil {
		pterm.Error.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(newSession),
		server.Module,
		fx.NopLogger,
	)

	app.Run()
}

// newSession builds the process-lifetime session; its token cache must
// outlive individual requests.
func newSession(cfg *config.Config) *wechat.Session {
	opts := []wechat.Option{
		wechat.WithLogger(logger.GetLogger()),
	}
	if cfg.WeChat.Scope != "" {
		opts = append(opts, wechat.WithScope(cfg.WeChat.Scope))
	}
	if cfg.WeChat.Lang != "" {
		opts = append(opts, wechat.WithLang(cfg.WeChat.Lang))
	}
	return wechat.NewSession(wechat.Config{
		AppID:  cfg.WeChat.AppID,
		Secret: cfg.WeChat.Secret,
	}, opts...)
}
