package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/gemtrans/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gemtrans [text]",
		Short: "Gemini-powered text translator",
		Long: `gemtrans translates text between 47 languages using Google Gemini.

Without arguments it opens the translator window. Your API key is asked
for once and remembered.

Examples:
  gemtrans                                  # Launch interactive GUI (default)
  gemtrans "Good morning"                   # Translate English to Japanese
  gemtrans --from de --to fr "Guten Tag"    # Pick the language pair
  gemtrans --batch texts.txt                # Translate a file line by line
  gemtrans --set-key AIza...                # Save your API key`,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.gemtrans.yaml)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")

	// Local flags
	cmd.Flags().StringVarP(&flags.SourceLang, "from", "f", flags.SourceLang, "Source language code (see --list-languages)")
	cmd.Flags().StringVarP(&flags.TargetLang, "to", "t", flags.TargetLang, "Target language code (see --list-languages)")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Translate texts from file (one per line, optional 'src>tgt:' prefix)")
	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Write batch results to file")
	cmd.Flags().StringVar(&flags.SetKey, "set-key", "", "Save an API key to the credential store and exit")
	cmd.Flags().StringVar(&flags.APIKey, "api-key", "", "API key for this run (not saved)")
	cmd.Flags().BoolVar(&flags.ListLanguages, "list-languages", false, "List supported languages")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List models available for the current API key")

	// Translator flags
	cmd.Flags().StringVar(&flags.Backend, "backend", flags.Backend, "Translation backend: gemini, genai, openai")
	cmd.Flags().StringVar(&flags.Model, "model", flags.Model, "Model name")
	cmd.Flags().StringVar(&flags.BaseURL, "base-url", flags.BaseURL, "API base URL")
	cmd.Flags().StringVar(&flags.AuthHeader, "auth-header", flags.AuthHeader, "Gemini REST authentication: bearer or api-key")
	cmd.Flags().Uint32Var(&flags.BreakerThreshold, "breaker-threshold", flags.BreakerThreshold, "Consecutive failures before requests fail fast (0 disables)")

	// Credential store flags
	cmd.Flags().StringVar(&flags.StoreBackend, "store", flags.StoreBackend, "Credential store: file, sqlite, postgres, memory")
	cmd.Flags().StringVar(&flags.StorePath, "store-path", "", "Credential file or SQLite database path")
	cmd.Flags().StringVar(&flags.StoreDSN, "store-dsn", "", "PostgreSQL connection string for --store postgres")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("languages.source", cmd.Flags().Lookup("from"))
	viper.BindPFlag("languages.target", cmd.Flags().Lookup("to"))
	viper.BindPFlag("translator.backend", cmd.Flags().Lookup("backend"))
	viper.BindPFlag("translator.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("translator.base_url", cmd.Flags().Lookup("base-url"))
	viper.BindPFlag("translator.auth_header", cmd.Flags().Lookup("auth-header"))
	viper.BindPFlag("translator.breaker_threshold", cmd.Flags().Lookup("breaker-threshold"))
	viper.BindPFlag("store.backend", cmd.Flags().Lookup("store"))
	viper.BindPFlag("store.path", cmd.Flags().Lookup("store-path"))
	viper.BindPFlag("store.dsn", cmd.Flags().Lookup("store-dsn"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".gemtrans" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".gemtrans")
	}

	// Environment variables
	viper.SetEnvPrefix("GEMTRANS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetGeminiKey retrieves the API key from the --api-key flag, the
// environment or the config file, in that order. The credential store is
// consulted later by the controller.
func GetGeminiKey(flags *Flags) string {
	if flags != nil && flags.APIKey != "" {
		return flags.APIKey
	}

	// Then check environment variable
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("gemini.api_key")
}
