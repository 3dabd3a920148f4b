package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "gemtrans [text]" {
		t.Errorf("Expected Use to be 'gemtrans [text]', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "translator") {
		t.Errorf("Expected Short description to mention translator, got %q", cmd.Short)
	}

	// Test that flags are set up
	flagTests := []string{
		"config", "verbose", "from", "to", "batch", "output", "set-key", "api-key",
		"list-languages", "list-models", "backend", "model", "base-url",
		"auth-header", "breaker-threshold", "store", "store-path", "store-dsn",
	}

	for _, name := range flagTests {
		t.Run("flag_"+name, func(t *testing.T) {
			var flag *pflag.Flag
			if name == "config" || name == "verbose" {
				flag = cmd.PersistentFlags().Lookup(name)
			} else {
				flag = cmd.Flags().Lookup(name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	tests := []struct {
		name string
		want string
	}{
		{"from", "en"},
		{"to", "ja"},
		{"backend", "gemini"},
		{"auth-header", "bearer"},
		{"store", "file"},
		{"breaker-threshold", "5"},
	}

	for _, tt := range tests {
		flag := cmd.Flags().Lookup(tt.name)
		if flag == nil {
			t.Fatalf("%s flag not found", tt.name)
		}
		if flag.DefValue != tt.want {
			t.Errorf("Expected default %s to be %s, got %s", tt.name, tt.want, flag.DefValue)
		}
	}

	if sh := cmd.Flags().ShorthandLookup("t"); sh == nil || sh.Name != "to" {
		t.Error("expected -t shorthand for --to")
	}
}

func TestInitConfig(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		check     func(t *testing.T)
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				tmpDir := t.TempDir()
				cfgPath := filepath.Join(tmpDir, "test-config.yaml")
				content := `gemini:
  api_key: test-key
translator:
  backend: openai
languages:
  target: de`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
			check: func(t *testing.T) {
				if viper.GetString("gemini.api_key") != "test-key" {
					t.Errorf("gemini.api_key = %q", viper.GetString("gemini.api_key"))
				}
				if viper.GetString("translator.backend") != "openai" {
					t.Errorf("translator.backend = %q", viper.GetString("translator.backend"))
				}
				if viper.GetString("languages.target") != "de" {
					t.Errorf("languages.target = %q", viper.GetString("languages.target"))
				}
			},
		},
		{
			name: "without config file",
			setupFunc: func(t *testing.T) string {
				t.Setenv("HOME", t.TempDir())
				return ""
			},
			check: func(t *testing.T) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper for each test
			viper.Reset()

			cfgPath := tt.setupFunc(t)
			InitConfig(cfgPath)
			tt.check(t)

			// Test environment variable prefix
			t.Setenv("GEMTRANS_TEST_VAR", "test-value")
			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}

			// Nested keys map to underscored variables
			t.Setenv("GEMTRANS_STORE_BACKEND", "sqlite")
			if viper.GetString("store.backend") != "sqlite" {
				t.Errorf("store.backend = %q, want sqlite from env", viper.GetString("store.backend"))
			}
		})
	}
}

func TestInitConfig_DotEnv(t *testing.T) {
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()
	viper.Reset()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GEMINI_API_KEY=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}

	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	// Make sure the variable is unset and restored afterwards
	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")

	InitConfig("")

	if got := GetGeminiKey(nil); got != "from-dotenv" {
		t.Errorf("GetGeminiKey() = %q, want from-dotenv", got)
	}
}

func TestGetGeminiKey(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	tests := []struct {
		name      string
		flagKey   string
		envKey    string
		configKey string
		expected  string
	}{
		{
			name:      "from flag",
			flagKey:   "flag-test-key",
			envKey:    "env-test-key",
			configKey: "config-test-key",
			expected:  "flag-test-key",
		},
		{
			name:      "from environment",
			envKey:    "env-test-key",
			configKey: "config-test-key",
			expected:  "env-test-key",
		},
		{
			name:      "from config when no env",
			configKey: "config-test-key",
			expected:  "config-test-key",
		},
		{
			name:     "empty when neither set",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper
			viper.Reset()

			// Set up environment
			t.Setenv("GEMINI_API_KEY", tt.envKey)

			// Set up config
			if tt.configKey != "" {
				viper.Set("gemini.api_key", tt.configKey)
			}

			flags := NewFlags()
			flags.APIKey = tt.flagKey

			got := GetGeminiKey(flags)
			if got != tt.expected {
				t.Errorf("GetGeminiKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBindFlagsToViper(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	// Reset viper
	viper.Reset()

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	// Set some flag values
	cmd.Flags().Set("to", "fr")
	cmd.Flags().Set("backend", "genai")
	cmd.Flags().Set("store", "sqlite")

	bindFlagsToViper(cmd)

	// Test that values are bound
	if viper.GetString("languages.target") != "fr" {
		t.Errorf("Expected languages.target to be fr, got %s", viper.GetString("languages.target"))
	}

	if viper.GetString("translator.backend") != "genai" {
		t.Errorf("Expected translator.backend to be genai, got %s", viper.GetString("translator.backend"))
	}

	if viper.GetString("store.backend") != "sqlite" {
		t.Errorf("Expected store.backend to be sqlite, got %s", viper.GetString("store.backend"))
	}

	if viper.GetUint32("translator.breaker_threshold") != 5 {
		t.Errorf("Expected translator.breaker_threshold default 5, got %d", viper.GetUint32("translator.breaker_threshold"))
	}
}
