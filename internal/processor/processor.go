package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"fyne.io/fyne/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"codeberg.org/snonux/gemtrans/internal/batch"
	"codeberg.org/snonux/gemtrans/internal/cli"
	"codeberg.org/snonux/gemtrans/internal/controller"
	"codeberg.org/snonux/gemtrans/internal/credentials"
	"codeberg.org/snonux/gemtrans/internal/gui"
	"codeberg.org/snonux/gemtrans/internal/languages"
	"codeberg.org/snonux/gemtrans/internal/logging"
	"codeberg.org/snonux/gemtrans/internal/models"
	"codeberg.org/snonux/gemtrans/internal/translation"
)

// Processor handles the main processing logic
type Processor struct {
	flags  *cli.Flags
	logger *zap.Logger
	// sink is set in GUI mode, where the log viewer reads from it
	sink *logging.Sink
	out    io.Writer

	// newTranslator is replaced in tests
	newTranslator func(translation.Config) (translation.Translator, error)
}

// NewProcessor creates a new processor writing results to stdout
func NewProcessor(flags *cli.Flags) *Processor {
	return &Processor{
		flags:         flags,
		logger:        logging.New(flags.Verbose),
		out:           os.Stdout,
		newTranslator: translation.New,
	}
}

// SetOutput redirects result output, mainly for tests
func (p *Processor) SetOutput(w io.Writer) {
	p.out = w
}

// Close flushes the logger
func (p *Processor) Close() {
	_ = p.logger.Sync()
}

// TranslatorConfig merges flags and configuration into a translation.Config.
// Config file and environment values apply where the flag was left at its
// default.
func (p *Processor) TranslatorConfig() translation.Config {
	cfg := translation.DefaultConfig()
	cfg.Backend = stringSetting("translator.backend", p.flags.Backend)
	cfg.Model = stringSetting("translator.model", p.flags.Model)
	cfg.BaseURL = stringSetting("translator.base_url", p.flags.BaseURL)
	cfg.AuthHeader = stringSetting("translator.auth_header", p.flags.AuthHeader)
	if viper.IsSet("translator.breaker_threshold") {
		cfg.BreakerThreshold = viper.GetUint32("translator.breaker_threshold")
	} else {
		cfg.BreakerThreshold = p.flags.BreakerThreshold
	}
	if d := viper.GetDuration("translator.breaker_cooldown"); d > 0 {
		cfg.BreakerCooldown = d
	}
	cfg.Logger = p.logger

	// A Gemini default model and URL mean nothing to the OpenAI backend
	if strings.EqualFold(cfg.Backend, translation.BackendOpenAI) {
		if cfg.Model == translation.DefaultGeminiModel {
			cfg.Model = ""
		}
		if cfg.BaseURL == translation.DefaultGeminiBaseURL {
			cfg.BaseURL = ""
		}
	}
	return cfg
}

// StoreConfig merges flags and configuration into a credentials.Config
func (p *Processor) StoreConfig() credentials.Config {
	return credentials.Config{
		Backend: stringSetting("store.backend", p.flags.StoreBackend),
		Path:    stringSetting("store.path", p.flags.StorePath),
		DSN:     stringSetting("store.dsn", p.flags.StoreDSN),
	}
}

func (p *Processor) languagePair() (string, string) {
	return stringSetting("languages.source", p.flags.SourceLang),
		stringSetting("languages.target", p.flags.TargetLang)
}

// openStore opens the configured store. A key from --api-key, the
// environment or the config file takes precedence for this run and is not
// written to the durable store.
func (p *Processor) openStore(ctx context.Context) (credentials.Store, io.Closer, error) {
	if key := cli.GetGeminiKey(p.flags); key != "" {
		p.logger.Debug("using API key from flag, environment or config", zap.String("key", credentials.MaskKey(key)))
		store := credentials.NewMemoryStore()
		if err := store.Set(ctx, credentials.DefaultSlot, key); err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil
	}
	return credentials.Open(ctx, p.StoreConfig())
}

// newController builds the store, translator and controller. The returned
// closer releases the store.
func (p *Processor) newController(ctx context.Context) (*controller.Controller, io.Closer, error) {
	tr, err := p.newTranslator(p.TranslatorConfig())
	if err != nil {
		return nil, nil, err
	}

	store, closer, err := p.openStore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	source, target := p.languagePair()
	ctrl, err := controller.New(ctx, store, tr,
		controller.WithLogger(p.logger),
		controller.WithLanguages(source, target))
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return ctrl, closer, nil
}

// TranslateText translates a single text and prints the result
func (p *Processor) TranslateText(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to translate")
	}

	ctrl, closer, err := p.newController(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	if !ctrl.State().HasCredential() {
		return noKeyError()
	}

	ctrl.SetSourceText(text)
	task := ctrl.Translate(ctx)
	if task == nil {
		return fmt.Errorf("translation could not be started")
	}
	if err := task.Wait(ctx); err != nil {
		return err
	}

	s := ctrl.State()
	if s.ErrorMessage != "" {
		return errors.New(s.ErrorMessage)
	}
	fmt.Fprintln(p.out, s.TranslatedText)
	return nil
}

// ProcessBatch translates every entry of the batch file and optionally
// saves the results
func (p *Processor) ProcessBatch(ctx context.Context) error {
	entries, err := batch.ReadBatchFile(p.flags.BatchFile)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("batch file %s contains no texts", p.flags.BatchFile)
	}

	ctrl, closer, err := p.newController(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	summary, err := batch.Run(ctx, ctrl, entries, p.out)
	if errors.Is(err, batch.ErrNoCredential) {
		return noKeyError()
	}
	if err != nil {
		return err
	}

	// Print summary
	fmt.Fprintf(p.out, "\n=== Batch Translation Summary ===\n")
	fmt.Fprintf(p.out, "Total texts: %d\n", len(entries))
	fmt.Fprintf(p.out, "Translated: %d\n", summary.Succeeded)
	if summary.Failed > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", summary.Failed)
	}
	fmt.Fprintf(p.out, "=================================\n")

	if p.flags.OutputFile != "" {
		if err := batch.SaveResults(p.flags.OutputFile, summary.Results); err != nil {
			return err
		}
		fmt.Fprintf(p.out, "Results saved to: %s\n", p.flags.OutputFile)
	}
	return nil
}

// SetKey saves key to the durable credential store
func (p *Processor) SetKey(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("API key must not be empty")
	}

	tr, err := p.newTranslator(p.TranslatorConfig())
	if err != nil {
		return err
	}

	store, closer, err := credentials.Open(ctx, p.StoreConfig())
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	defer closer.Close()

	ctrl, err := controller.New(ctx, store, tr, controller.WithLogger(p.logger))
	if err != nil {
		return err
	}
	if err := ctrl.SubmitCredential(ctx, key); err != nil {
		return err
	}

	fmt.Fprintf(p.out, "API key %s saved to %s store\n",
		credentials.MaskKey(strings.TrimSpace(key)), storeName(p.StoreConfig().Backend))
	return nil
}

// ListLanguages prints the language catalog
func (p *Processor) ListLanguages() error {
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tLANGUAGE")
	for _, l := range languages.All() {
		fmt.Fprintf(w, "%s\t%s\n", l.Code, l.Name)
	}
	return w.Flush()
}

// ListModels prints the models available to the current API key
func (p *Processor) ListModels(ctx context.Context) error {
	key := cli.GetGeminiKey(p.flags)
	if key == "" {
		store, closer, err := credentials.Open(ctx, p.StoreConfig())
		if err != nil {
			return fmt.Errorf("failed to open credential store: %w", err)
		}
		defer closer.Close()
		if key, err = store.Get(ctx, credentials.DefaultSlot); err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
	}

	lister := models.NewLister(key, p.TranslatorConfig())
	return lister.ListAvailableModels(ctx, p.out)
}

// enableLogSink switches the logger to one that also feeds the GUI log
// viewer
func (p *Processor) enableLogSink() {
	if p.sink != nil {
		return
	}
	_ = p.logger.Sync()
	p.sink = logging.NewSink(1000)
	p.logger = logging.NewBuffered(p.flags.Verbose, p.sink)
}

// RunGUIMode launches the GUI application
func (p *Processor) RunGUIMode() error {
	p.enableLogSink()

	tr, err := p.newTranslator(p.TranslatorConfig())
	if err != nil {
		return err
	}

	source, target := p.languagePair()
	guiConfig := &gui.Config{
		Translator: tr,
		OpenStore:  p.guiStoreOpener(),
		SourceLang: source,
		TargetLang: target,
		Logger:     p.logger,
		LogSink:    p.sink,
	}

	app, err := gui.New(guiConfig)
	if err != nil {
		return err
	}
	app.Run()
	return nil
}

// guiStoreOpener adds the fyne preferences backend to the regular ones
func (p *Processor) guiStoreOpener() gui.StoreOpener {
	return func(ctx context.Context, a fyne.App) (credentials.Store, io.Closer, error) {
		if strings.EqualFold(p.StoreConfig().Backend, credentials.BackendPreferences) && cli.GetGeminiKey(p.flags) == "" {
			return credentials.NewPreferencesStore(a.Preferences()), nopCloser{}, nil
		}
		return p.openStore(ctx)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func noKeyError() error {
	return fmt.Errorf("no API key configured. Set GEMINI_API_KEY, use --api-key, or save one with --set-key")
}

func storeName(backend string) string {
	if backend == "" {
		return credentials.BackendFile
	}
	return backend
}

// stringSetting returns the viper value for key, or fallback when unset
func stringSetting(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}
