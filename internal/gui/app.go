package gui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"go.uber.org/zap"

	"codeberg.org/snonux/gemtrans/internal"
	"codeberg.org/snonux/gemtrans/internal/controller"
	"codeberg.org/snonux/gemtrans/internal/credentials"
	"codeberg.org/snonux/gemtrans/internal/languages"
	"codeberg.org/snonux/gemtrans/internal/logging"
	"codeberg.org/snonux/gemtrans/internal/translation"
)

// AppID is the fyne application ID; it also names the preferences file
const AppID = "org.codeberg.snonux.gemtrans"

// APIKeyURL is where users obtain a Gemini API key
const APIKeyURL = "https://makersuite.google.com/app/apikey"

// StoreOpener opens the credential store once the fyne app exists, so the
// app's own preferences can serve as the store
type StoreOpener func(ctx context.Context, a fyne.App) (credentials.Store, io.Closer, error)

// Config holds GUI application configuration
type Config struct {
	Translator translation.Translator
	OpenStore  StoreOpener
	SourceLang string
	TargetLang string
	Logger     *zap.Logger
	// LogSink feeds the log viewer; nil hides it
	LogSink *logging.Sink
}

// Application represents the main GUI application
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	ctrl   *controller.Controller
	logger *zap.Logger
	closer io.Closer

	// UI elements
	sourceSelect    *widget.Select
	targetSelect    *widget.Select
	sourceEntry     *CustomMultiLineEntry
	translatedEntry *widget.Entry
	swapButton      *ttwidget.Button
	translateButton *ttwidget.Button
	keyButton       *ttwidget.Button
	helpButton      *ttwidget.Button
	progress        *widget.ProgressBarInfinite
	errorLabel      *widget.Label
	statusLabel     *widget.Label
	logViewer       *LogViewer

	credDialog dialog.Dialog
	keyEntry   *CustomEntry

	// rendering is set while widgets are updated from state, so their
	// change callbacks do not echo back into the controller
	rendering bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the fyne app, opens the credential store and builds the
// controller behind the window
func New(config *Config) (*Application, error) {
	if config == nil || config.Translator == nil {
		return nil, errors.New("gui: translator is required")
	}
	if config.OpenStore == nil {
		config.OpenStore = func(ctx context.Context, _ fyne.App) (credentials.Store, io.Closer, error) {
			return credentials.Open(ctx, credentials.Config{})
		}
	}

	myApp := app.NewWithID(AppID)
	myApp.SetIcon(GetAppIcon())

	ctx, cancel := context.WithCancel(context.Background())

	store, closer, err := config.OpenStore(ctx, myApp)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	ctrl, err := newController(ctx, store, config)
	if err != nil {
		closer.Close()
		cancel()
		return nil, err
	}

	a := newApplication(ctx, cancel, myApp, ctrl, config)
	a.closer = closer
	return a, nil
}

func newController(ctx context.Context, store credentials.Store, config *Config) (*controller.Controller, error) {
	source, target := config.SourceLang, config.TargetLang
	if source == "" {
		source = languages.DefaultSource
	}
	if target == "" {
		target = languages.DefaultTarget
	}
	return controller.New(ctx, store, config.Translator,
		controller.WithLogger(config.Logger),
		controller.WithLanguages(source, target))
}

func newApplication(ctx context.Context, cancel context.CancelFunc, fyneApp fyne.App, ctrl *controller.Controller, config *Config) *Application {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Application{
		app:    fyneApp,
		ctrl:   ctrl,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	a.setupUI(config.LogSink)

	ctrl.Subscribe(func(s controller.State) {
		fyne.Do(func() {
			a.render(s)
		})
	})
	a.render(ctrl.State())

	return a
}

// setupUI creates the main user interface
func (a *Application) setupUI(sink *logging.Sink) {
	a.window = a.app.NewWindow(fmt.Sprintf("gemtrans v%s - Gemini Translator", internal.Version))
	a.window.SetIcon(GetAppIcon())
	a.window.Resize(fyne.NewSize(900, 600))

	// Language row
	a.sourceSelect = widget.NewSelect(languages.Names(), func(name string) {
		a.onLanguageSelected(name, a.ctrl.SetSourceLanguage)
	})
	a.targetSelect = widget.NewSelect(languages.Names(), func(name string) {
		a.onLanguageSelected(name, a.ctrl.SetTargetLanguage)
	})

	// Buttons (tooltips are set after the tooltip layer exists)
	a.swapButton = ttwidget.NewButtonWithIcon("", theme.ViewRefreshIcon(), a.onSwap)
	a.translateButton = ttwidget.NewButtonWithIcon("Translate", theme.ConfirmIcon(), a.onTranslate)
	a.translateButton.Importance = widget.HighImportance
	a.keyButton = ttwidget.NewButtonWithIcon("Change API Key", theme.AccountIcon(), a.ctrl.OpenCredentialDialog)
	a.helpButton = ttwidget.NewButtonWithIcon("", theme.HelpIcon(), a.onShowHotkeys)

	languageRow := container.NewBorder(nil, nil, nil, nil,
		container.New(layout.NewGridLayout(3),
			a.sourceSelect,
			container.NewCenter(a.swapButton),
			a.targetSelect,
		),
	)

	// Text areas
	a.sourceEntry = NewCustomMultiLineEntry()
	a.sourceEntry.SetPlaceHolder("Enter text to translate... (Ctrl+Enter translates)")
	a.sourceEntry.Wrapping = fyne.TextWrapWord
	a.sourceEntry.OnChanged = func(text string) {
		if a.rendering {
			return
		}
		a.ctrl.SetSourceText(text)
	}
	a.sourceEntry.SetOnEscape(func() {
		a.window.Canvas().Unfocus()
	})
	a.sourceEntry.SetOnSubmit(a.onTranslate)

	a.translatedEntry = widget.NewMultiLineEntry()
	a.translatedEntry.SetPlaceHolder("Translation will appear here...")
	a.translatedEntry.Wrapping = fyne.TextWrapWord
	a.translatedEntry.Disable()

	textSection := container.NewHSplit(
		container.NewScroll(a.sourceEntry),
		container.NewScroll(a.translatedEntry),
	)
	textSection.SetOffset(0.5)

	// Status
	a.progress = widget.NewProgressBarInfinite()
	a.progress.Hide()
	a.errorLabel = widget.NewLabel("")
	a.errorLabel.Importance = widget.DangerImportance
	a.errorLabel.Wrapping = fyne.TextWrapWord
	a.errorLabel.Hide()
	a.statusLabel = widget.NewLabel("Ready")

	toolbar := container.NewHBox(
		a.translateButton,
		widget.NewSeparator(),
		a.keyButton,
		layout.NewSpacer(),
		a.helpButton,
	)

	bottom := container.NewVBox(a.progress, a.errorLabel, a.statusLabel)
	if sink != nil {
		a.logViewer = NewLogViewer(sink)
		bottom.Add(widget.NewAccordion(widget.NewAccordionItem("Log", a.logViewer)))
	}

	content := container.NewBorder(
		container.NewVBox(toolbar, widget.NewSeparator(), languageRow),
		bottom,
		nil, nil,
		textSection,
	)

	// Add the tooltip layer to enable tooltips
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))
	a.setupTooltips()

	a.window.SetOnClosed(func() {
		a.cancel()
		if a.logViewer != nil {
			a.logViewer.Detach()
		}
		if a.closer != nil {
			if err := a.closer.Close(); err != nil {
				a.logger.Warn("failed to close credential store", zap.Error(err))
			}
		}
	})

	a.setupKeyboardShortcuts()
}

func (a *Application) setupTooltips() {
	a.swapButton.SetToolTip("Swap languages (s)")
	a.translateButton.SetToolTip("Translate (Ctrl+Enter)")
	a.keyButton.SetToolTip("Change API key (k)")
	a.helpButton.SetToolTip("Show hotkeys (h)")
}

// Run starts the GUI application
func (a *Application) Run() {
	a.window.ShowAndRun()
}

// render makes every widget reflect s. It must run on the fyne thread.
func (a *Application) render(s controller.State) {
	a.rendering = true
	defer func() { a.rendering = false }()

	if name := languages.Name(s.SourceLang); a.sourceSelect.Selected != name {
		a.sourceSelect.SetSelected(name)
	}
	if name := languages.Name(s.TargetLang); a.targetSelect.Selected != name {
		a.targetSelect.SetSelected(name)
	}
	if a.sourceEntry.Text != s.SourceText {
		a.sourceEntry.SetText(s.SourceText)
	}
	if a.translatedEntry.Text != s.TranslatedText {
		a.translatedEntry.SetText(s.TranslatedText)
	}

	if s.CanTranslate() {
		a.translateButton.Enable()
	} else {
		a.translateButton.Disable()
	}

	if s.IsLoading {
		a.translateButton.SetText("Translating...")
		a.progress.Show()
		a.progress.Start()
		a.statusLabel.SetText("Translating...")
	} else {
		a.translateButton.SetText("Translate")
		a.progress.Stop()
		a.progress.Hide()
		if s.HasCredential() {
			a.statusLabel.SetText(fmt.Sprintf("Ready - API key %s", credentials.MaskKey(s.Credential)))
		} else {
			a.statusLabel.SetText("No API key set")
		}
	}

	if s.ErrorMessage != "" {
		a.errorLabel.SetText(s.ErrorMessage)
		a.errorLabel.Show()
	} else {
		a.errorLabel.SetText("")
		a.errorLabel.Hide()
	}

	switch {
	case s.CredentialDialogVisible && a.credDialog == nil:
		a.showCredentialDialog()
	case !s.CredentialDialogVisible && a.credDialog != nil:
		d := a.credDialog
		a.credDialog = nil
		d.Hide()
	}
}

func (a *Application) onLanguageSelected(name string, set func(code string) error) {
	if a.rendering {
		return
	}
	code, ok := languages.CodeForName(name)
	if !ok {
		return
	}
	if err := set(code); err != nil {
		a.logger.Warn("language change rejected", zap.String("language", name), zap.Error(err))
	}
}

func (a *Application) onSwap() {
	a.ctrl.SwapLanguages()
}

// onTranslate starts a translation; the controller ignores it when not
// allowed
func (a *Application) onTranslate() {
	if task := a.ctrl.Translate(a.ctx); task == nil {
		a.logger.Debug("translate ignored")
	}
}

// showCredentialDialog opens the API key prompt. Confirming submits the key,
// dismissing keeps the current one.
func (a *Application) showCredentialDialog() {
	a.keyEntry = NewCustomEntry()
	a.keyEntry.Password = true
	a.keyEntry.SetPlaceHolder("Gemini API key")

	link, _ := url.Parse(APIKeyURL)
	content := container.NewVBox(
		widget.NewLabel("Enter your Gemini API key. It is saved on this computer."),
		a.keyEntry,
		widget.NewHyperlink("Get API Key", link),
	)

	// Hide reports a dismissal, so Enter in the entry is tracked separately
	submitted := false
	d := dialog.NewCustomConfirm("API Key", "Save", "Cancel", content, func(save bool) {
		a.onCredentialDialogClosed(save || submitted)
	}, a.window)
	d.Resize(fyne.NewSize(420, 200))

	a.keyEntry.OnSubmitted = func(string) {
		submitted = true
		d.Hide()
	}
	a.keyEntry.SetOnEscape(d.Hide)

	a.credDialog = d
	d.Show()
	a.window.Canvas().Focus(a.keyEntry)
}

func (a *Application) onCredentialDialogClosed(save bool) {
	a.credDialog = nil
	if !save {
		a.ctrl.CloseCredentialDialog()
		return
	}
	a.submitCredential(a.keyEntry.Text)
}

func (a *Application) submitCredential(value string) {
	if err := a.ctrl.SubmitCredential(a.ctx, value); err != nil {
		dialog.ShowError(fmt.Errorf("the key is used for this session but could not be saved: %w", err), a.window)
	}
	// Blank input leaves the prompt requested
	a.render(a.ctrl.State())
}

// setupKeyboardShortcuts registers single-key actions that work while no
// text field has focus, plus Ctrl+Enter to translate
func (a *Application) setupKeyboardShortcuts() {
	a.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyReturn,
		Modifier: fyne.KeyModifierShortcutDefault,
	}, func(fyne.Shortcut) {
		a.onTranslate()
	})

	a.window.Canvas().SetOnTypedRune(func(r rune) {
		if a.window.Canvas().Focused() != nil || a.credDialog != nil {
			return
		}

		switch r {
		case 's', 'S':
			a.onSwap()
		case 'k', 'K':
			a.ctrl.OpenCredentialDialog()
		case 'e', 'E':
			a.window.Canvas().Focus(a.sourceEntry)
		case 'h', 'H':
			a.onShowHotkeys()
		case 'q', 'Q':
			a.app.Quit()
		}
	})
}

// onShowHotkeys shows the keyboard shortcuts dialog
func (a *Application) onShowHotkeys() {
	hotkeys := `## Translation
**Ctrl+Enter** Translate  
**s** Swap languages  
**e** Focus source text  
**Esc** Unfocus field  

## API Key
**k** Change API key  

## Help
**h** Show hotkeys  
**c** Close dialog  
**q** Quit application  

---
*Single-key hotkeys work while no text field has focus*

Press **c** to close this dialog`

	content := widget.NewRichTextFromMarkdown(hotkeys)
	content.Wrapping = fyne.TextWrapWord

	scroll := container.NewScroll(container.NewPadded(content))
	scroll.SetMinSize(fyne.NewSize(400, 360))

	d := dialog.NewCustom("Keyboard Shortcuts", "Close", scroll, a.window)

	// Temporary handler for 'c' to close the dialog
	originalRuneHandler := a.window.Canvas().OnTypedRune()
	a.window.Canvas().SetOnTypedRune(func(r rune) {
		if r == 'c' || r == 'C' {
			d.Hide()
			return
		}
		if originalRuneHandler != nil {
			originalRuneHandler(r)
		}
	})
	d.SetOnClosed(func() {
		a.window.Canvas().SetOnTypedRune(originalRuneHandler)
	})

	d.Show()
}
