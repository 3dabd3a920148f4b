package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"codeberg.org/snonux/gemtrans/internal/credentials"
	"codeberg.org/snonux/gemtrans/internal/languages"
	"codeberg.org/snonux/gemtrans/internal/translation"
)

// Listener receives a state snapshot after every change
type Listener func(State)

// Controller owns one translation session
type Controller struct {
	store      credentials.Store
	translator translation.Translator
	slot       string
	logger     *zap.Logger

	mu    sync.Mutex
	state State

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// Option configures a Controller
type Option func(*Controller) error

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithSlot overrides the store key the credential is kept under
func WithSlot(slot string) Option {
	return func(c *Controller) error {
		if slot == "" {
			return errors.New("credential slot must not be empty")
		}
		c.slot = slot
		return nil
	}
}

// WithLanguages sets the initial language pair
func WithLanguages(source, target string) Option {
	return func(c *Controller) error {
		if err := languages.Validate(source); err != nil {
			return err
		}
		if err := languages.Validate(target); err != nil {
			return err
		}
		c.state.SourceLang = source
		c.state.TargetLang = target
		return nil
	}
}

// New creates a controller and restores the persisted credential from
// store. Without a stored credential the credential dialog starts visible.
// A failing store read is logged and treated as "no credential".
func New(ctx context.Context, store credentials.Store, translator translation.Translator, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, errors.New("credential store is required")
	}
	if translator == nil {
		return nil, errors.New("translator is required")
	}

	c := &Controller{
		store:      store,
		translator: translator,
		slot:       credentials.DefaultSlot,
		logger:     zap.NewNop(),
		listeners:  make(map[int]Listener),
		state: State{
			SourceLang: languages.DefaultSource,
			TargetLang: languages.DefaultTarget,
		},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	saved, err := store.Get(ctx, c.slot)
	if err != nil {
		c.logger.Warn("failed to read saved credential", zap.Error(err))
		saved = ""
	}

	if saved != "" {
		c.state.Credential = saved
		c.state.CredentialDialogVisible = false
	} else {
		c.state.CredentialDialogVisible = true
	}

	c.logger.Debug("controller initialised",
		zap.Bool("credential", saved != ""),
		zap.String("source", c.state.SourceLang),
		zap.String("target", c.state.TargetLang))

	return c, nil
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CanTranslate reports whether Translate would issue a request right now.
// Presentation layers enable the translate action exactly when this holds.
func (c *Controller) CanTranslate() bool {
	return c.State().CanTranslate()
}

// Subscribe registers l for state changes and returns a function that
// removes it. Listeners run on the goroutine that caused the change, after
// the controller's lock has been released.
func (c *Controller) Subscribe(l Listener) (unsubscribe func()) {
	c.listenersMu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = l
	c.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.listenersMu.Lock()
			delete(c.listeners, id)
			c.listenersMu.Unlock()
		})
	}
}

func (c *Controller) notify(s State) {
	c.listenersMu.Lock()
	ls := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	c.listenersMu.Unlock()

	for _, l := range ls {
		l(s)
	}
}

// update applies fn under the lock and notifies listeners with the result
func (c *Controller) update(fn func(s *State)) State {
	c.mu.Lock()
	fn(&c.state)
	snapshot := c.state
	c.mu.Unlock()

	c.notify(snapshot)
	return snapshot
}

// SubmitCredential saves a new API key. Blank input is ignored. The key is
// trimmed, persisted, and becomes the session credential; the dialog
// closes and any error message is cleared. A persistence failure is
// returned, but the session still uses the new key.
func (c *Controller) SubmitCredential(ctx context.Context, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}

	storeErr := c.store.Set(ctx, c.slot, trimmed)
	if storeErr != nil {
		c.logger.Error("failed to persist credential", zap.Error(storeErr))
	}

	c.update(func(s *State) {
		s.Credential = trimmed
		s.CredentialDialogVisible = false
		s.ErrorMessage = ""
	})

	c.logger.Info("credential saved", zap.String("key", credentials.MaskKey(trimmed)))

	if storeErr != nil {
		return fmt.Errorf("failed to persist credential: %w", storeErr)
	}
	return nil
}

// SwapLanguages exchanges the source and target languages. A non-empty
// translation moves into the source text so it can be translated back.
func (c *Controller) SwapLanguages() {
	c.update(func(s *State) {
		s.SourceLang, s.TargetLang = s.TargetLang, s.SourceLang
		if s.TranslatedText != "" {
			s.SourceText = s.TranslatedText
			s.TranslatedText = ""
		}
	})
}

// OpenCredentialDialog shows the credential prompt
func (c *Controller) OpenCredentialDialog() {
	c.update(func(s *State) {
		s.CredentialDialogVisible = true
	})
}

// CloseCredentialDialog hides the credential prompt without changing the
// credential
func (c *Controller) CloseCredentialDialog() {
	c.update(func(s *State) {
		s.CredentialDialogVisible = false
	})
}

// SetSourceText replaces the text to translate
func (c *Controller) SetSourceText(text string) {
	c.update(func(s *State) {
		s.SourceText = text
	})
}

// SetSourceLanguage selects the source language by catalog code
func (c *Controller) SetSourceLanguage(code string) error {
	if err := languages.Validate(code); err != nil {
		return err
	}
	c.update(func(s *State) {
		s.SourceLang = code
	})
	return nil
}

// SetTargetLanguage selects the target language by catalog code
func (c *Controller) SetTargetLanguage(code string) error {
	if err := languages.Validate(code); err != nil {
		return err
	}
	c.update(func(s *State) {
		s.TargetLang = code
	})
	return nil
}

// Translate starts translating the source text and returns a Task that
// completes once the outcome is reflected in the state. It returns nil,
// without touching state, when the source text is blank, no credential is
// set, or a translation is already running.
//
// ctx is handed to the translator unchanged; the controller adds no
// timeout of its own.
func (c *Controller) Translate(ctx context.Context) *Task {
	c.mu.Lock()
	if !c.state.CanTranslate() {
		c.mu.Unlock()
		return nil
	}
	c.state.IsLoading = true
	c.state.ErrorMessage = ""
	req := translation.Request{
		SourceLanguage: languages.Name(c.state.SourceLang),
		TargetLanguage: languages.Name(c.state.TargetLang),
		Text:           c.state.SourceText,
		Credential:     c.state.Credential,
	}
	snapshot := c.state
	c.mu.Unlock()

	c.notify(snapshot)

	task := newTask()
	go c.run(ctx, req, task)
	return task
}

func (c *Controller) run(ctx context.Context, req translation.Request, task *Task) {
	var (
		result string
		err    error
	)

	// Runs on every exit path, panics included, so IsLoading is always
	// released
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("translator panicked: %v", r)
		}
		c.finish(req, result, err)
		task.complete(err)
	}()

	result, err = c.translator.Translate(ctx, req)
}

func (c *Controller) finish(req translation.Request, result string, err error) {
	if err != nil {
		c.logger.Error("translation failed",
			zap.String("from", req.SourceLanguage),
			zap.String("to", req.TargetLanguage),
			zap.Error(err))
	} else {
		c.logger.Info("translation finished",
			zap.String("from", req.SourceLanguage),
			zap.String("to", req.TargetLanguage),
			zap.Int("chars", len(result)))
	}

	c.update(func(s *State) {
		if err != nil {
			// A previous translation stays visible behind the error
			s.ErrorMessage = translation.UserMessage(err)
		} else {
			s.TranslatedText = result
		}
		s.IsLoading = false
	})
}
