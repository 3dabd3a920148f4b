package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/snonux/gemtrans/internal/credentials"
	"codeberg.org/snonux/gemtrans/internal/languages"
	"codeberg.org/snonux/gemtrans/internal/testutil"
	"codeberg.org/snonux/gemtrans/internal/translation"
)

func newController(t *testing.T, store credentials.Store, tr translation.Translator, opts ...Option) *Controller {
	t.Helper()
	c, err := New(context.Background(), store, tr, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

// configured returns a controller with a saved credential and source text
func configured(t *testing.T, tr translation.Translator) (*Controller, *testutil.MockStore) {
	t.Helper()
	store := testutil.NewMockStore(map[string]string{credentials.DefaultSlot: "saved-key"})
	c := newController(t, store, tr)
	c.SetSourceText("Hello")
	return c, store
}

func waitTask(t *testing.T, task *Task) {
	t.Helper()
	if task == nil {
		t.Fatal("Translate returned nil task, expected a request to start")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := task.Wait(ctx); err != nil {
		t.Fatalf("task did not finish: %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	store := credentials.NewMemoryStore()
	tr := &testutil.MockTranslator{}

	if _, err := New(context.Background(), nil, tr); err == nil {
		t.Error("expected error for nil store")
	}
	if _, err := New(context.Background(), store, nil); err == nil {
		t.Error("expected error for nil translator")
	}
	if _, err := New(context.Background(), store, tr, WithLanguages("en", "xx")); !errors.Is(err, languages.ErrUnknownLanguage) {
		t.Errorf("expected ErrUnknownLanguage, got %v", err)
	}
	if _, err := New(context.Background(), store, tr, WithSlot("")); err == nil {
		t.Error("expected error for empty slot")
	}
}

func TestNew_WithoutSavedCredential(t *testing.T) {
	c := newController(t, credentials.NewMemoryStore(), &testutil.MockTranslator{})
	s := c.State()

	if s.Credential != "" {
		t.Errorf("Credential = %q, want empty", s.Credential)
	}
	if !s.CredentialDialogVisible {
		t.Error("credential dialog should be visible without a saved credential")
	}
	if s.SourceLang != "en" || s.TargetLang != "ja" {
		t.Errorf("default languages = %s -> %s, want en -> ja", s.SourceLang, s.TargetLang)
	}
	if s.IsLoading || s.ErrorMessage != "" {
		t.Errorf("unexpected initial state: %+v", s)
	}
}

func TestNew_WithSavedCredential(t *testing.T) {
	store := testutil.NewMockStore(map[string]string{credentials.DefaultSlot: "saved-key"})
	c := newController(t, store, &testutil.MockTranslator{})
	s := c.State()

	if s.Credential != "saved-key" {
		t.Errorf("Credential = %q, want saved-key", s.Credential)
	}
	if s.CredentialDialogVisible {
		t.Error("credential dialog should be hidden with a saved credential")
	}
}

func TestNew_CustomSlotAndLanguages(t *testing.T) {
	store := testutil.NewMockStore(map[string]string{"work": "work-key"})
	c := newController(t, store, &testutil.MockTranslator{}, WithSlot("work"), WithLanguages("de", "fr"))
	s := c.State()

	if s.Credential != "work-key" {
		t.Errorf("Credential = %q, want work-key", s.Credential)
	}
	if s.SourceLang != "de" || s.TargetLang != "fr" {
		t.Errorf("languages = %s -> %s, want de -> fr", s.SourceLang, s.TargetLang)
	}
}

func TestNew_StoreReadFailure(t *testing.T) {
	store := testutil.NewMockStore(map[string]string{credentials.DefaultSlot: "saved-key"})
	store.FailGet = true

	c := newController(t, store, &testutil.MockTranslator{})
	s := c.State()
	if s.Credential != "" || !s.CredentialDialogVisible {
		t.Errorf("store read failure should behave like no credential, got %+v", s)
	}
}

func TestSubmitCredential(t *testing.T) {
	inputs := []string{"abc", "  padded-key  ", "\tkey\n", "AIzaSy-long-key-value"}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			store := testutil.NewMockStore(nil)
			c := newController(t, store, &testutil.MockTranslator{Err: errors.New("boom")})

			// Put an error on screen first so we can see it cleared
			c.SubmitCredential(context.Background(), "temp")
			c.SetSourceText("Hello")
			waitTask(t, c.Translate(context.Background()))
			c.OpenCredentialDialog()
			if c.State().ErrorMessage == "" {
				t.Fatal("setup: expected an error message")
			}

			if err := c.SubmitCredential(context.Background(), in); err != nil {
				t.Fatalf("SubmitCredential failed: %v", err)
			}

			want := strings.TrimSpace(in)
			s := c.State()
			if s.Credential != want {
				t.Errorf("Credential = %q, want %q", s.Credential, want)
			}
			if s.CredentialDialogVisible {
				t.Error("dialog should be hidden after submit")
			}
			if s.ErrorMessage != "" {
				t.Errorf("ErrorMessage = %q, want cleared", s.ErrorMessage)
			}
			if stored, _ := store.Get(context.Background(), credentials.DefaultSlot); stored != want {
				t.Errorf("stored credential = %q, want %q", stored, want)
			}
		})
	}
}

func TestSubmitCredential_BlankIsNoOp(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		store := testutil.NewMockStore(nil)
		c := newController(t, store, &testutil.MockTranslator{})

		notified := 0
		c.Subscribe(func(State) { notified++ })
		before := c.State()

		if err := c.SubmitCredential(context.Background(), in); err != nil {
			t.Errorf("SubmitCredential(%q) error = %v", in, err)
		}

		if c.State() != before {
			t.Errorf("SubmitCredential(%q) changed state: %+v -> %+v", in, before, c.State())
		}
		if store.Writes() != 0 {
			t.Errorf("SubmitCredential(%q) wrote to the store", in)
		}
		if notified != 0 {
			t.Errorf("SubmitCredential(%q) notified listeners", in)
		}
	}
}

func TestSubmitCredential_StoreFailure(t *testing.T) {
	store := testutil.NewMockStore(nil)
	store.FailSet = true
	c := newController(t, store, &testutil.MockTranslator{})

	err := c.SubmitCredential(context.Background(), "new-key")
	if !errors.Is(err, testutil.ErrMockStore) {
		t.Errorf("error = %v, want ErrMockStore", err)
	}

	// The session keeps working with the new key
	s := c.State()
	if s.Credential != "new-key" || s.CredentialDialogVisible {
		t.Errorf("state not updated after store failure: %+v", s)
	}
}

func TestSwapLanguages_IsOwnInverseWithoutTranslation(t *testing.T) {
	c := newController(t, credentials.NewMemoryStore(), &testutil.MockTranslator{}, WithLanguages("de", "ko"))
	c.SetSourceText("Guten Tag")

	c.SwapLanguages()
	s := c.State()
	if s.SourceLang != "ko" || s.TargetLang != "de" {
		t.Errorf("after one swap: %s -> %s, want ko -> de", s.SourceLang, s.TargetLang)
	}
	if s.SourceText != "Guten Tag" {
		t.Errorf("source text changed without a translation: %q", s.SourceText)
	}

	c.SwapLanguages()
	s = c.State()
	if s.SourceLang != "de" || s.TargetLang != "ko" {
		t.Errorf("after two swaps: %s -> %s, want de -> ko", s.SourceLang, s.TargetLang)
	}
}

func TestSwapLanguages_SameLanguage(t *testing.T) {
	c := newController(t, credentials.NewMemoryStore(), &testutil.MockTranslator{}, WithLanguages("fr", "fr"))
	c.SwapLanguages()
	s := c.State()
	if s.SourceLang != "fr" || s.TargetLang != "fr" {
		t.Errorf("swap of equal languages: %s -> %s", s.SourceLang, s.TargetLang)
	}
}

func TestSwapLanguages_MovesTranslation(t *testing.T) {
	c, _ := configured(t, &testutil.MockTranslator{Response: "こんにちは"})
	waitTask(t, c.Translate(context.Background()))

	c.SwapLanguages()
	s := c.State()

	if s.SourceText != "こんにちは" {
		t.Errorf("SourceText = %q, want previous translation", s.SourceText)
	}
	if s.TranslatedText != "" {
		t.Errorf("TranslatedText = %q, want empty", s.TranslatedText)
	}
	if s.SourceLang != "ja" || s.TargetLang != "en" {
		t.Errorf("languages = %s -> %s, want ja -> en", s.SourceLang, s.TargetLang)
	}
}

func TestTranslate_PreconditionsAreSilentNoOps(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		text       string
	}{
		{"empty text", "key", ""},
		{"blank text", "key", "   \n\t"},
		{"no credential", "", "Hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockStore(nil)
			if tt.credential != "" {
				store.Set(context.Background(), credentials.DefaultSlot, tt.credential)
			}
			tr := &testutil.MockTranslator{}
			c := newController(t, store, tr)
			c.SetSourceText(tt.text)

			notified := 0
			c.Subscribe(func(State) { notified++ })
			before := c.State()

			if task := c.Translate(context.Background()); task != nil {
				t.Error("Translate returned a task, want nil")
			}
			if c.State() != before {
				t.Errorf("state changed: %+v -> %+v", before, c.State())
			}
			if tr.CallCount() != 0 {
				t.Errorf("translator called %d times, want 0", tr.CallCount())
			}
			if notified != 0 {
				t.Error("listeners notified for a no-op")
			}
			if c.CanTranslate() {
				t.Error("CanTranslate() = true, want false")
			}
		})
	}
}

func TestTranslate_WhileLoadingIsNoOp(t *testing.T) {
	tr := &testutil.MockTranslator{Block: make(chan struct{}), Response: "x"}
	c, _ := configured(t, tr)

	task := c.Translate(context.Background())
	if task == nil {
		t.Fatal("first Translate returned nil")
	}
	if c.CanTranslate() {
		t.Error("CanTranslate() = true while loading")
	}

	before := c.State()
	if second := c.Translate(context.Background()); second != nil {
		t.Error("second Translate while loading returned a task")
	}
	if c.State() != before {
		t.Errorf("state changed by rejected Translate: %+v -> %+v", before, c.State())
	}

	close(tr.Block)
	waitTask(t, task)

	if tr.CallCount() != 1 {
		t.Errorf("translator called %d times, want 1", tr.CallCount())
	}
}

func TestTranslate_Success(t *testing.T) {
	tr := &testutil.MockTranslator{Response: "こんにちは"}
	c, _ := configured(t, tr)

	task := c.Translate(context.Background())
	waitTask(t, task)

	s := c.State()
	if s.TranslatedText != "こんにちは" {
		t.Errorf("TranslatedText = %q, want こんにちは", s.TranslatedText)
	}
	if s.ErrorMessage != "" {
		t.Errorf("ErrorMessage = %q, want empty", s.ErrorMessage)
	}
	if s.IsLoading {
		t.Error("IsLoading still true after completion")
	}
	if task.Err() != nil {
		t.Errorf("task.Err() = %v", task.Err())
	}

	reqs := tr.Requests()
	if len(reqs) != 1 {
		t.Fatalf("translator called %d times, want 1", len(reqs))
	}
	want := translation.Request{SourceLanguage: "English", TargetLanguage: "Japanese", Text: "Hello", Credential: "saved-key"}
	if reqs[0] != want {
		t.Errorf("request = %+v, want %+v", reqs[0], want)
	}
}

func TestTranslate_SendsLiteralText(t *testing.T) {
	tr := &testutil.MockTranslator{}
	c, _ := configured(t, tr)
	c.SetSourceText("  spaced text \n")

	waitTask(t, c.Translate(context.Background()))

	if got := tr.Requests()[0].Text; got != "  spaced text \n" {
		t.Errorf("request text = %q, want untrimmed source text", got)
	}
}

func TestTranslate_Unauthorized(t *testing.T) {
	tr := &testutil.MockTranslator{Err: &translation.APIError{StatusCode: 401}}
	c, _ := configured(t, tr)

	task := c.Translate(context.Background())
	waitTask(t, task)

	s := c.State()
	if s.ErrorMessage == "" {
		t.Error("ErrorMessage is empty after a 401")
	}
	if s.ErrorMessage != translation.StatusFailureMessage {
		t.Errorf("ErrorMessage = %q, want %q", s.ErrorMessage, translation.StatusFailureMessage)
	}
	if s.IsLoading {
		t.Error("IsLoading still true after failure")
	}
	if s.TranslatedText != "" {
		t.Errorf("TranslatedText = %q, want unchanged (empty)", s.TranslatedText)
	}

	var apiErr *translation.APIError
	if !errors.As(task.Err(), &apiErr) {
		t.Errorf("task.Err() = %v, want *APIError", task.Err())
	}
}

func TestTranslate_FailurePreservesPreviousTranslation(t *testing.T) {
	tr := &testutil.MockTranslator{Response: "こんにちは"}
	c, _ := configured(t, tr)
	waitTask(t, c.Translate(context.Background()))

	tr.Err = &translation.APIError{StatusCode: 500, Message: "Internal error encountered."}
	waitTask(t, c.Translate(context.Background()))

	s := c.State()
	if s.TranslatedText != "こんにちは" {
		t.Errorf("TranslatedText = %q, want previous translation kept", s.TranslatedText)
	}
	if s.ErrorMessage != "Internal error encountered." {
		t.Errorf("ErrorMessage = %q, want service message", s.ErrorMessage)
	}
}

func TestTranslate_NewAttemptClearsError(t *testing.T) {
	tr := &testutil.MockTranslator{Err: errors.New("network down"), Block: make(chan struct{})}
	c, _ := configured(t, tr)

	close(tr.Block)
	waitTask(t, c.Translate(context.Background()))
	if c.State().ErrorMessage == "" {
		t.Fatal("expected error after first attempt")
	}

	tr.Err = nil
	tr.Block = make(chan struct{})
	task := c.Translate(context.Background())
	if msg := c.State().ErrorMessage; msg != "" {
		t.Errorf("ErrorMessage = %q at start of new attempt, want cleared", msg)
	}
	close(tr.Block)
	waitTask(t, task)
}

func TestTranslate_PanicReleasesLoading(t *testing.T) {
	tr := &testutil.MockTranslator{PanicWith: "kaboom"}
	c, _ := configured(t, tr)

	task := c.Translate(context.Background())
	waitTask(t, task)

	s := c.State()
	if s.IsLoading {
		t.Error("IsLoading still true after translator panic")
	}
	if s.ErrorMessage == "" {
		t.Error("panic not surfaced as an error message")
	}
	if task.Err() == nil {
		t.Error("task.Err() = nil after panic")
	}
}

func TestTranslate_LoadingFlagLifecycle(t *testing.T) {
	started := make(chan translation.Request, 1)
	tr := &testutil.MockTranslator{Block: make(chan struct{}), Started: started, Response: "ok"}
	c, _ := configured(t, tr)

	if c.State().IsLoading {
		t.Fatal("IsLoading true before Translate")
	}

	task := c.Translate(context.Background())
	if !c.State().IsLoading {
		t.Error("IsLoading false right after Translate started")
	}

	<-started
	if !c.State().IsLoading {
		t.Error("IsLoading false while the request is in flight")
	}
	select {
	case <-task.Done():
		t.Fatal("task finished before the translator returned")
	default:
	}

	close(tr.Block)
	waitTask(t, task)

	if c.State().IsLoading {
		t.Error("IsLoading true after the outcome arrived")
	}
}

func TestTranslate_LanguageNamesFromCatalog(t *testing.T) {
	tr := &testutil.MockTranslator{}
	c, _ := configured(t, tr)
	c.SetSourceLanguage("zh-TW")
	c.SetTargetLanguage("id")

	waitTask(t, c.Translate(context.Background()))

	req := tr.Requests()[0]
	if req.SourceLanguage != "Chinese (Traditional)" || req.TargetLanguage != "Bahasa Indonesia" {
		t.Errorf("request languages = %q -> %q", req.SourceLanguage, req.TargetLanguage)
	}
}

func TestTranslate_ContextCancelled(t *testing.T) {
	tr := &testutil.MockTranslator{Block: make(chan struct{})}
	c, _ := configured(t, tr)

	ctx, cancel := context.WithCancel(context.Background())
	task := c.Translate(ctx)
	cancel()
	waitTask(t, task)

	s := c.State()
	if s.IsLoading {
		t.Error("IsLoading still true after cancellation")
	}
	if s.ErrorMessage != "Translation was cancelled." {
		t.Errorf("ErrorMessage = %q", s.ErrorMessage)
	}
}

func TestSetLanguages(t *testing.T) {
	c := newController(t, credentials.NewMemoryStore(), &testutil.MockTranslator{})

	if err := c.SetSourceLanguage("uk"); err != nil {
		t.Errorf("SetSourceLanguage(uk) = %v", err)
	}
	if err := c.SetTargetLanguage("vi"); err != nil {
		t.Errorf("SetTargetLanguage(vi) = %v", err)
	}

	before := c.State()
	if err := c.SetSourceLanguage("tlh"); !errors.Is(err, languages.ErrUnknownLanguage) {
		t.Errorf("SetSourceLanguage(tlh) = %v, want ErrUnknownLanguage", err)
	}
	if err := c.SetTargetLanguage(""); !errors.Is(err, languages.ErrUnknownLanguage) {
		t.Errorf("SetTargetLanguage(\"\") = %v, want ErrUnknownLanguage", err)
	}
	if c.State() != before {
		t.Error("invalid language changed state")
	}
	if before.SourceLang != "uk" || before.TargetLang != "vi" {
		t.Errorf("languages = %s -> %s", before.SourceLang, before.TargetLang)
	}
}

func TestCredentialDialogToggle(t *testing.T) {
	store := testutil.NewMockStore(map[string]string{credentials.DefaultSlot: "k"})
	c := newController(t, store, &testutil.MockTranslator{})

	c.OpenCredentialDialog()
	if !c.State().CredentialDialogVisible {
		t.Error("dialog not visible after OpenCredentialDialog")
	}

	c.CloseCredentialDialog()
	s := c.State()
	if s.CredentialDialogVisible {
		t.Error("dialog visible after CloseCredentialDialog")
	}
	if s.Credential != "k" {
		t.Error("closing the dialog changed the credential")
	}
}

func TestSubscribe(t *testing.T) {
	c, _ := configured(t, &testutil.MockTranslator{Response: "Hallo"})

	var (
		mu     sync.Mutex
		states []State
	)
	unsubscribe := c.Subscribe(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	task := c.Translate(context.Background())
	waitTask(t, task)

	mu.Lock()
	got := append([]State(nil), states...)
	mu.Unlock()

	if len(got) != 2 {
		t.Fatalf("got %d notifications, want 2 (start and finish)", len(got))
	}
	if !got[0].IsLoading {
		t.Error("first notification should report loading")
	}
	if got[1].IsLoading || got[1].TranslatedText != "Hallo" {
		t.Errorf("second notification = %+v", got[1])
	}

	unsubscribe()
	unsubscribe()
	c.SwapLanguages()

	mu.Lock()
	defer mu.Unlock()
	if len(states) != 2 {
		t.Errorf("listener called after unsubscribe")
	}
}

func TestStateIsSnapshot(t *testing.T) {
	c, _ := configured(t, &testutil.MockTranslator{})
	s := c.State()
	s.SourceText = "mutated"

	if c.State().SourceText != "Hello" {
		t.Error("mutating a snapshot changed controller state")
	}
}

func TestConcurrentTranslateStartsOnce(t *testing.T) {
	tr := &testutil.MockTranslator{Block: make(chan struct{})}
	c, _ := configured(t, tr)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		tasks []*Task
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if task := c.Translate(context.Background()); task != nil {
				mu.Lock()
				tasks = append(tasks, task)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(tasks) != 1 {
		t.Fatalf("%d translations started, want 1", len(tasks))
	}
	close(tr.Block)
	waitTask(t, tasks[0])

	if tr.CallCount() != 1 {
		t.Errorf("translator called %d times, want 1", tr.CallCount())
	}
}
