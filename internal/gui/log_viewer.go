package gui

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"codeberg.org/snonux/gemtrans/internal/logging"
)

// LogViewer is a widget that displays the lines of a logging.Sink, newest
// first
type LogViewer struct {
	widget.BaseWidget

	container  *fyne.Container
	logEntry   *widget.Entry
	scrollView *container.Scroll
	sink       *logging.Sink

	mu          sync.Mutex
	messages    []string
	maxMessages int
}

// NewLogViewer creates a log viewer showing what sink already holds and
// every line written to it afterwards
func NewLogViewer(sink *logging.Sink) *LogViewer {
	v := &LogViewer{
		maxMessages: 1000, // Keep last 1000 messages
		sink:        sink,
	}

	// Create log entry (read-only multiline)
	v.logEntry = widget.NewMultiLineEntry()
	v.logEntry.Disable() // Make it read-only
	v.logEntry.Wrapping = fyne.TextWrapWord

	v.scrollView = container.NewScroll(v.logEntry)
	v.scrollView.SetMinSize(fyne.NewSize(0, 140))
	v.scrollView.Direction = container.ScrollBoth

	v.container = container.NewBorder(
		widget.NewLabel("Log messages (newest first):"),
		nil,
		nil,
		nil,
		v.scrollView,
	)

	v.ExtendBaseWidget(v)

	if sink != nil {
		existing := sink.Attach(v.AddMessage)
		v.mu.Lock()
		for _, line := range existing {
			v.messages = append([]string{line}, v.messages...)
		}
		v.trim()
		text := strings.Join(v.messages, "\n")
		v.mu.Unlock()
		v.logEntry.SetText(text)
	}
	return v
}

// CreateRenderer implements fyne.Widget
func (v *LogViewer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.container)
}

// Detach stops receiving lines from the sink
func (v *LogViewer) Detach() {
	if v.sink != nil {
		v.sink.OnLine(nil)
	}
}

// AddMessage adds a message to the log. It may be called from any
// goroutine.
func (v *LogViewer) AddMessage(message string) {
	v.mu.Lock()
	v.messages = append([]string{message}, v.messages...)
	v.trim()
	text := strings.Join(v.messages, "\n")
	v.mu.Unlock()

	// Update UI on main thread
	fyne.Do(func() {
		v.logEntry.SetText(text)

		// Keep scroll at top to show newest messages
		v.scrollView.Offset = fyne.NewPos(0, 0)
		v.scrollView.Refresh()
	})
}

// Messages returns the displayed messages, newest first
func (v *LogViewer) Messages() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.messages...)
}

// Clear clears all log messages
func (v *LogViewer) Clear() {
	v.mu.Lock()
	v.messages = v.messages[:0]
	v.mu.Unlock()

	if v.sink != nil {
		v.sink.Clear()
	}

	fyne.Do(func() {
		v.logEntry.SetText("")
		v.scrollView.Offset = fyne.NewPos(0, 0)
		v.scrollView.Refresh()
	})
}

func (v *LogViewer) trim() {
	if len(v.messages) > v.maxMessages {
		v.messages = v.messages[:v.maxMessages]
	}
}
