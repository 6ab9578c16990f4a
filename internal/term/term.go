// Package term runs hexpatch in a terminal: it draws the open document as a
// hex dump with a status line and feeds key and mouse input to the
// application.
package term

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/dshills/hexpatch/internal/app"
	"github.com/dshills/hexpatch/internal/input/key"
	"github.com/dshills/hexpatch/internal/input/mouse"
	"github.com/dshills/hexpatch/internal/notify"
)

// Column layout of a hex dump row: an 8 digit address, two spaces, then
// three cells per byte, one space, then the text column.
const (
	addressWidth = 8
	hexStart     = addressWidth + 2
	cellWidth    = 3
)

// promptKind selects what Enter does with the prompt text.
type promptKind int

const (
	promptNone promptKind = iota
	promptCommand
	promptPatch
)

// UI is the terminal front end. It is driven by a single goroutine.
type UI struct {
	app     *app.Application
	screen  tcell.Screen
	mouse   *mouse.Translator
	reloads <-chan string
	log     *logrus.Entry

	bytesPerRow int
	top         int // first visible row

	prompt     promptKind
	promptText []rune
	showLog    bool
}

// Option configures the UI.
type Option func(*UI)

// WithReloads makes the UI reload the plugin owning each path received
// from ch.
func WithReloads(ch <-chan string) Option {
	return func(u *UI) {
		u.reloads = ch
	}
}

// WithLogger sets the process logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(u *UI) {
		if logger != nil {
			u.log = logger.WithField("component", "term")
		}
	}
}

// WithBytesPerRow sets the hex dump row width. It should match the
// application's BytesPerRow.
func WithBytesPerRow(n int) Option {
	return func(u *UI) {
		if n > 0 {
			u.bytesPerRow = n
		}
	}
}

// New creates a UI over screen. The screen is initialized by Run.
func New(a *app.Application, screen tcell.Screen, opts ...Option) *UI {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	u := &UI{
		app:         a,
		screen:      screen,
		mouse:       mouse.NewTranslator(),
		log:         discard.WithField("component", "term"),
		bytesPerRow: app.DefaultBytesPerRow,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Run initializes the screen and processes events until the user quits or
// ctx is cancelled.
func (u *UI) Run(ctx context.Context) error {
	if err := u.screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer u.screen.Fini()
	u.screen.EnableMouse()

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	u.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if u.handleEvent(ev) {
				return nil
			}
		case path, ok := <-u.reloads:
			if !ok {
				u.reloads = nil
				continue
			}
			u.reload(path)
		}
		u.draw()
	}
}

// handleEvent processes one terminal event and reports whether to quit.
func (u *UI) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		u.screen.Sync()
	case *tcell.EventKey:
		if u.prompt != promptNone {
			u.handlePromptKey(ev)
			return false
		}
		return u.handleKey(key.FromTcell(ev))
	case *tcell.EventMouse:
		u.handleMouse(u.mouse.Translate(ev))
	}
	return false
}

func (u *UI) handleKey(e key.Event) bool {
	action, err := u.app.HandleKey(e)
	if errors.Is(err, app.ErrQuit) {
		return true
	}
	if err != nil {
		u.log.WithError(err).WithField("action", action).Debug("key action failed")
	}

	switch action {
	case "run":
		u.openPrompt(promptCommand)
	case "patch":
		u.openPrompt(promptPatch)
	case "log":
		u.showLog = !u.showLog
	case "close_popup":
		u.showLog = false
	}
	return false
}

func (u *UI) handleMouse(e mouse.Event) {
	if err := u.app.HandleMouse(e); err != nil {
		u.log.WithError(err).Debug("mouse event failed")
		return
	}
	if e.Kind == mouse.KindDown && e.Button == mouse.ButtonLeft {
		if offset, ok := u.offsetAt(e.Column, e.Row); ok {
			u.app.SetOffset(offset)
		}
	}
}

func (u *UI) openPrompt(kind promptKind) {
	u.prompt = kind
	u.promptText = u.promptText[:0]
}

func (u *UI) handlePromptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		u.prompt = promptNone
	case tcell.KeyEnter:
		kind, text := u.prompt, strings.TrimSpace(string(u.promptText))
		u.prompt = promptNone
		u.submit(kind, text)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(u.promptText); n > 0 {
			u.promptText = u.promptText[:n-1]
		}
	case tcell.KeyRune:
		u.promptText = append(u.promptText, ev.Rune())
	}
}

func (u *UI) submit(kind promptKind, text string) {
	if text == "" {
		return
	}
	switch kind {
	case promptCommand:
		// Failures are already in the notification log.
		_ = u.app.RunCommand(text)
	case promptPatch:
		b, err := hex.DecodeString(strings.ReplaceAll(text, " ", ""))
		if err != nil {
			u.app.Notifications().Errorf("Invalid hex %q: %v", text, err)
			return
		}
		if err := u.app.EditBytes(b); err != nil {
			u.app.Notifications().Errorf("Patch failed: %v", err)
		}
	}
}

func (u *UI) reload(path string) {
	name, err := u.app.ReloadPlugin(path)
	entry := u.log.WithFields(logrus.Fields{"plugin": name, "path": path})
	if err != nil {
		entry.WithError(err).Warn("plugin reload failed")
		return
	}
	entry.Info("plugin reloaded")
}

// offsetAt maps a screen cell in the hex or text column to a byte offset.
func (u *UI) offsetAt(col, row int) (int, bool) {
	_, height := u.screen.Size()
	if row < 0 || row >= height-1 {
		return 0, false
	}

	textStart := hexStart + cellWidth*u.bytesPerRow + 1
	var i int
	switch {
	case col >= hexStart && col < hexStart+cellWidth*u.bytesPerRow:
		i = (col - hexStart) / cellWidth
	case col >= textStart && col < textStart+u.bytesPerRow:
		i = col - textStart
	default:
		return 0, false
	}

	offset := (u.top+row)*u.bytesPerRow + i
	if offset >= u.app.Document().Len() {
		return 0, false
	}
	return offset, true
}

// scroll keeps the cursor row on screen.
func (u *UI) scroll(offset, rows int) {
	row := offset / u.bytesPerRow
	if row < u.top {
		u.top = row
	}
	if rows > 0 && row >= u.top+rows {
		u.top = row - rows + 1
	}
}

func (u *UI) style(name string) tcell.Style {
	if st, ok := u.app.Settings().ColorStyle(name); ok {
		return st.Tcell()
	}
	return tcell.StyleDefault
}

func (u *UI) draw() {
	u.screen.Clear()
	width, height := u.screen.Size()
	rows := height - 1

	data := u.app.Data()
	offset := u.app.Offset()
	u.scroll(offset, rows)

	if u.showLog {
		u.drawLog(width, rows)
	} else {
		u.drawDump(data, offset, rows)
	}
	u.drawStatus(width, height-1, len(data), offset)
	u.screen.Show()
}

func (u *UI) drawDump(data []byte, offset, rows int) {
	address, hexStyle, selected, text := u.style("address"), u.style("hex"), u.style("hex_selected"), u.style("text")
	textStart := hexStart + cellWidth*u.bytesPerRow + 1

	for y := 0; y < rows; y++ {
		base := (u.top + y) * u.bytesPerRow
		if base >= len(data) {
			break
		}
		putString(u.screen, 0, y, fmt.Sprintf("%08X", base), address)

		for i := 0; i < u.bytesPerRow && base+i < len(data); i++ {
			b := data[base+i]
			st, tst := hexStyle, text
			if base+i == offset {
				st, tst = selected, selected
			}
			putString(u.screen, hexStart+cellWidth*i, y, fmt.Sprintf("%02X", b), st)
			u.screen.SetContent(textStart+i, y, printable(b), nil, tst)
		}
	}
}

func (u *UI) drawLog(width, rows int) {
	st := u.style("log")
	entries := u.app.Notifications().Entries()
	if len(entries) > rows {
		entries = entries[len(entries)-rows:]
	}
	for y, e := range entries {
		putString(u.screen, 0, y, truncate(fmt.Sprintf("[%s] %s", e.Level, e.Message), width), st)
	}
}

func (u *UI) drawStatus(width, y, size, offset int) {
	st := u.style("status")
	for x := 0; x < width; x++ {
		u.screen.SetContent(x, y, ' ', nil, st)
	}

	var line string
	switch u.prompt {
	case promptCommand:
		line = ":" + string(u.promptText)
	case promptPatch:
		line = "patch> " + string(u.promptText)
	default:
		doc := u.app.Document()
		h := u.app.Header()
		line = fmt.Sprintf("%s  %s/%d  0x%X/0x%X", doc.Name, h.Architecture, h.Bitness, offset, size)
		if last, ok := u.app.Notifications().Last(); ok {
			line += "  " + levelMark(last.Level) + last.Message
		}
	}
	putString(u.screen, 0, y, truncate(line, width), st)
}

func levelMark(l notify.Level) string {
	switch l {
	case notify.LevelError:
		return "E: "
	case notify.LevelWarning:
		return "W: "
	default:
		return ""
	}
}

func putString(s tcell.Screen, x, y int, str string, st tcell.Style) {
	for i, r := range []rune(str) {
		s.SetContent(x+i, y, r, nil, st)
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width])
	}
	return s
}

func printable(b byte) rune {
	if b >= 0x20 && b < 0x7f {
		return rune(b)
	}
	return '.'
}
