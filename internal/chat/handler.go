// Package chat implements the GM chat command surface: a per-session handler
// with localized strings and a command table over the world.
package chat

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Handler is one command session. It writes system messages to its sink and
// remembers whether an error message was already sent.
type Handler struct {
	mu        sync.Mutex
	out       io.Writer
	locale    Locale
	player    uint64 // GUID of the session's player, 0 = console
	sentError bool
}

// NewHandler creates a session writing to out.
func NewHandler(out io.Writer, locale Locale, player uint64) *Handler {
	return &Handler{out: out, locale: locale, player: player}
}

// PlayerGUID returns the session's player, 0 for the console.
func (h *Handler) PlayerGUID() uint64 { return h.player }

func (h *Handler) Locale() Locale { return h.locale }

// SendSysMessage writes one line to the session.
func (h *Handler) SendSysMessage(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := fmt.Fprintln(h.out, msg); err != nil {
		slog.Warn("chat message dropped", "player", h.player, "error", err)
	}
}

// PSendSysMessage formats the localized string id with args and sends it.
func (h *Handler) PSendSysMessage(id StringID, args ...any) {
	h.SendSysMessage(fmt.Sprintf(h.String(id), args...))
}

// SetSentErrorMessage marks that the current command already reported its error.
func (h *Handler) SetSentErrorMessage(sent bool) {
	h.mu.Lock()
	h.sentError = sent
	h.mu.Unlock()
}

func (h *Handler) HasSentErrorMessage() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sentError
}

// String returns the localized string id.
func (h *Handler) String(id StringID) string {
	return lookup(h.locale, id)
}

// MessageSink receives command output.
type MessageSink interface {
	SendSysMessage(msg string)
	SetSentErrorMessage(sent bool)
}

// StringSource resolves localized strings.
type StringSource interface {
	String(id StringID) string
}

// SendErrorMessage sends str and marks the error as reported.
func SendErrorMessage(h MessageSink, str string) {
	h.SendSysMessage(str)
	h.SetSentErrorMessage(true)
}

// GetString returns the localized string which of h.
func GetString(h StringSource, which StringID) string {
	return h.String(which)
}
