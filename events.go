package gotlres

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// EventHandler receives every classified failure. Handlers must be safe for
// concurrent use.
type EventHandler func(ev *TranslationError)

// emit calls h if it is set.
func (h EventHandler) emit(ev *TranslationError) {
	if h != nil {
		h(ev)
	}
}

// ChainHandlers fans an event out to every non-nil handler in order.
func ChainHandlers(handlers ...EventHandler) EventHandler {
	return func(ev *TranslationError) {
		for _, h := range handlers {
			h.emit(ev)
		}
	}
}

// LogHandler writes events to logger at a level derived from their kind.
func LogHandler(logger zerolog.Logger) EventHandler {
	return func(ev *TranslationError) {
		var e *zerolog.Event
		switch ev.Kind {
		case KindModuleLoadFailed:
			e = logger.Error()
		case KindFallbackUsed:
			e = logger.Info()
		default:
			e = logger.Warn()
		}

		e = e.Str("kind", string(ev.Kind)).Str("locale", ev.Locale)
		if ev.Module != "" {
			e = e.Str("module", ev.Module)
		}
		if ev.Key != "" {
			e = e.Str("key", ev.Key)
		}
		if ev.Cause != nil {
			e = e.Err(ev.Cause)
		}
		e.Msg(ev.Message)
	}
}

// OnceHandler forwards only the first event per (kind, locale, module, key).
// Missing keys on a hot page would otherwise flood the log.
func OnceHandler(next EventHandler) EventHandler {
	var seen sync.Map
	return func(ev *TranslationError) {
		id := string(ev.Kind) + "\x00" + ev.Locale + "\x00" + ev.Module + "\x00" + ev.Key
		if _, loaded := seen.LoadOrStore(id, struct{}{}); !loaded {
			next.emit(ev)
		}
	}
}

// EventCounter counts events per kind.
type EventCounter struct {
	localeNotSupported atomic.Int64
	messageNotFound    atomic.Int64
	moduleLoadFailed   atomic.Int64
	translationInvalid atomic.Int64
	fallbackUsed       atomic.Int64
}

// Handle records ev. Pass c.Handle wherever an EventHandler is accepted.
func (c *EventCounter) Handle(ev *TranslationError) {
	if n := c.counter(ev.Kind); n != nil {
		n.Add(1)
	}
}

// Count returns the number of events seen for kind.
func (c *EventCounter) Count(kind ErrorKind) int64 {
	if n := c.counter(kind); n != nil {
		return n.Load()
	}
	return 0
}

// Snapshot returns all non-zero counts.
func (c *EventCounter) Snapshot() map[ErrorKind]int64 {
	out := make(map[ErrorKind]int64)
	for _, k := range []ErrorKind{
		KindLocaleNotSupported,
		KindMessageNotFound,
		KindModuleLoadFailed,
		KindTranslationInvalid,
		KindFallbackUsed,
	} {
		if n := c.Count(k); n > 0 {
			out[k] = n
		}
	}
	return out
}

func (c *EventCounter) counter(kind ErrorKind) *atomic.Int64 {
	switch kind {
	case KindLocaleNotSupported:
		return &c.localeNotSupported
	case KindMessageNotFound:
		return &c.messageNotFound
	case KindModuleLoadFailed:
		return &c.moduleLoadFailed
	case KindTranslationInvalid:
		return &c.translationInvalid
	case KindFallbackUsed:
		return &c.fallbackUsed
	}
	return nil
}
