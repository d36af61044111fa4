package bot

import (
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/mgsg-dev/mgsg-bot/internal/bot/handlers"
)

// Router dispatches updates to handlers. Commands and the menu button match
// by exact text, callbacks by the identifier before the first "|", and
// every other text message goes to the default handler.
type Router struct {
	text        map[string]handlers.Handler
	callbacks   map[string]handlers.CallbackHandler
	defaultText handlers.Handler
	middlewares []handlers.Middleware
	log         *slog.Logger
}

func NewRouter(log *slog.Logger) *Router {
	return &Router{
		text:      make(map[string]handlers.Handler),
		callbacks: make(map[string]handlers.CallbackHandler),
		log:       log.With(slog.String("component", "router")),
	}
}

// Use appends a middleware. Middlewares wrap handlers in registration
// order, the first one registered being outermost.
func (r *Router) Use(mw handlers.Middleware) {
	r.middlewares = append(r.middlewares, mw)
}

// HandleText registers a handler for an exact message text.
func (r *Router) HandleText(text string, h handlers.Handler) {
	r.text[text] = h
}

// HandleCallback registers a handler for a callback identifier.
func (r *Router) HandleCallback(name string, h handlers.CallbackHandler) {
	r.callbacks[name] = h
}

// HandleDefault registers the handler for unmatched text messages.
func (r *Router) HandleDefault(h handlers.Handler) {
	r.defaultText = h
}

// Route is the single telebot entry point for text and callback updates.
func (r *Router) Route(c tele.Context) error {
	if cb := c.Callback(); cb != nil {
		return r.routeCallback(c, cb)
	}
	return r.routeText(c)
}

func (r *Router) routeText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())

	// commands may carry a bot mention or payload, e.g. "/start@bot ref"
	if strings.HasPrefix(text, "/") {
		cmd := strings.Fields(text)[0]
		cmd, _, _ = strings.Cut(cmd, "@")
		if h, ok := r.text[cmd]; ok {
			return r.wrap(h)(c)
		}
	}

	if h, ok := r.text[text]; ok {
		return r.wrap(h)(c)
	}
	if r.defaultText == nil {
		r.log.Debug("unrouted message", slog.String("text", c.Text()))
		return nil
	}
	return r.wrap(r.defaultText)(c)
}

func (r *Router) routeCallback(c tele.Context, cb *tele.Callback) error {
	name, payload := splitCallbackData(cb.Data)

	h, ok := r.callbacks[name]
	if !ok {
		r.log.Warn("unknown callback", slog.String("name", name))
		return c.Respond(&tele.CallbackResponse{})
	}
	return r.wrap(func(c tele.Context) error {
		return h(c, payload)
	})(c)
}

func (r *Router) wrap(h handlers.Handler) handlers.Handler {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}
	return h
}

// splitCallbackData parses raw callback data into identifier and payload.
// telebot prefixes unique-tagged callbacks with "\f"; plain data buttons
// carry the identifier as-is.
func splitCallbackData(data string) (string, string) {
	data = strings.TrimPrefix(data, "\f")
	if name, payload, ok := strings.Cut(data, "|"); ok {
		return name, payload
	}
	return data, ""
}
