package bot

// Commands understood by the bot.
const (
	CommandStart = "/start"
	CommandUsers = "/users"
)

// ButtonMainMenu is the persistent reply-keyboard button. It arrives as a
// plain text message, so the router matches it by exact text.
const ButtonMainMenu = "🏠 Главное меню"

// Callback identifiers carried in inline-button data.
const (
	CallbackCheckSub = "check_sub"
	CallbackNoop     = "noop"
)
