package handlers

// User-facing texts. Replies are sent with HTML parse mode.
const (
	msgSubscribeRequired = "🔒 <b>Доступ закрыт!</b>\n" +
		"📣 Для использования бота подпишитесь на наш канал.\n" +
		"👇 Нажмите «Вступить», затем вернитесь и нажмите «Проверить»."

	msgSubscriptionConfirmed = "✅ Подписка подтверждена!"
	msgStillNotSubscribed    = "❌ Вы всё ещё не подписаны."

	msgGreeting = "👋 Привет, <b>%s</b>!\n" +
		"✨ Рад видеть тебя в MGSGBT 1.0 A. Нажми кнопку ниже, чтобы открыть меню."

	msgMainMenu = "📌 <b>Главное меню</b>\n" +
		"🤖 <b>MGSGBT 1.0 A</b> — набор чат‑ботов в одном интерфейсе.\n\n" +
		"🧩 <b>Доступные модели:</b>\n" +
		" • <b>GPT‑4o mini</b>\n\n" +
		"⚙️ Сейчас доступна только одна модель. (уже выбрана по умолчанию)"

	msgThinking = "🤖 <i>Думаю…</i>"

	msgNoUsers    = "🤷 Пока нет зарегистрированных пользователей."
	msgUsersList  = "👥 <b>Пользователи:</b>\n%s\n\nВсего: <b>%d</b>"
	msgEmptyReply = "⚠️ Модель вернула пустой ответ, попробуйте переформулировать."
)
