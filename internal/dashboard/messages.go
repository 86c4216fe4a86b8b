package dashboard

// User visible strings. The interface speaks Russian only.
const (
	msgLoadFailed    = "Не удалось загрузить данные. Пожалуйста, попробуйте обновить страницу позже."
	msgNothingFound  = "Ничего не найдено."
	msgPrev          = "Назад"
	msgNext          = "Вперед"
	msgPageOf        = "Стр. %d из %d"
	msgChartTitle    = "График: %s"
	msgChartFailed   = "Ошибка загрузки графика"
	msgChartHelper   = "Выберите монету в таблице, чтобы увидеть график цены."
	msgDetailsFailed = "Не удалось загрузить детали."
	msgLoading       = "Загрузка…"
	msgRank          = "Ранг #%d"

	colRank      = "#"
	colCoin      = "Монета"
	colPrice     = "Цена"
	colChange    = "24ч %"
	colMarketCap = "Рыночная кап."

	metricMarketCap   = "Рыночная кап."
	metricVolume      = "Объем (24ч)"
	metricHigh        = "Макс. (24ч)"
	metricLow         = "Мин. (24ч)"
	metricCirculating = "В обращении"
	metricTotalSupply = "Всего эмиссия"

	infinity = "∞"

	// preferredLocale is the description locale matching the messages above.
	preferredLocale = "ru"
	fallbackLocale  = "en"
)
