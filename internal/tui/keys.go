package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Filter       key.Binding
	Back         key.Binding
	NextCurrency key.Binding
	PrevCurrency key.Binding
	PrevPage     key.Binding
	NextPage     key.Binding
	Up           key.Binding
	Down         key.Binding
	Open         key.Binding
	Period       key.Binding
	Tracker      key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "поиск")),
		Back:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "назад")),
		NextCurrency: key.NewBinding(key.WithKeys("c"), key.WithHelp("c/C", "валюта")),
		PrevCurrency: key.NewBinding(key.WithKeys("C")),
		PrevPage:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "страницы")),
		NextPage:     key.NewBinding(key.WithKeys("right", "l")),
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "выбор")),
		Down:         key.NewBinding(key.WithKeys("down", "j")),
		Open:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "детали")),
		Period:       key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "период")),
		Tracker:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "к трекеру")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "выход")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.NextCurrency, k.PrevPage, k.Up, k.Open, k.Period, k.Tracker, k.Back, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
