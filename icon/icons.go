package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Fail Icon = iota
	Success
	Progress
	Skip
	Notice
	Lock
	Unlock
	Mark
	Clock
)

var icons = map[Icon]*iconDef{
	Fail: {
		emoji:   "🛑",
		nerd:    "",
		plain:   "✗",
		kaomoji: "(×_×)",
		squares: "🟥",
	},
	Success: {
		emoji:   "✅",
		nerd:    "",
		plain:   "✓",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "…",
		kaomoji: "(・_・ヾ",
		squares: "🟦",
	},
	Skip: {
		emoji:   "⏭️",
		nerd:    "",
		plain:   ">>",
		kaomoji: "ε=ε=(ノ≧∇≦)ノ",
		squares: "🟪",
	},
	Notice: {
		emoji:   "🔔",
		nerd:    "",
		plain:   "!",
		kaomoji: "(°ロ°)",
		squares: "🟨",
	},
	Lock: {
		emoji:   "🔒",
		nerd:    "",
		plain:   "[x]",
		kaomoji: "(￣ヘ￣)",
		squares: "⬛",
	},
	Unlock: {
		emoji:   "🔓",
		nerd:    "",
		plain:   "[ ]",
		kaomoji: "(￣▽￣)",
		squares: "⬜",
	},
	Mark: {
		emoji:   "📍",
		nerd:    "",
		plain:   "*",
		kaomoji: "(•̀ᴗ•́)و",
		squares: "🟧",
	},
	Clock: {
		emoji:   "⏱️",
		nerd:    "",
		plain:   "~",
		kaomoji: "(｡•̀ᴗ-)",
		squares: "🟫",
	},
}
