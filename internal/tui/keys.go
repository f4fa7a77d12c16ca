package tui

// Key bindings as reported by tea.KeyMsg.String().
const (
	keyQuit        = "ctrl+c"
	keyQuitAlt     = "esc"
	keyNextField   = "tab"
	keyPrevField   = "shift+tab"
	keyDown        = "down"
	keyUp          = "up"
	keyEnter       = "enter"
	keyRandomise   = "ctrl+g"
	keyAddItem     = "ctrl+a"
	keyRemoveItem  = "ctrl+k"
	keyAddList     = "ctrl+n"
	keyRemoveList  = "ctrl+x"
	keyForceRemove = "alt+x"
	keyNextList    = "ctrl+right"
	keyPrevList    = "ctrl+left"
	keyNextListAlt = "pgdown"
	keyPrevListAlt = "pgup"
	keyShowAll     = "ctrl+t"
	keyCopy        = "ctrl+y"
	keySave        = "ctrl+s"
)

var helpText = "tab/↑↓ move · enter save · ^g randomise · ^a add item · ^k remove item · " +
	"^n new list · ^x remove list (alt+x: no prompt) · ^←/^→ switch list · ^t all results · ^y copy · esc quit"
