package httpapi

// Config defines HTTP UI settings.
type Config struct {
	Addr     string
	BaseURL  string
	BasePath string
	// Title is the application title shown after the list name.
	Title string
}
