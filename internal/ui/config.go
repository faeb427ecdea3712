package ui

// Config carries window presentation settings for the ebiten host.
type Config struct {
	Title string // window title
	Scale int    // integer upscaling factor
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbz80"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
}
