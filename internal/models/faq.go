package models

// FaqLink is a labelled URL attached to a canned answer.
type FaqLink struct {
	Text string `yaml:"text"`
	URL  string `yaml:"url"`
}

// FaqEntry pairs an intent with its detection patterns and canned answer.
// Entries are pure configuration: loaded once at startup, read-only afterwards.
type FaqEntry struct {
	Intent   string    `yaml:"intent"`
	Patterns []string  `yaml:"patterns"`
	Answer   string    `yaml:"answer"`
	Links    []FaqLink `yaml:"links"`
}
