package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# ChatLens configuration
version: "1.0"

service:
  # Base URL of the chat analysis service
  url: "http://localhost:8000"
  # Timeout for "chatlens ping". Uploads are awaited without a timeout.
  health_timeout: 5s
  # dotenv file with CHATLENS_* variables; the real environment wins
  env_file: ".env"

upload:
  # Default directory for "chatlens watch"
  drop_dir: ""
  # Quiet period after the last write before a dropped file is analyzed
  settle_delay: 300ms

output:
  # text | json | markdown | csv
  default_format: "text"
  # auto | always | never
  color_mode: "auto"
  verbose: false
  # Log destination while the interactive screen is open (empty discards)
  log_file: ""

ui:
  # default | high-contrast | minimal
  theme: "default"
  emoji: true
  # Width of the daily activity bars
  chart_width: 40
`
}

// MinimalSampleConfig returns a configuration with only the essential settings
func MinimalSampleConfig() string {
	return `version: "1.0"
service:
  url: "http://localhost:8000"
output:
  default_format: "text"
`
}
