package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr     string
	DefaultModel   string
	ModelAliases   string // comma-separated alias=model pairs
	LogFile        string
	StdinShutdown  bool
	RequestTimeout time.Duration
	// Upstream genai client
	GeminiAPIKey string
	VertexAI     bool
	Project      string
	Location     string
	// A2A
	A2AEnabled bool
	A2APort    int
	AgentName  string
	AgentDesc  string
}

func Load() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.ListenAddr, "listen-addr", getEnv("LISTEN_ADDR", ":8080"), "Proxy listen address")
	flag.StringVar(&cfg.DefaultModel, "default-model", getEnv("DEFAULT_MODEL", "gemini-2.0-flash"), "Upstream model used when no alias matches")
	flag.StringVar(&cfg.ModelAliases, "model-aliases", getEnv("MODEL_ALIASES", ""), "Comma-separated alias=model pairs (e.g. gpt-4o=gemini-2.0-flash)")
	flag.StringVar(&cfg.LogFile, "log-file", getEnv("LOG_FILE", ""), "Append-only detailed log file (empty disables the file sink)")
	flag.BoolVar(&cfg.StdinShutdown, "stdin-shutdown", getEnvBool("STDIN_SHUTDOWN", false), "Treat a 'q' byte on stdin as a shutdown request")

	timeoutStr := getEnv("REQUEST_TIMEOUT", "120s")
	defaultTimeout, _ := time.ParseDuration(timeoutStr)
	if defaultTimeout == 0 {
		defaultTimeout = 120 * time.Second
	}
	flag.DurationVar(&cfg.RequestTimeout, "request-timeout", defaultTimeout, "Upstream generation round-trip timeout")

	flag.StringVar(&cfg.GeminiAPIKey, "gemini-api-key", getEnv("GEMINI_API_KEY", ""), "Gemini API key (empty defers to the SDK's own credential discovery)")
	flag.BoolVar(&cfg.VertexAI, "vertexai", getEnvBool("GOOGLE_GENAI_USE_VERTEXAI", false), "Use the Vertex AI backend instead of the Gemini API")
	flag.StringVar(&cfg.Project, "project", getEnv("GOOGLE_CLOUD_PROJECT", ""), "Google Cloud project (Vertex AI only)")
	flag.StringVar(&cfg.Location, "location", getEnv("GOOGLE_CLOUD_LOCATION", ""), "Google Cloud location (Vertex AI only)")

	flag.BoolVar(&cfg.A2AEnabled, "a2a", getEnvBool("A2A_ENABLED", false), "Enable A2A server alongside the proxy")
	flag.IntVar(&cfg.A2APort, "a2a-port", getEnvInt("A2A_PORT", 8000), "A2A server listen port")
	flag.StringVar(&cfg.AgentName, "agent-name", getEnv("AGENT_NAME", "gemini-bridge"), "A2A AgentCard name")
	flag.StringVar(&cfg.AgentDesc, "agent-desc", getEnv("AGENT_DESC", "Gemini-backed agent exposed via A2A protocol"), "A2A AgentCard description")

	flag.Parse()
	return cfg
}

// Aliases parses the ModelAliases field into a lookup table. Malformed pairs
// are skipped rather than rejected.
func (c *Config) Aliases() map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(c.ModelAliases, ",") {
		alias, model, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || alias == "" || model == "" {
			continue
		}
		out[alias] = model
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	switch v {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
