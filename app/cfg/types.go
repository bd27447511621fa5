package cfg

type Cfg struct {
	// Analysis provider configuration
	APIKey string
	Model  string
	Prompt string

	// Application configuration
	ConfigFile      string
	Port            string
	WorkerCount     int
	RefreshInterval int
	APIAccessKey    string
	RedisAddr       string

	// Fetch configuration
	FetchTimeout  int
	MaxRetries    int
	RetryDelay    int
	CacheDuration int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
