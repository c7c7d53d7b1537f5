package internal

// Option configures the application before a run starts.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig supplies the resolved configuration for the run. Every run
// mode requires one.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
