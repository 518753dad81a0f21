package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (yl *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "kaizen",
			Version: "1.0.0",
		},

		// Server
		Server: Server{
			Host:         "0.0.0.0",
			Port:         4000,
			Debug:        false,
			ReadTimeout:  15,
			WriteTimeout: 60,
			IdleTimeout:  60,
		},

		// Twilio
		Twilio: Twilio{
			AccountSid:   "",
			AuthToken:    "",
			WhatsappFrom: "whatsapp:+14155238886",
		},

		// GithubApi
		GithubApi: GithubApi{
			ApiUrl:            "https://api.github.com",
			AccessToken:       "",
			PerPage:           100,
			RequestsPerSecond: 10,
			RateLimitResetMin: 1,
			MaxRateLimitWaits: 0,
		},
	}, nil
}
