package cfg

type (
	App struct {
		Name    string
		Version string
	}

	Server struct {
		Host         string
		Port         int
		Debug        bool
		ReadTimeout  int
		WriteTimeout int
		IdleTimeout  int
	}

	Twilio struct {
		AccountSid   string
		AuthToken    string
		WhatsappFrom string
	}

	GithubApi struct {
		ApiUrl            string
		AccessToken       string
		PerPage           int
		RequestsPerSecond int
		RateLimitResetMin int
		MaxRateLimitWaits int
	}
)

type Config struct {
	App       App
	Server    Server
	Twilio    Twilio
	GithubApi GithubApi
}
