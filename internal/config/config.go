package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:payhere.db"`

	PayHere PayHere `envPrefix:"PAYHERE_"`
	JWT     JWT     `envPrefix:"JWT_"`
}

type PayHere struct {
	MerchantID     string `env:"MERCHANT_ID"`
	MerchantSecret string `env:"MERCHANT_SECRET"`
	Mode           string `env:"MODE" envDefault:"sandbox"` // sandbox or live
}

// CheckoutURL returns the provider checkout endpoint for the configured mode.
func (p PayHere) CheckoutURL() string {
	if p.Mode == "live" {
		return "https://www.payhere.lk/pay/checkout"
	}
	return "https://sandbox.payhere.lk/pay/checkout"
}

type JWT struct {
	Secret        string `env:"SECRET"`
	Algorithm     string `env:"ALGORITHM" envDefault:"HS256"`
	ExpireMinutes int    `env:"ACCESS_EXPIRE_MINUTES" envDefault:"60"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
