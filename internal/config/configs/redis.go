package configs

// Redis configures the stream that committed escrow events are appended
// to. An empty Addr disables the sink.
type Redis struct {
	Addr     string `env:"ADDRESS"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Stream   string `env:"STREAM" envDefault:"escrow:events"`
	// MaxLen caps the stream length (approximate trimming); zero keeps
	// every entry.
	MaxLen int64 `env:"MAX_LEN" envDefault:"100000"`
}

// Enabled reports whether events should be written to redis.
func (r Redis) Enabled() bool {
	return r.Addr != ""
}
