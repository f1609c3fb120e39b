package configs

import "fmt"

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Store selects where campaigns and contributions live. The memory driver
// keeps everything in process and pays out through an in-memory vault.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"memory"`
}

// Validate reports an unknown driver.
func (s Store) Validate() error {
	switch s.Driver {
	case DriverMemory, DriverPostgres:
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", s.Driver)
	}
}
