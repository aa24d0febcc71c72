package plugin

import (
	"errors"
	"fmt"
	"strings"
)

// Info contains plugin metadata
type Info struct {
	ID       string // Reverse-DNS identifier (e.g. "io.loopdrift.effect")
	Name     string // Display name
	Version  string // Semantic version (e.g. "1.0.0")
	Vendor   string // Company/developer name
	Category string // Plugin category (e.g. "Fx|Delay")
	URL      string
}

// Validate checks that the identifying fields are present and well formed.
func (i Info) Validate() error {
	var errs []error
	if i.ID == "" || strings.ContainsAny(i.ID, " \t") || !strings.Contains(i.ID, ".") {
		errs = append(errs, fmt.Errorf("plugin id %q must be a reverse-DNS name", i.ID))
	}
	if i.Name == "" {
		errs = append(errs, errors.New("plugin name is empty"))
	}
	if strings.Count(i.Version, ".") != 2 {
		errs = append(errs, fmt.Errorf("plugin version %q is not major.minor.patch", i.Version))
	}
	return errors.Join(errs...)
}

// String renders "Name Version (Vendor)".
func (i Info) String() string {
	s := i.Name + " " + i.Version
	if i.Vendor != "" {
		s += " (" + i.Vendor + ")"
	}
	return s
}
