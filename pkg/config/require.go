package config

import "fmt"

// Validate reports the first setting that makes the config unusable.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("missing required env %s", "DATABASE_URL")
	}
	switch c.AuthMode {
	case AuthModeHeader:
	case AuthModeJWT:
		if len(c.JWTAccessSecret) == 0 {
			return fmt.Errorf("missing required env %s for AUTH_MODE=jwt", "JWT_SECRET")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}
	return nil
}
