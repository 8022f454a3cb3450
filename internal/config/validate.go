package config

import "errors"

func ValidateForRun(cfg *Config) error {
	var errs []error

	if cfg.TripSourceURL == "" {
		errs = append(errs, ErrTripSourceURLMissing)
	}
	if err := cfg.Store.Validate(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Store.UsesRedis() {
		if err := cfg.Redis.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := cfg.Notifier.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
