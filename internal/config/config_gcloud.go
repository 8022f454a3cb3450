//go:build gcloud

package config

import (
	"errors"
	"fmt"
)

// loadDotEnv is a no-op on Cloud Run.
func loadDotEnv() {}

// Validate requires every Cloud Tasks coordinate, since the gcloud build has no local
// fallback facility.
func (c *NotifierConfig) Validate() error {
	required := []struct {
		env   string
		value string
	}{
		{"GCLOUD_PROJECT_ID", c.GCloudProjectID},
		{"GCLOUD_LOCATION_ID", c.GCloudLocationID},
		{"GCLOUD_QUEUE_ID", c.GCloudQueueID},
		{"GCLOUD_TARGET_URL", c.GCloudTargetURL},
	}

	var errs []error
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNotifierSettingMissing, r.env))
		}
	}

	return errors.Join(errs...)
}
