//go:build gcloud

package config

import (
	"errors"
	"strings"
	"testing"
)

func TestNotifierConfigValidate(t *testing.T) {
	complete := NotifierConfig{
		GCloudProjectID:  "demo",
		GCloudLocationID: "asia-northeast1",
		GCloudQueueID:    "departure-alerts",
		GCloudTargetURL:  "https://notify.example.com/deliver",
	}
	if err := complete.Validate(); err != nil {
		t.Fatalf("complete config: %v", err)
	}

	partial := complete
	partial.GCloudQueueID = ""
	partial.GCloudTargetURL = ""

	err := partial.Validate()
	if !errors.Is(err, ErrNotifierSettingMissing) {
		t.Fatalf("got %v, want ErrNotifierSettingMissing", err)
	}
	for _, env := range []string{"GCLOUD_QUEUE_ID", "GCLOUD_TARGET_URL"} {
		if !strings.Contains(err.Error(), env) {
			t.Errorf("error %q does not name %s", err, env)
		}
	}
}
