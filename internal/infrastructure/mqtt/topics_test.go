package mqtt

import (
	"errors"
	"testing"
)

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ChartConfig", topics.ChartConfig(31), "eod/chart/31/config"},
		{"TelemetryReady", topics.TelemetryReady(4), "eod/telemetry/4/ready"},
		{"AllTelemetryReady", topics.AllTelemetryReady(), "eod/telemetry/+/ready"},
		{"SystemStatus", topics.SystemStatus(), "eod/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestParseBuildingID(t *testing.T) {
	tests := []struct {
		topic   string
		want    int
		wantErr bool
	}{
		{"eod/telemetry/31/ready", 31, false},
		{"eod/chart/0/config", 0, false},
		{"eod/telemetry/abc/ready", 0, true},
		{"eod/telemetry/-1/ready", 0, true},
		{"eod/system/status", 0, true},
		{"other/telemetry/31/ready", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, err := ParseBuildingID(tt.topic)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTopic) {
					t.Errorf("ParseBuildingID() error = %v, want ErrInvalidTopic", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseBuildingID() = %d, %v; want %d", got, err, tt.want)
			}
		})
	}
}
