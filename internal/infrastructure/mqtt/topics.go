package mqtt

import (
	"fmt"
	"strconv"
	"strings"
)

// Topic prefixes. Every topic the core uses lives under TopicPrefix.
const (
	TopicPrefix          = "eod"
	TopicPrefixChart     = TopicPrefix + "/chart"
	TopicPrefixTelemetry = TopicPrefix + "/telemetry"
	TopicPrefixSystem    = TopicPrefix + "/system"
)

// Topics provides builders for the core's MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.ChartConfig(31) // "eod/chart/31/config"
type Topics struct{}

// ChartConfig is where a rebuilt chart configuration is published (retained).
//
// Example: eod/chart/31/config
func (Topics) ChartConfig(buildingID int) string {
	return fmt.Sprintf("%s/%d/config", TopicPrefixChart, buildingID)
}

// TelemetryReady is announced by the telemetry server when new samples for
// a building are stored.
//
// Example: eod/telemetry/31/ready
func (Topics) TelemetryReady(buildingID int) string {
	return fmt.Sprintf("%s/%d/ready", TopicPrefixTelemetry, buildingID)
}

// AllTelemetryReady matches TelemetryReady for every building.
//
// Pattern: eod/telemetry/+/ready
func (Topics) AllTelemetryReady() string {
	return TopicPrefixTelemetry + "/+/ready"
}

// SystemStatus carries the core's retained online/offline status.
//
// Example: eod/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// ParseBuildingID extracts the building id from a chart or telemetry topic.
func ParseBuildingID(topic string) (int, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != TopicPrefix || (parts[1] != "chart" && parts[1] != "telemetry") {
		return 0, fmt.Errorf("%w: %q is not a building topic", ErrInvalidTopic, topic)
	}
	id, err := strconv.Atoi(parts[2])
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: bad building id in %q", ErrInvalidTopic, topic)
	}
	return id, nil
}
