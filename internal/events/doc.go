// Package events connects the chart pipeline to the campus MQTT broker.
//
// ConfigPublisher is a chartconfig.Listener that publishes every rebuilt
// chart configuration, retained, on eod/chart/{building}/config so
// displays that only speak MQTT can render it.
//
// TelemetryWarmer subscribes to eod/telemetry/+/ready and fetches the
// announced building's series into the raw cache, so the first dashboard
// request for it does not wait on the Telemetry API.
package events
