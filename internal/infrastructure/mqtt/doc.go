// Package mqtt connects the chart core to the campus MQTT broker.
//
// Topics:
//
//	eod/chart/{building}/config      chart configuration, published retained on rebuild
//	eod/telemetry/{building}/ready   new samples stored by the telemetry server
//	eod/system/status                core online/offline (retained, with Last Will)
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishRetained(mqtt.Topics{}.ChartConfig(31), payload)
//
// Handlers run on paho goroutines with panic recovery; subscriptions are
// restored after a reconnect.
package mqtt
