// Package influxdb exports derived chart series to InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Each newly fetched
// building series is written once, one point per sample, so demand and
// temperature history outlive the in-memory cache and can be queried
// outside the chart.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteSeries("building_energy",
//	    map[string]string{"building_id": "31", "category": "electrical"},
//	    series.Timestamps,
//	    map[string][]float64{"usage": cat.Usage, "demand": cat.Demand})
//
// Writes are batched according to batch_size and flush_interval and never
// block the caller. Batch failures go to the SetOnError callback.
package influxdb
