// Package api provides the HTTP REST API and WebSocket server for the chart
// core.
//
// Dashboards read a building's assembled chart configuration, its raw
// series and current temperature, and manage the dataset definitions that
// decide which lines the chart shows. A WebSocket endpoint pushes a
// "chart.config_rebuilt" event whenever a configuration is assembled.
//
// Routes (all under /api/v1):
//
//	GET    /health
//	GET    /buildings/{id}/chart-config
//	DELETE /buildings/{id}/chart-config
//	GET    /buildings/{id}/series
//	GET    /buildings/{id}/temperature
//	GET    /buildings/{id}/datasets
//	PUT    /buildings/{id}/datasets/{code}
//	DELETE /buildings/{id}/datasets/{code}
//	GET    /ws
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
