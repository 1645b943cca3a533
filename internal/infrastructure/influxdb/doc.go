// Package influxdb records planner metrics in InfluxDB.
//
// It wraps influxdb-client-go v2 with a batching, non-blocking writer.
// Three measurements are written:
//   - selection_commit: one point per committed tile selection
//   - gesture: one point per selection gesture step
//   - colo_power: deployed and reserved power totals per colo
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // metrics off
//	}
//	defer client.Close()
//
//	client.WriteSelectionCommit("201", 2)
//
// Write methods are no-ops on a nil or closed client. Asynchronous write
// failures are reported through SetOnError.
package influxdb
