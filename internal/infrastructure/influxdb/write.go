package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurements written by the planner.
const (
	MeasurementSelectionCommit = "selection_commit"
	MeasurementGesture         = "gesture"
	MeasurementColoPower       = "colo_power"
)

// WriteSelectionCommit records a committed selection and its size.
func (c *Client) WriteSelectionCommit(coloID string, tiles int) {
	c.WritePoint(MeasurementSelectionCommit,
		map[string]string{"colo": coloID},
		map[string]any{"tiles": tiles},
	)
}

// WriteGesture records one selection gesture step.
func (c *Client) WriteGesture(coloID, state string) {
	c.WritePoint(MeasurementGesture,
		map[string]string{"colo": coloID, "state": state},
		map[string]any{"count": 1},
	)
}

// WriteColoPower records the power totals of a colo. unknown counts racks
// whose power could not be resolved.
func (c *Client) WriteColoPower(coloID string, deployedW, reservedW float64, unknown int) {
	c.WritePoint(MeasurementColoPower,
		map[string]string{"colo": coloID},
		map[string]any{
			"deployed_w": deployedW,
			"reserved_w": reservedW,
			"unknown":    unknown,
		},
	)
}

// WritePoint writes a point stamped now. It is a no-op on a closed or
// nil client, so callers need not check whether metrics are enabled.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(write.NewPoint(measurement, tags, fields, c.now()))
}

// WritePointWithTime writes a point with an explicit timestamp.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
