// Package mqtt connects the planner to an MQTT broker.
//
// Other planning tools announce tile assignments on
// coloplanner/colo/{coloId}/assignment/add and .../assignment/remove;
// the planner publishes committed selections on
// coloplanner/colo/{coloId}/selection. The service's online status is kept
// retained on coloplanner/system/status, with a last will that flips it to
// offline when the connection drops unexpectedly.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllAssignmentAdds(), 1,
//	    func(topic string, payload []byte) error {
//	        coloID, _, _ := mqtt.ParseColoTopic(topic)
//	        ...
//	    })
package mqtt
