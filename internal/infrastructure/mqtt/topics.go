package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes. Every planner topic lives under TopicPrefix.
const (
	TopicPrefix       = "coloplanner"
	TopicPrefixColo   = TopicPrefix + "/colo"
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Colo topic kinds, the path after coloplanner/colo/{coloId}/.
const (
	KindAssignmentAdd    = "assignment/add"
	KindAssignmentRemove = "assignment/remove"
	KindSelection        = "selection"
)

// Topics builds planner MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.AssignmentAdd("201") // coloplanner/colo/201/assignment/add
type Topics struct{}

// AssignmentAdd is where tile assignments made elsewhere are announced.
func (Topics) AssignmentAdd(coloID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixColo, coloID, KindAssignmentAdd)
}

// AssignmentRemove is where removed tile assignments are announced.
func (Topics) AssignmentRemove(coloID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixColo, coloID, KindAssignmentRemove)
}

// Selection is where committed selections of a colo are published.
func (Topics) Selection(coloID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixColo, coloID, KindSelection)
}

// SystemStatus carries the service's online status and its last will.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllAssignmentAdds matches assignment additions of every colo.
func (t Topics) AllAssignmentAdds() string { return t.AssignmentAdd("+") }

// AllAssignmentRemoves matches assignment removals of every colo.
func (t Topics) AllAssignmentRemoves() string { return t.AssignmentRemove("+") }

// ParseColoTopic splits a colo topic into its colo ID and kind.
func ParseColoTopic(topic string) (coloID, kind string, ok bool) {
	rest, found := strings.CutPrefix(topic, TopicPrefixColo+"/")
	if !found {
		return "", "", false
	}
	coloID, kind, found = strings.Cut(rest, "/")
	if !found || coloID == "" {
		return "", "", false
	}
	switch kind {
	case KindAssignmentAdd, KindAssignmentRemove, KindSelection:
		return coloID, kind, true
	}
	return "", "", false
}
