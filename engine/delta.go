package engine

// Delta is one streaming protocol message: every topic that is new or whose
// fingerprint changed since the previous observation, plus every topic that
// vanished. Both fields are omitted when empty, so a quiet tick serializes
// as {} and doubles as a keep-alive.
type Delta struct {
	Updated []Record `json:"updated,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

func (d Delta) Empty() bool {
	return len(d.Updated) == 0 && len(d.Removed) == 0
}
