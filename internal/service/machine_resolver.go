package service

import "encoding/json"

// DefaultMachineMap assigns the house default machine to every known stage
// name when a submission carries no usable machine selection. Stage names
// match the seeded process catalog.
var DefaultMachineMap = map[string]string{
	"Pre_Press":         "1",
	"Printing":          "1",
	"Card_Cutting":      "1",
	"Varnish: Shine":    "1",
	"Lamination: Matte": "1",
	"Joint":             "1",
	"Die_Cutting":       "1",
	"Foil":              "1",
	"Pasting":           "1",
	"Screen_Printing":   "1",
	"Embose":            "1",
	"Double_Tape":       "1",
	"Sorting":           "1",
}

// MachineSelection is the machine_id field of a sub-job descriptor. Clients
// send either a flat list of machine ids or explicit {process, machine}
// pairings; both forms may not be mixed meaningfully, so pairings win.
type MachineSelection struct {
	Flat     []string
	Pairings map[string]string
}

// UnmarshalJSON accepts both wire forms of the machine list.
func (m *MachineSelection) UnmarshalJSON(data []byte) error {
	m.Flat = nil
	m.Pairings = nil

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, item := range raw {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			m.Flat = append(m.Flat, id)
			continue
		}
		var pair struct {
			Process string `json:"process"`
			Machine string `json:"machine"`
		}
		if err := json.Unmarshal(item, &pair); err != nil {
			return err
		}
		if m.Pairings == nil {
			m.Pairings = make(map[string]string)
		}
		m.Pairings[pair.Process] = pair.Machine
	}
	return nil
}

// MarshalJSON writes the flat form, or the pairing form when pairings exist.
func (m MachineSelection) MarshalJSON() ([]byte, error) {
	if len(m.Pairings) > 0 {
		type pair struct {
			Process string `json:"process"`
			Machine string `json:"machine"`
		}
		pairs := make([]pair, 0, len(m.Pairings))
		for p, machine := range m.Pairings {
			pairs = append(pairs, pair{Process: p, Machine: machine})
		}
		return json.Marshal(pairs)
	}
	if m.Flat == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.Flat)
}

// ResolveMachine picks the machine for one selected process. Precedence: an
// explicit pairing for that process name, then the first machine of the flat
// list, then the default table, then nil.
func ResolveMachine(processName string, selection MachineSelection, defaults map[string]string) *string {
	if id, ok := selection.Pairings[processName]; ok && id != "" {
		return &id
	}
	if len(selection.Flat) > 0 && selection.Flat[0] != "" {
		return &selection.Flat[0]
	}
	if id, ok := defaults[processName]; ok && id != "" {
		return &id
	}
	return nil
}
