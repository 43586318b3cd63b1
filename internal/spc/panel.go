package spc

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Panel is the identification block of the panel itself. It is replaced
// wholesale on each load and never updated by push events.
type Panel struct {
	Type         string `json:"type"`
	Variant      string `json:"variant"`
	Version      string `json:"version"`
	SerialNumber string `json:"sn"`
}

func parsePanel(rec gjson.Result) *Panel {
	if !rec.Exists() {
		return nil
	}
	var p Panel
	if err := json.Unmarshal([]byte(rec.Raw), &p); err != nil {
		return nil
	}
	return &p
}

func (p *Panel) String() string {
	return fmt.Sprintf("%s %s (firmware %s, S/N %s)", p.Type, p.Variant, p.Version, p.SerialNumber)
}
