package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Diagnostic holds one completed questionnaire; immutable once created
type Diagnostic struct {
	gorm.Model `json:"-"`

	DiagnosticID string `json:"id" gorm:"uniqueIndex"`
	UserID       string `json:"userId" gorm:"index;not null"`
	Domain       string `json:"domain"`       // "cashflow" or "compliance"
	Responses    string `json:"-"`            // JSON map of question id -> chosen value
	ActionPlan   string `json:"-"`            // JSON list of remediation items
	Score        int    `json:"score"`        // 0-100
	Status       string `json:"status" gorm:"default:completed"`
}

func (d *Diagnostic) BeforeCreate(tx *gorm.DB) error {
	if d.DiagnosticID == "" {
		d.DiagnosticID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = "completed"
	}
	return nil
}

// SetResponses stores the raw questionnaire answers
func (d *Diagnostic) SetResponses(responses map[string]string) error {
	data, err := json.Marshal(responses)
	if err != nil {
		return err
	}
	d.Responses = string(data)
	return nil
}

// ResponsesMap decodes the stored answers
func (d *Diagnostic) ResponsesMap() map[string]string {
	out := map[string]string{}
	if d.Responses != "" {
		_ = json.Unmarshal([]byte(d.Responses), &out)
	}
	return out
}

// SetActionPlan stores the generated remediation list as JSON
func (d *Diagnostic) SetActionPlan(plan interface{}) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	d.ActionPlan = string(data)
	return nil
}

// ActionPlanRaw returns the stored plan ready for embedding in a JSON response
func (d *Diagnostic) ActionPlanRaw() json.RawMessage {
	if d.ActionPlan == "" {
		return json.RawMessage("[]")
	}
	return json.RawMessage(d.ActionPlan)
}
