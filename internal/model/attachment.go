package model

import "time"

// Attachment is a file uploaded for a supplier. A supplier holds at most one
// attachment per attachment type.
type Attachment struct {
	ID                 string    `json:"id"`
	SupplierID         string    `json:"supplier"`
	AttachmentTypeID   int       `json:"attachmentType"`
	AttachmentTypeName string    `json:"attachmentTypeName"`
	FileName           string    `json:"fileName"`
	StoragePath        string    `json:"-"`
	Size               int64     `json:"size"`
	ContentType        string    `json:"contentType"`
	Description        string    `json:"description"`
	CreatedAt          time.Time `json:"createdAt"`
}

// DocumentationComplete reports whether attachments cover every required type.
// A type is required when it has no risk level or matches the supplier's one.
func DocumentationComplete(types []DomainValue, riskLevel *DomainRef, attachments []Attachment) bool {
	have := make(map[int]bool, len(attachments))
	for _, a := range attachments {
		have[a.AttachmentTypeID] = true
	}
	for _, t := range types {
		if t.RiskLevelID != nil && (riskLevel == nil || *t.RiskLevelID != riskLevel.ID) {
			continue
		}
		if !have[t.ID] {
			return false
		}
	}
	return true
}
