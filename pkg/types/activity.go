package types

import "time"

// Activity is an interaction logged against a deal.
type Activity struct {
	ID          string       `json:"id"`
	DealID      string       `json:"dealId"`
	Date        time.Time    `json:"date"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// CreateActivityRequest carries the fields of a new activity. A zero Date
// defaults to the creation time.
type CreateActivityRequest struct {
	DealID      string       `json:"dealId" validate:"required"`
	Date        time.Time    `json:"date"`
	Type        ActivityType `json:"type" validate:"required,enum"`
	Description string       `json:"description" validate:"required"`
}

// UpdateActivityRequest changes only the fields that are set.
type UpdateActivityRequest struct {
	ID          string                 `json:"id"`
	Date        Optional[time.Time]    `json:"date,omitzero"`
	Type        Optional[ActivityType] `json:"type,omitzero"`
	Description Optional[string]       `json:"description,omitzero"`
}

// Tag is a shared label attached to buyers and properties by name.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateTagRequest carries the fields of a new tag.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color,omitempty"`
}

// UpdateTagRequest renames or recolors a tag.
type UpdateTagRequest struct {
	ID    string           `json:"id"`
	Name  Optional[string] `json:"name,omitzero"`
	Color Optional[string] `json:"color,omitzero"`
}

// PropertyAttachment is a file stored on disk for a property. Attachments
// are immutable once created.
type PropertyAttachment struct {
	ID               string    `json:"id"`
	PropertyID       string    `json:"propertyId"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"originalFilename"`
	FilePath         string    `json:"filePath"`
	FileType         string    `json:"fileType"`
	FileSize         int64     `json:"fileSize"`
	CreatedAt        time.Time `json:"createdAt"`
}

// CreateAttachmentRequest records a file already written to disk.
type CreateAttachmentRequest struct {
	PropertyID       string `json:"propertyId" validate:"required"`
	Filename         string `json:"filename" validate:"required"`
	OriginalFilename string `json:"originalFilename" validate:"required"`
	FilePath         string `json:"filePath" validate:"required"`
	FileType         string `json:"fileType"`
	FileSize         int64  `json:"fileSize" validate:"gte=0"`
}
