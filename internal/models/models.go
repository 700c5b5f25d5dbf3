package models

import (
	"time"
)

// Message direction values
const (
	DirectionIncoming = "Incoming"
	DirectionOutgoing = "Outgoing"
)

// Message kind values
const (
	KindManual   = "Manual"
	KindTemplate = "Template"
)

// Outgoing message status values. Incoming status updates carry whatever
// delivery state the bridge reports (e.g. "delivered", "read") verbatim.
const (
	StatusPending = "Pending"
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// Message represents a single WhatsApp message, incoming or outgoing.
// ExternalID is the id assigned by the bridge/WhatsApp network; it stays
// NULL for outgoing messages until the bridge confirms the send. The unique
// index is the dedupe guarantee for webhook retries.
type Message struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Direction         string    `gorm:"type:varchar(20);not null;index" json:"direction"`
	ExternalID        *string   `gorm:"type:varchar(255);uniqueIndex" json:"external_id"`
	PeerAddress       string    `gorm:"type:varchar(50);index" json:"peer_address"`
	ContentType       string    `gorm:"type:varchar(20)" json:"content_type"`
	Body              string    `gorm:"type:text" json:"body"`
	AttachmentRef     string    `gorm:"type:text" json:"attachment_ref"`
	ReplyToExternalID string    `gorm:"type:varchar(255)" json:"reply_to_external_id"`
	IsReply           bool      `json:"is_reply"`
	Status            string    `gorm:"type:varchar(20)" json:"status"`
	MessageKind       string    `gorm:"type:varchar(20)" json:"message_kind"`
	TemplateRef       string    `gorm:"type:varchar(255)" json:"template_ref"`
	PushName          string    `gorm:"type:varchar(255)" json:"push_name"`
	Extra             string    `gorm:"type:text" json:"extra"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Message) TableName() string {
	return "messages"
}

// Template holds metadata for a locally rendered message template.
// Placeholders {{1}}..{{n}} in Header and Body are substituted positionally.
type Template struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Language     string    `gorm:"type:varchar(10)" json:"language"`
	HeaderType   string    `gorm:"type:varchar(20)" json:"header_type"` // TEXT, IMAGE, DOCUMENT
	Header       string    `gorm:"type:text" json:"header"`
	Body         string    `gorm:"type:text" json:"body"`
	Footer       string    `gorm:"type:text" json:"footer"`
	Sample       string    `gorm:"type:text" json:"sample"` // sample media link for IMAGE headers
	FieldNames   string    `gorm:"type:text" json:"field_names"`
	SampleValues string    `gorm:"type:text" json:"sample_values"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Template) TableName() string {
	return "templates"
}

// NotificationLog archives raw bridge payloads for audit. Every webhook
// delivery is archived before processing so no event is ever lost, and
// outbound API responses (success or failure) are archived as well.
type NotificationLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"type:varchar(36);index" json:"event_id"`
	Template  string    `gorm:"type:varchar(100)" json:"template"`
	MetaData  string    `gorm:"type:text" json:"meta_data"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}

// Contact represents a WhatsApp contact auto-saved from inbound traffic.
type Contact struct {
	WaID      string    `gorm:"primaryKey;type:varchar(50)" json:"wa_id"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}
