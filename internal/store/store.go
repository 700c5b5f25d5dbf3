package store

import (
	"encoding/json"
	"errors"
	"log"

	"waha-gateway/internal/models"

	"gorm.io/gorm"
)

// Store is the record layer shared by the webhook reconciler and the API
// handlers. All message lookups key on the bridge-assigned external id.
type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// --- Messages ---

func (s *Store) ExistsByExternalID(externalID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Message{}).Where("external_id = ?", externalID).Count(&count).Error
	return count > 0, err
}

func (s *Store) GetByExternalID(externalID string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.Where("external_id = ?", externalID).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Store) CreateMessage(msg *models.Message) error {
	return s.DB.Create(msg).Error
}

func (s *Store) SaveMessage(msg *models.Message) error {
	return s.DB.Save(msg).Error
}

// SetAttachment is the second phase of the inbound two-phase write: the
// record is created first, then the attachment reference is attached.
func (s *Store) SetAttachment(id uint, attachmentRef string) error {
	return s.DB.Model(&models.Message{}).Where("id = ?", id).
		Update("attachment_ref", attachmentRef).Error
}

// UpdateStatusByExternalID overwrites the status of an existing message and
// reports whether a matching record was found. It never creates records.
func (s *Store) UpdateStatusByExternalID(externalID, status string) (bool, error) {
	res := s.DB.Model(&models.Message{}).Where("external_id = ?", externalID).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) ListMessages(limit int) ([]models.Message, error) {
	var msgs []models.Message
	q := s.DB.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&msgs).Error
	return msgs, err
}

// --- Contacts ---

// SaveContact inserts the contact if new, or fills in the name on an
// existing contact that has none.
func (s *Store) SaveContact(waID, name string) error {
	var existing models.Contact
	err := s.DB.Where("wa_id = ?", waID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.DB.Create(&models.Contact{WaID: waID, Name: name}).Error
	}
	if err != nil {
		return err
	}
	if existing.Name == "" && name != "" {
		return s.DB.Model(&existing).Update("name", name).Error
	}
	return nil
}

// --- Templates ---

func (s *Store) GetTemplate(name string) (*models.Template, error) {
	var tmpl models.Template
	err := s.DB.Where("name = ?", name).First(&tmpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (s *Store) ListTemplates() ([]models.Template, error) {
	var tmpls []models.Template
	err := s.DB.Order("name").Find(&tmpls).Error
	return tmpls, err
}

func (s *Store) SaveTemplate(tmpl *models.Template) error {
	return s.DB.Save(tmpl).Error
}

func (s *Store) DeleteTemplate(name string) error {
	return s.DB.Where("name = ?", name).Delete(&models.Template{}).Error
}

// --- Notification log ---

// Archive persists an audit log entry with the raw payload. Archiving is
// best-effort: a failure is logged but never blocks message processing.
func (s *Store) Archive(eventID, label string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("{}")
	}
	entry := models.NotificationLog{
		EventID:  eventID,
		Template: label,
		MetaData: string(raw),
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		log.Printf("Error archiving notification log (%s): %v", label, err)
	}
}
