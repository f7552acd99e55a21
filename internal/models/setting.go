package models

// Setting keys known at bootstrap.
const (
	SettingWhatsAppUrgentLink = "whatsapp_urgente_link"
)

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
