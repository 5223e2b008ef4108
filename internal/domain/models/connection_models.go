package models

import "time"

// ConnectionRequest определяет структуру запроса на подключение к ПЛК.
// Пустые поля заменяются значениями из конфигурации.
type ConnectionRequest struct {
	Host string `json:"host"` // "192.168.0.10"
	Port string `json:"port"` // "502"
}

// WriteRequest - сервисная запись регистра ПЛК в нумерации таблицы (40001...).
type WriteRequest struct {
	Register uint16 `json:"register" binding:"required,gte=40001"`
	Value    int    `json:"value"`
}

// ConnectionInfo описывает подключение к ПЛК.
type ConnectionInfo struct {
	Endpoint    string    `json:"endpoint"`
	Connected   bool      `json:"connected"`
	ConnectedAt time.Time `json:"connected_at,omitempty"`
}
