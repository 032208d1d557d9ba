package mailer

import "time"

// Notification данные письма о решении по бронированию
type Notification struct {
	Email       string
	UserName    string
	ServiceName string
	DateFrom    time.Time
	DateTo      time.Time
}

// Config параметры SMTP
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}
