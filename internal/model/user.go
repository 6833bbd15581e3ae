package model

import "time"

type User struct {
	TelegramID       int64
	Username         string
	DisplayName      string
	RestDaysLeft     int
	RegistrationDate time.Time
	AuthDate         time.Time
}
