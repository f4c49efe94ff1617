package models

type Level string

const (
	LevelSuccess Level = `success`
	LevelError   Level = `error`
)

// Notification is the user-facing outcome of a state-changing operation.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func Success(message string) Notification {
	return Notification{Level: LevelSuccess, Message: message}
}

func Failure(message string) Notification {
	return Notification{Level: LevelError, Message: message}
}
