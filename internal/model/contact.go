package model

import "time"

// ContactStatus はお問い合わせの対応状態を表す。
type ContactStatus string

const (
	ContactStatusUnread  ContactStatus = "unread"
	ContactStatusRead    ContactStatus = "read"
	ContactStatusReplied ContactStatus = "replied"
)

// ContactMessage はお問い合わせフォームから送信されたメッセージを表す。
type ContactMessage struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}
