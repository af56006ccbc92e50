package model

import "time"

// CartItem はカート内の1商品を表す。
// UserIDとSessionIDはどちらか一方のみが設定される。
type CartItem struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	UserID    string    `json:"userId,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartOwner はカートの所有者を表す。
// 認証済みならUserID、匿名ならSessionIDのどちらか一方だけを持つ。
type CartOwner struct {
	UserID    string
	SessionID string
}

// Valid はUserIDとSessionIDのちょうど一方が設定されているかを返す。
func (o CartOwner) Valid() bool {
	return (o.UserID == "") != (o.SessionID == "")
}

// IsAnonymous は匿名セッションのカートかどうかを返す。
func (o CartOwner) IsAnonymous() bool {
	return o.UserID == "" && o.SessionID != ""
}

// Key はレート制限やログ用に所有者を一意に表す文字列を返す。
func (o CartOwner) Key() string {
	if o.UserID != "" {
		return "user:" + o.UserID
	}
	return "session:" + o.SessionID
}
