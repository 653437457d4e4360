package dto

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
